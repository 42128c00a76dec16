// Package app implements the application layer for ipkg.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/engine/session"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// App represents the main application logic.
type App struct {
	settings       *domain.Settings
	settingsLoader ports.SettingsLoader
	manifests      ports.ManifestLoader
	locks          ports.LockfileStore
	builder        *session.Builder
	checkouts      ports.CheckoutManager
	files          ports.SourceFileResolver
	logger         ports.Logger
}

// New creates a new App instance.
func New(
	settings *domain.Settings,
	settingsLoader ports.SettingsLoader,
	manifests ports.ManifestLoader,
	locks ports.LockfileStore,
	builder *session.Builder,
	checkouts ports.CheckoutManager,
	files ports.SourceFileResolver,
	log ports.Logger,
) *App {
	return &App{
		settings:       settings,
		settingsLoader: settingsLoader,
		manifests:      manifests,
		locks:          locks,
		builder:        builder,
		checkouts:      checkouts,
		files:          files,
		logger:         log,
	}
}

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	Verbose bool
	JSONLog bool
	Offline bool
}

// Configure applies global flags. It must run before any other method.
func (a *App) Configure(opts GlobalOptions) {
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(opts.Verbose)
	}
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(opts.JSONLog)
	}
	if opts.Offline {
		a.settings.Offline = true
	}
}

// open resolves the workspace. With update set, lock pins are ignored.
// The lockfile is rewritten whenever the resolution differs from it.
func (a *App) open(ctx context.Context, update bool) (*session.Session, error) {
	root, err := a.manifests.Load(a.settings.Root)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "not a workspace"), "root", a.settings.Root)
	}

	var lock *domain.Lockfile
	if !update {
		lock, err = a.locks.Load(a.settings.Root)
		if err != nil {
			return nil, err
		}
	}

	sess, err := a.builder.Open(ctx, root, session.Options{Lock: lock, Overrides: a.settings.Overrides})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve dependencies")
	}

	next := sess.Lockfile()
	if lock == nil || !sameLock(lock, next) {
		if err := a.locks.Save(a.settings.Root, next); err != nil {
			return nil, err
		}
		a.logger.Debug("wrote " + domain.LockFileName)
	}
	return sess, nil
}

func sameLock(a, b *domain.Lockfile) bool {
	if len(a.Packages) != len(b.Packages) {
		return false
	}
	for name, pa := range a.Packages {
		pb, ok := b.Packages[name]
		if !ok || !pa.Source.Equal(pb.Source) {
			return false
		}
		if !slices.Equal(sorted(pa.Dependencies), sorted(pb.Dependencies)) || !slices.Equal(pa.Requests, pb.Requests) {
			return false
		}
	}
	return true
}

// sorted returns a sorted copy; the lockfile stores dependencies sorted.
func sorted(s []string) []string {
	return slices.Sorted(slices.Values(s))
}

// PackagesOptions selects the output of Packages.
type PackagesOptions struct {
	// Graph prints each package with its direct dependencies.
	Graph bool

	// Flat prints one entry per line instead of one rank per line.
	Flat bool
}

// Packages writes the resolved packages to w. Rank listings put dependencies first.
func (a *App) Packages(ctx context.Context, w io.Writer, opts PackagesOptions) error {
	sess, err := a.open(ctx, false)
	if err != nil {
		return err
	}

	var b strings.Builder
	if opts.Graph {
		// Graph modes list packages in discovery order.
		for pkg := range sess.Graph().Packages() {
			deps := names(sess, sess.Dependencies(pkg.ID))
			if !opts.Flat {
				fmt.Fprintf(&b, "%s\t%s\n", pkg.Name, strings.Join(deps, " "))
				continue
			}
			for _, dep := range deps {
				fmt.Fprintf(&b, "%s\t%s\n", pkg.Name, dep)
			}
		}
	} else {
		for _, rank := range sess.Packages() {
			if !opts.Flat {
				b.WriteString(strings.Join(names(sess, rank), " "))
				b.WriteByte('\n')
				continue
			}
			for _, id := range rank {
				b.WriteString(sess.DependencyName(id))
				b.WriteByte('\n')
			}
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}

func names(sess *session.Session, ids []domain.PackageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = sess.DependencyName(id)
	}
	return out
}

// Parents writes every requester of name together with the source it asked for.
func (a *App) Parents(ctx context.Context, w io.Writer, name string) error {
	sess, err := a.open(ctx, false)
	if err != nil {
		return err
	}
	if _, ok := sess.PackageByName(name); !ok {
		return zerr.With(zerr.Wrap(domain.ErrUnknownPackageName, "lookup failed"), "package", name)
	}

	var b strings.Builder
	for _, req := range sess.Requests(name) {
		fmt.Fprintf(&b, "%s\t%s\n", req.Requester, req.Source)
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// Path checks out the named packages and writes their paths to w, one per line.
func (a *App) Path(ctx context.Context, w io.Writer, pkgs []string) error {
	sess, err := a.open(ctx, false)
	if err != nil {
		return err
	}

	ids := make([]domain.PackageID, 0, len(pkgs))
	for _, name := range pkgs {
		pkg, ok := sess.PackageByName(name)
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrUnknownPackageName, "lookup failed"), "package", name)
		}
		ids = append(ids, pkg.ID)
	}

	out, err := sess.Checkout(ctx, a.checkouts, a.settings.Jobs, ids...)
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, co := range out {
		b.WriteString(co.Path)
		b.WriteByte('\n')
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// Checkout materializes every package of the workspace.
func (a *App) Checkout(ctx context.Context) error {
	sess, err := a.open(ctx, false)
	if err != nil {
		return err
	}

	present := 0
	for pkg := range sess.Graph().Packages() {
		co := a.checkouts.Inspect(pkg.Name.String(), pkg.Source)
		a.logger.Debug(pkg.Name.String() + " is " + co.State.String())
		if co.State == domain.CheckoutReady {
			present++
		}
	}

	out, err := sess.Checkout(ctx, a.checkouts, a.settings.Jobs)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("%d packages checked out, %d were already present", len(out), present))
	return nil
}

// CloneOptions configures Clone.
type CloneOptions struct {
	// Dir receives the working copy. Relative paths resolve against the workspace root.
	Dir string
}

// DefaultCloneDir is where Clone puts working copies unless told otherwise.
const DefaultCloneDir = "working_dir"

// Clone copies the checkout of name into a working directory and overrides name to it.
func (a *App) Clone(ctx context.Context, name string, opts CloneOptions) error {
	sess, err := a.open(ctx, false)
	if err != nil {
		return err
	}
	pkg, ok := sess.PackageByName(name)
	if !ok {
		return zerr.With(zerr.Wrap(domain.ErrUnknownPackageName, "lookup failed"), "package", name)
	}
	if pkg.Source.IsPath() {
		return zerr.With(zerr.New("package is already a local path"), "path", pkg.Source.Path)
	}

	dir := opts.Dir
	if dir == "" {
		dir = DefaultCloneDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(a.settings.Root, dir)
	}
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		return zerr.With(zerr.Wrap(domain.ErrPathConflict, "clone destination exists"), "path", dest)
	}

	out, err := sess.Checkout(ctx, a.checkouts, 1, pkg.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create clone directory"), "path", dir)
	}
	if err := os.CopyFS(dest, os.DirFS(out[0].Path)); err != nil {
		_ = os.RemoveAll(dest)
		return zerr.With(zerr.Wrap(domain.ErrCloneFailed, err.Error()), "path", dest)
	}
	_ = os.Remove(filepath.Join(dest, domain.ReadyMarkerName))

	if err := a.settingsLoader.SaveOverride(a.settings.Root, name, dest); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("cloned %s into %s", name, dest))
	return nil
}

// SourceSet is one entry of the sources listing.
type SourceSet struct {
	Package string   `yaml:"package"`
	Path    string   `yaml:"path"`
	Files   []string `yaml:"files"`
}

// Sources writes the source files of every package as YAML, dependencies first.
// The workspace root comes last.
func (a *App) Sources(ctx context.Context, w io.Writer) error {
	sess, err := a.open(ctx, false)
	if err != nil {
		return err
	}

	if _, err := sess.Checkout(ctx, a.checkouts, a.settings.Jobs); err != nil {
		return err
	}

	var sets []SourceSet
	for _, rank := range sess.Packages() {
		for _, id := range rank {
			m := sess.Manifest(id)
			if m == nil || len(m.Sources) == 0 {
				continue
			}
			co, _ := sess.CheckoutOf(id)
			set, err := a.sourceSet(sess.DependencyName(id), co.Path, m.Sources)
			if err != nil {
				return err
			}
			sets = append(sets, set)
		}
	}

	if root := sess.Root(); len(root.Sources) > 0 {
		name := root.Name
		if name == "" {
			name = filepath.Base(a.settings.Root)
		}
		set, err := a.sourceSet(name, a.settings.Root, root.Sources)
		if err != nil {
			return err
		}
		sets = append(sets, set)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sets); err != nil {
		return zerr.Wrap(err, "failed to encode sources")
	}
	return enc.Close()
}

func (a *App) sourceSet(name, dir string, patterns []string) (SourceSet, error) {
	files, err := a.files.ResolveSources(patterns, dir)
	if err != nil {
		return SourceSet{}, zerr.With(err, "package", name)
	}
	return SourceSet{Package: name, Path: dir, Files: files}, nil
}

// Update re-resolves every package ignoring the lockfile and rewrites it.
func (a *App) Update(ctx context.Context) error {
	sess, err := a.open(ctx, true)
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("%s updated with %d packages", domain.LockFileName, sess.Graph().Len()))
	return nil
}

// Config writes the effective settings to w as YAML.
func (a *App) Config(_ context.Context, w io.Writer) error {
	data, err := yaml.Marshal(a.settings)
	if err != nil {
		return zerr.Wrap(err, "failed to encode settings")
	}
	_, err = w.Write(data)
	return err
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// All also removes git databases and cached registry documents.
	All bool
}

// Clean removes materialized checkouts, and with All the whole cache directory.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	a.logger.Info("removing checkouts...")
	if err := a.checkouts.Clean(); err != nil {
		return err
	}

	if opts.All {
		a.logger.Info("removing cache " + a.settings.CacheDir + "...")
		if err := os.RemoveAll(a.settings.CacheDir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to remove cache"), "path", a.settings.CacheDir)
		}
	}
	return nil
}
