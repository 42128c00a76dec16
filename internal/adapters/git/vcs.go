// Package git implements ports.VCS on top of go-git, with one bare database per remote.
package git

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/ipkg/internal/retry"
	"go.trai.ch/ipkg/internal/semver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const remoteName = "origin"

var _ ports.VCS = (*VCS)(nil)

func init() {
	// Local remotes are served in-process instead of through git-upload-pack.
	client.InstallProtocol("file", server.DefaultServer)
}

// VCS implements ports.VCS. Each remote is fetched at most once per instance.
type VCS struct {
	dbRoot   string
	settings *domain.Settings
	token    string
	policy   retry.Policy
	hasher   ports.Hasher
	logger   ports.Logger

	group singleflight.Group
	mu    sync.Mutex
	repos map[string]*database
}

// database is a fetched bare repository. mu serializes access to it.
type database struct {
	mu   sync.Mutex
	repo *gogit.Repository
}

// NewVCS creates a VCS storing databases below settings.CacheDir.
// settings.Offline is consulted on every sync.
func NewVCS(settings *domain.Settings, hasher ports.Hasher, logger ports.Logger) *VCS {
	return &VCS{
		dbRoot:   domain.GitDBPath(settings.CacheDir),
		settings: settings,
		token:    settings.GitToken,
		policy:   retry.Policy{Retries: settings.Retries, Delay: settings.RetryDelay},
		hasher:   hasher,
		logger:   logger,
		repos:    make(map[string]*database),
	}
}

// DBPath returns the database directory used for url.
func (v *VCS) DBPath(url string) string {
	norm := domain.NormalizeURL(url)
	base := path.Base(filepath.ToSlash(norm))
	if base == "" || base == "." || base == "/" {
		base = "repo"
	}
	return filepath.Join(v.dbRoot, base+"-"+v.hasher.Key(norm))
}

// ResolveRef resolves ref to a commit. Exact tags, branches and revisions win;
// otherwise ref is read as a version constraint over the tags.
// An empty ref names the remote's default branch.
func (v *VCS) ResolveRef(ctx context.Context, url, ref string) (string, error) {
	db, err := v.open(ctx, url)
	if err != nil {
		return "", err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if ref == "" {
		ref = string(plumbing.HEAD)
	}

	for _, candidate := range []string{"refs/tags/" + ref, "refs/heads/" + ref, ref} {
		if hash, err := db.repo.ResolveRevision(plumbing.Revision(candidate)); err == nil {
			return hash.String(), nil
		}
	}

	if semver.IsConstraint(ref) {
		return v.resolveConstraint(db.repo, url, ref)
	}

	return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidReference, "unknown git reference"), "url", url), "ref", ref)
}

func (v *VCS) resolveConstraint(repo *gogit.Repository, url, ref string) (string, error) {
	c, err := semver.ParseConstraint(ref)
	if err != nil {
		return "", zerr.With(err, "url", url)
	}

	tags, err := tagNames(repo)
	if err != nil {
		return "", zerr.With(err, "url", url)
	}

	idx, ok := semver.MaxSatisfying(c, tags)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrNoMatchingVersion, "no tag satisfies constraint"), "url", url)
		return "", zerr.With(err, "constraint", ref)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision("refs/tags/" + tags[idx]))
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidReference, err.Error()), "tag", tags[idx])
	}
	v.logger.Debug("selected tag " + tags[idx] + " of " + url + " for " + ref)
	return hash.String(), nil
}

// ReadFile returns the content of file at rev. A missing file yields nil, nil.
func (v *VCS) ReadFile(ctx context.Context, url, rev, file string) ([]byte, error) {
	db, err := v.open(ctx, url)
	if err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	tree, err := commitTree(db.repo, url, rev)
	if err != nil {
		return nil, err
	}

	f, err := tree.File(file)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "path", file)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "path", file)
	}
	return []byte(content), nil
}

// Checkout exports the tree of rev into dest.
func (v *VCS) Checkout(ctx context.Context, url, rev, dest string) error {
	db, err := v.open(ctx, url)
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	tree, err := commitTree(db.repo, url, rev)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dest, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create checkout directory"), "path", dest)
	}

	err = tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return exportFile(dest, f)
	})
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to export tree"), "url", url), "revision", rev)
	}
	return nil
}

// open returns the database of url, fetching it once per session.
func (v *VCS) open(ctx context.Context, url string) (*database, error) {
	key := domain.NormalizeURL(url)

	v.mu.Lock()
	db, ok := v.repos[key]
	v.mu.Unlock()
	if ok {
		return db, nil
	}

	for {
		res, err, _ := v.group.Do(key, func() (any, error) {
			repo, err := v.sync(ctx, url)
			if err != nil {
				return ctx.Err() != nil, err
			}
			db := &database{repo: repo}
			v.mu.Lock()
			v.repos[key] = db
			v.mu.Unlock()
			return db, nil
		})
		if err != nil {
			// The shared fetch ran under another caller's cancelled context.
			if aborted, _ := res.(bool); aborted && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		return res.(*database), nil
	}
}

// sync opens or creates the database of url and fetches it unless offline.
func (v *VCS) sync(ctx context.Context, url string) (*gogit.Repository, error) {
	dir := v.DBPath(url)

	repo, err := gogit.PlainOpen(dir)
	switch {
	case err == nil:
		if v.settings.Offline {
			v.logger.Debug("offline, using existing database for " + url)
			return repo, nil
		}
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		if v.settings.Offline {
			return nil, zerr.With(zerr.Wrap(domain.ErrOffline, "source was never fetched"), "url", url)
		}
		repo, err = initDatabase(dir, url)
		if err != nil {
			return nil, err
		}
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "path", dir)
	}

	v.logger.Info("fetching " + url)
	err = v.policy.Do(ctx, func(ctx context.Context) error {
		return v.fetch(ctx, repo, url)
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func initDatabase(dir, url string) (*gogit.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dir), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "path", dir)
	}

	repo, err := gogit.PlainInit(dir, true)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "path", dir)
	}

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: remoteName, URLs: []string{url}})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "path", dir)
	}
	return repo, nil
}

func (v *VCS) fetch(ctx context.Context, repo *gogit.Repository, url string) error {
	auth := authFor(url, v.token)

	remote, err := repo.Remote(remoteName)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "url", url)
	}

	refs, err := remote.ListContext(ctx, &gogit.ListOptions{Auth: auth})
	if err != nil {
		return classify(url, err)
	}

	err = repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{"+refs/heads/*:refs/heads/*"},
		Tags:       gogit.AllTags,
		Auth:       auth,
		Force:      true,
		Prune:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return classify(url, err)
	}

	return setHead(repo, refs)
}

// setHead points the database HEAD at the remote's default branch.
func setHead(repo *gogit.Repository, refs []*plumbing.Reference) error {
	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		var head *plumbing.Reference
		if ref.Type() == plumbing.SymbolicReference {
			head = plumbing.NewSymbolicReference(plumbing.HEAD, ref.Target())
		} else {
			head = plumbing.NewHashReference(plumbing.HEAD, ref.Hash())
		}
		if err := repo.Storer.SetReference(head); err != nil {
			return zerr.Wrap(domain.ErrGitOperationFailed, err.Error())
		}
		return nil
	}
	return nil
}

func tagNames(repo *gogit.Repository) ([]string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return nil, zerr.Wrap(domain.ErrGitOperationFailed, err.Error())
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(domain.ErrGitOperationFailed, err.Error())
	}
	return tags, nil
}

func commitTree(repo *gogit.Repository, url, rev string) (*object.Tree, error) {
	if !plumbing.IsHash(rev) {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidReference, "not a commit id"), "revision", rev)
	}

	commit, err := repo.CommitObject(plumbing.NewHash(rev))
	if err != nil {
		err = zerr.With(zerr.Wrap(domain.ErrInvalidReference, err.Error()), "url", url)
		return nil, zerr.With(err, "revision", rev)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrGitOperationFailed, err.Error()), "revision", rev)
	}
	return tree, nil
}
