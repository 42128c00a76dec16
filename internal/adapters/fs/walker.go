// Package fs provides file system adapters for walking, matching and hashing.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files below root, skipping VCS metadata, the ipkg cache,
// entries whose name matches one of ignores and paths excluded by root/.gitignore.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		gi := loadGitignore(root)

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root && (w.skip(d, ignores) || gi.excludes(root, path)) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skip(d fs.DirEntry, ignores []string) bool {
	name := d.Name()

	if d.IsDir() {
		switch name {
		case ".git", ".jj", ".ipkg":
			return true
		}
	}

	for _, pattern := range ignores {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

type gitignore struct {
	*ignore.GitIgnore
}

func loadGitignore(root string) gitignore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return gitignore{}
	}
	return gitignore{gi}
}

func (g gitignore) excludes(root, path string) bool {
	if g.GitIgnore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return g.MatchesPath(filepath.ToSlash(rel))
}
