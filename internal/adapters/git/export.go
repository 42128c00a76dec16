package git

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.trai.ch/ipkg/internal/core/domain"
	"go.trai.ch/zerr"
)

const execPerm = 0o755

// exportFile writes one tree entry below dest.
func exportFile(dest string, f *object.File) error {
	if !filepath.IsLocal(f.Name) {
		return zerr.With(zerr.New("tree entry escapes checkout"), "path", f.Name)
	}
	target := filepath.Join(dest, filepath.FromSlash(f.Name))

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}

	if f.Mode == filemode.Symlink {
		link, err := f.Contents()
		if err != nil {
			return err
		}
		return os.Symlink(link, target)
	}

	perm := os.FileMode(domain.FilePerm)
	if f.Mode == filemode.Executable {
		perm = execPerm
	}

	r, err := f.Reader()
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck // read-only blob reader

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // target is confined to dest
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
