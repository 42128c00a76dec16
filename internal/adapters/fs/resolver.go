package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/ipkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceFileResolver = (*Resolver)(nil)

// Resolver implements ports.SourceFileResolver with filepath.Glob.
// A "**" segment matches any number of directories.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveSources expands patterns relative to root into a sorted list of files.
// A pattern naming a directory contributes every file below it.
func (r *Resolver) ResolveSources(patterns []string, root string) ([]string, error) {
	unique := make(map[string]struct{})

	for _, pattern := range patterns {
		matches, err := r.expand(pattern, root)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, zerr.With(zerr.New("source pattern matched no files"), "pattern", pattern)
		}
		for _, m := range matches {
			unique[m] = struct{}{}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	sort.Strings(result)
	return result, nil
}

func (r *Resolver) expand(pattern, root string) ([]string, error) {
	pattern = filepath.ToSlash(filepath.Clean(pattern))
	if strings.Contains(pattern, "**") {
		return r.expandRecursive(pattern, root)
	}

	path := filepath.Join(root, filepath.FromSlash(pattern))
	matches, err := filepath.Glob(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", path)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat source"), "path", m)
		}
		if !info.IsDir() {
			files = append(files, m)
			continue
		}
		for f := range r.walker.WalkFiles(m, nil) {
			files = append(files, f)
		}
	}
	return files, nil
}

func (r *Resolver) expandRecursive(pattern, root string) ([]string, error) {
	segments := strings.Split(pattern, "/")
	for _, seg := range segments {
		if _, err := filepath.Match(seg, ""); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "pattern", pattern)
		}
	}

	var files []string
	for path := range r.walker.WalkFiles(root, nil) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if matchSegments(segments, strings.Split(filepath.ToSlash(rel), "/")) {
			files = append(files, path)
		}
	}
	return files, nil
}

// matchSegments matches path segments against pattern segments, where "**"
// consumes zero or more path segments.
func matchSegments(pattern, path []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(path); i++ {
				if matchSegments(rest, path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if ok, _ := filepath.Match(pattern[0], path[0]); !ok {
			return false
		}
		pattern, path = pattern[1:], path[1:]
	}
	return len(path) == 0
}
