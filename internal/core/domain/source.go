package domain

import (
	"fmt"
	"strings"
)

// SourceKind tags the variant of a source descriptor.
type SourceKind uint8

const (
	// SourceUnknown is the zero value and never valid.
	SourceUnknown SourceKind = iota
	// SourceGit is a remote git repository at a reference.
	SourceGit
	// SourcePath is a local directory.
	SourcePath
	// SourceRegistry is a named package with a version constraint in a registry index.
	SourceRegistry
)

func (k SourceKind) String() string {
	switch k {
	case SourceGit:
		return "git"
	case SourcePath:
		return "path"
	case SourceRegistry:
		return "registry"
	case SourceUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("SourceKind(%d)", uint8(k))
	}
}

// SourceDescriptor is the unresolved source a manifest declares for a dependency.
// Exactly the fields of its Kind are set.
type SourceDescriptor struct {
	Kind SourceKind

	// URL and Ref describe a git source. Ref is a branch, tag, revision or a version constraint over tags.
	URL string
	Ref string

	// Path describes a local source, as written in the manifest.
	Path string

	// Name and Version describe a registry source. Version is a constraint.
	Name    string
	Version string
}

// GitSource returns a git descriptor.
func GitSource(url, ref string) SourceDescriptor {
	return SourceDescriptor{Kind: SourceGit, URL: url, Ref: ref}
}

// PathSource returns a path descriptor.
func PathSource(path string) SourceDescriptor {
	return SourceDescriptor{Kind: SourcePath, Path: path}
}

// RegistrySource returns a registry descriptor.
func RegistrySource(name, constraint string) SourceDescriptor {
	return SourceDescriptor{Kind: SourceRegistry, Name: name, Version: constraint}
}

func (d SourceDescriptor) String() string {
	switch d.Kind {
	case SourceGit:
		if d.Ref == "" {
			return "git " + d.URL
		}
		return "git " + d.URL + " @ " + d.Ref
	case SourcePath:
		return "path " + d.Path
	case SourceRegistry:
		return "registry " + d.Name + " " + d.Version
	case SourceUnknown:
		return "unknown source"
	default:
		return d.Kind.String()
	}
}

// ResolvedSource is a descriptor pinned to concrete content.
// Two resolved sources are the same source exactly when their keys are equal.
type ResolvedSource struct {
	Kind SourceKind

	// URL and Revision pin git and registry sources. Registry entries are backed by git.
	URL      string
	Revision string

	// Path is the canonical absolute directory of a path source.
	Path string

	// Version is the semantic version selected from tags or a registry, if any.
	Version string
}

// Key returns the canonical identity of the source.
// Git and registry sources pinning the same content share a key.
func (s ResolvedSource) Key() string {
	switch s.Kind {
	case SourcePath:
		return "path:" + s.Path
	case SourceGit, SourceRegistry:
		return "git:" + NormalizeURL(s.URL) + "@" + s.Revision
	case SourceUnknown:
		return ""
	default:
		return ""
	}
}

// Equal reports whether both sources pin the same content.
func (s ResolvedSource) Equal(o ResolvedSource) bool {
	return s.Key() == o.Key()
}

// IsPath reports whether the source is a local directory.
func (s ResolvedSource) IsPath() bool {
	return s.Kind == SourcePath
}

func (s ResolvedSource) String() string {
	switch s.Kind {
	case SourcePath:
		return "path " + s.Path
	case SourceGit, SourceRegistry:
		rev := s.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if s.Version != "" {
			return s.Kind.String() + " " + s.URL + " @ " + rev + " (" + s.Version + ")"
		}
		return s.Kind.String() + " " + s.URL + " @ " + rev
	case SourceUnknown:
		return "unresolved"
	default:
		return s.Kind.String()
	}
}

// NormalizeURL strips the decorations that do not change which repository a URL names.
func NormalizeURL(url string) string {
	u := strings.TrimSpace(url)
	u = strings.TrimRight(u, "/")
	u = strings.TrimSuffix(u, ".git")
	return u
}
