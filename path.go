package mailfs

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Path is an immutable, backend neutral location made of name components.
// The zero value is the root.
type Path struct {
	comps []string // nil for root; never shared with callers
}

// Root returns the root path.
func Root() Path {
	return Path{}
}

// NewPath builds a path from components. Each component is NFC normalized so
// that visually identical names compare equal. No validation is performed;
// use a factory's IsValidPath for that.
func NewPath(components ...string) Path {
	if len(components) == 0 {
		return Path{}
	}
	comps := make([]string, len(components))
	for i, c := range components {
		comps[i] = norm.NFC.String(c)
	}
	return Path{comps: comps}
}

// IsRoot reports whether p has no components.
func (p Path) IsRoot() bool {
	return len(p.comps) == 0
}

// Len returns the number of components.
func (p Path) Len() int {
	return len(p.comps)
}

// Components returns a copy of the components of p.
func (p Path) Components() []string {
	return slices.Clone(p.comps)
}

// Component returns the i-th component. It panics if i is out of range.
func (p Path) Component(i int) string {
	return p.comps[i]
}

// Last returns the final component, or "" for the root.
func (p Path) Last() string {
	if p.IsRoot() {
		return ""
	}
	return p.comps[len(p.comps)-1]
}

// Parent returns p without its last component. ok is false for the root.
func (p Path) Parent() (parent Path, ok bool) {
	if p.IsRoot() {
		return Path{}, false
	}
	return p.Truncate(len(p.comps) - 1), true
}

// Truncate returns the path made of the first n components.
func (p Path) Truncate(n int) Path {
	if n <= 0 {
		return Path{}
	}
	if n >= len(p.comps) {
		n = len(p.comps)
	}
	return Path{comps: slices.Clone(p.comps[:n])}
}

// Append returns a new path with components added to the end of p.
func (p Path) Append(components ...string) Path {
	if len(components) == 0 {
		return p
	}
	return Join(p, NewPath(components...))
}

// Join concatenates paths.
func Join(paths ...Path) Path {
	n := 0
	for _, p := range paths {
		n += len(p.comps)
	}
	if n == 0 {
		return Path{}
	}
	comps := make([]string, 0, n)
	for _, p := range paths {
		comps = append(comps, p.comps...)
	}
	return Path{comps: comps}
}

// HasPrefix reports whether prefix is p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.comps) > len(p.comps) {
		return false
	}
	return slices.Equal(p.comps[:len(prefix.comps)], prefix.comps)
}

// Equal reports whether both paths have the same component sequence.
func (p Path) Equal(o Path) bool {
	return slices.Equal(p.comps, o.comps)
}

// String returns a slash separated form for logs and debugging. It is not a
// native path; use FileSystemFactory.PathToString for that.
func (p Path) String() string {
	return "/" + strings.Join(p.comps, "/")
}
