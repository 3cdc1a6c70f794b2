package vir

import (
	"strings"
)

// Path is a fully qualified item path, krate first.
type Path struct {
	Krate    string
	Segments []string
}

func NewPath(krate string, segments ...string) Path {
	return Path{Krate: krate, Segments: append([]string(nil), segments...)}
}

// ParsePath splits "krate::a::b" into a Path.
func ParsePath(s string) Path {
	parts := strings.Split(s, "::")
	return NewPath(parts[0], parts[1:]...)
}

func (p Path) String() string {
	if len(p.Segments) == 0 {
		return p.Krate
	}
	return p.Krate + "::" + strings.Join(p.Segments, "::")
}

func (p Path) Equal(other Path) bool {
	if p.Krate != other.Krate || len(p.Segments) != len(other.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether other lies inside p (or is p).
func (p Path) IsPrefixOf(other Path) bool {
	if p.Krate != other.Krate || len(p.Segments) > len(other.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

func (p Path) LastSegment() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// WithLastSegment turns a::b::c into a::b::name.
func (p Path) WithLastSegment(name string) Path {
	if len(p.Segments) == 0 {
		panic("empty path")
	}
	segments := append([]string(nil), p.Segments...)
	segments[len(segments)-1] = name
	return Path{Krate: p.Krate, Segments: segments}
}

func (p Path) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// Fun names a function by its path.
type Fun struct {
	Path Path
}

func (f *Fun) String() string {
	return f.Path.String()
}

func (f *Fun) MarshalYAML() (interface{}, error) {
	return f.Path.String(), nil
}

// Visibility restricts an item to a module subtree; nil means public.
type Visibility struct {
	RestrictedTo *Path
}

func Public() Visibility {
	return Visibility{}
}

func RestrictedTo(module Path) Visibility {
	return Visibility{RestrictedTo: &module}
}

func (v Visibility) IsPublic() bool {
	return v.RestrictedTo == nil
}

// Covers reports whether v is visible everywhere inner is visible.
func (v Visibility) Covers(inner Visibility) bool {
	if v.RestrictedTo == nil {
		return true
	}
	if inner.RestrictedTo == nil {
		return false
	}
	return v.RestrictedTo.IsPrefixOf(*inner.RestrictedTo)
}

func (v Visibility) String() string {
	if v.RestrictedTo == nil {
		return "pub"
	}
	return "pub(in " + v.RestrictedTo.String() + ")"
}

func (v Visibility) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}
