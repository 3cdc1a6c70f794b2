package vir

import (
	"fmt"
	"strings"
)

// Typ is a verifier type. The set of variants is closed.
type Typ interface {
	String() string
	isTyp()
}

type Bool struct{}

// Int is a bounded or unbounded integer type, named by its range ("u8", "int", "nat", ...).
type Int struct {
	Range string
}

type Tuple struct {
	Elems []Typ
}

type Datatype struct {
	Path Path
	Args []Typ
}

type TypParam struct {
	Name string
}

type StrSlice struct{}

type Decoration int

const (
	DecorateRef Decoration = iota
	DecorateBox
	DecorateGhost
	DecorateTracked
)

var decorationNames = [...]string{"&", "Box", "Ghost", "Tracked"}

// Decorate wraps a type whose wrapper is transparent to the verifier.
type Decorate struct {
	Dec   Decoration
	Inner Typ
}

func (Bool) isTyp()     {}
func (Int) isTyp()      {}
func (Tuple) isTyp()    {}
func (Datatype) isTyp() {}
func (TypParam) isTyp() {}
func (StrSlice) isTyp() {}
func (Decorate) isTyp() {}

func (Bool) String() string       { return "bool" }
func (t Int) String() string      { return t.Range }
func (t TypParam) String() string { return t.Name }
func (StrSlice) String() string   { return "StrSlice" }

func (t Tuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinTyps(t.Elems) + ")"
}

func (t Datatype) String() string {
	if len(t.Args) == 0 {
		return t.Path.String()
	}
	return fmt.Sprintf("%s<%s>", t.Path, joinTyps(t.Args))
}

func (t Decorate) String() string {
	if t.Dec == DecorateRef {
		return "&" + t.Inner.String()
	}
	return fmt.Sprintf("%s<%s>", decorationNames[t.Dec], t.Inner)
}

func joinTyps(typs []Typ) string {
	parts := make([]string, len(typs))
	for i, t := range typs {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Unit is the empty tuple, the return type of functions without one.
func Unit() Typ {
	return Tuple{}
}

// TypesEqual is structural equality.
func TypesEqual(a, b Typ) bool {
	switch a := a.(type) {
	case Bool:
		_, ok := b.(Bool)
		return ok
	case StrSlice:
		_, ok := b.(StrSlice)
		return ok
	case Int:
		b, ok := b.(Int)
		return ok && a.Range == b.Range
	case TypParam:
		b, ok := b.(TypParam)
		return ok && a.Name == b.Name
	case Tuple:
		b, ok := b.(Tuple)
		return ok && typsEqual(a.Elems, b.Elems)
	case Datatype:
		b, ok := b.(Datatype)
		return ok && a.Path.Equal(b.Path) && typsEqual(a.Args, b.Args)
	case Decorate:
		b, ok := b.(Decorate)
		return ok && a.Dec == b.Dec && TypesEqual(a.Inner, b.Inner)
	}
	return false
}

func typsEqual(a, b []Typ) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
