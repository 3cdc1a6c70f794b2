// Package host is the query surface the lowering pass needs from the host
// compiler: its typed declarations, type signatures, predicates and name
// resolution.
package host

import (
	"fmt"
	"strings"
)

// DefID identifies a host definition.
type DefID string

// Ty is a host (pre-lowering) type.
type Ty interface {
	String() string
	isTy()
}

type TyPrim struct {
	Name string
}

type TyParam struct {
	Name string
}

type TyTuple struct {
	Elems []Ty
}

type TyAdt struct {
	Def  DefID
	Args []Ty
}

// TyRef is a reference. An empty Region is an elided or erased lifetime.
type TyRef struct {
	Region string
	Mut    bool
	Inner  Ty
}

type TyRawPtr struct {
	Mut   bool
	Inner Ty
}

type TyFnPtr struct {
	Inputs []Ty
	Output Ty
}

func (TyPrim) isTy()   {}
func (TyParam) isTy()  {}
func (TyTuple) isTy()  {}
func (TyAdt) isTy()    {}
func (TyRef) isTy()    {}
func (TyRawPtr) isTy() {}
func (TyFnPtr) isTy()  {}

func (t TyPrim) String() string  { return t.Name }
func (t TyParam) String() string { return t.Name }

func (t TyTuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinTys(t.Elems) + ")"
}

func (t TyAdt) String() string {
	if len(t.Args) == 0 {
		return string(t.Def)
	}
	return fmt.Sprintf("%s<%s>", t.Def, joinTys(t.Args))
}

func (t TyRef) String() string {
	var b strings.Builder
	b.WriteString("&")
	if t.Region != "" {
		b.WriteString(t.Region)
		b.WriteString(" ")
	}
	if t.Mut {
		b.WriteString("mut ")
	}
	b.WriteString(t.Inner.String())
	return b.String()
}

func (t TyRawPtr) String() string {
	if t.Mut {
		return "*mut " + t.Inner.String()
	}
	return "*const " + t.Inner.String()
}

func (t TyFnPtr) String() string {
	s := "fn(" + joinTys(t.Inputs) + ")"
	if t.Output != nil && !IsUnit(t.Output) {
		s += " -> " + t.Output.String()
	}
	return s
}

func joinTys(tys []Ty) string {
	parts := make([]string, len(tys))
	for i, t := range tys {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func Unit() Ty {
	return TyTuple{}
}

func IsUnit(t Ty) bool {
	tup, ok := t.(TyTuple)
	return ok && len(tup.Elems) == 0
}

// TyEqual is literal structural equality, region names included.
func TyEqual(a, b Ty) bool {
	switch a := a.(type) {
	case TyPrim:
		b, ok := b.(TyPrim)
		return ok && a.Name == b.Name
	case TyParam:
		b, ok := b.(TyParam)
		return ok && a.Name == b.Name
	case TyTuple:
		b, ok := b.(TyTuple)
		return ok && tysEqual(a.Elems, b.Elems)
	case TyAdt:
		b, ok := b.(TyAdt)
		return ok && a.Def == b.Def && tysEqual(a.Args, b.Args)
	case TyRef:
		b, ok := b.(TyRef)
		return ok && a.Region == b.Region && a.Mut == b.Mut && TyEqual(a.Inner, b.Inner)
	case TyRawPtr:
		b, ok := b.(TyRawPtr)
		return ok && a.Mut == b.Mut && TyEqual(a.Inner, b.Inner)
	case TyFnPtr:
		b, ok := b.(TyFnPtr)
		return ok && tysEqual(a.Inputs, b.Inputs) && TyEqual(a.Output, b.Output)
	}
	return false
}

func tysEqual(a, b []Ty) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TyEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Subst maps generic parameter names to types.
type Subst map[string]Ty

// Apply replaces every parameter in one simultaneous step, so a substitution
// that swaps two names never feeds its own output back in.
func (s Subst) Apply(t Ty) Ty {
	switch t := t.(type) {
	case TyParam:
		if r, ok := s[t.Name]; ok {
			return r
		}
		return t
	case TyTuple:
		return TyTuple{Elems: s.applyAll(t.Elems)}
	case TyAdt:
		return TyAdt{Def: t.Def, Args: s.applyAll(t.Args)}
	case TyRef:
		return TyRef{Region: t.Region, Mut: t.Mut, Inner: s.Apply(t.Inner)}
	case TyRawPtr:
		return TyRawPtr{Mut: t.Mut, Inner: s.Apply(t.Inner)}
	case TyFnPtr:
		return TyFnPtr{Inputs: s.applyAll(t.Inputs), Output: s.Apply(t.Output)}
	}
	return t
}

func (s Subst) applyAll(tys []Ty) []Ty {
	if tys == nil {
		return nil
	}
	out := make([]Ty, len(tys))
	for i, t := range tys {
		out[i] = s.Apply(t)
	}
	return out
}

// mapRegions rewrites every region name inside t.
func mapRegions(t Ty, f func(string) string) Ty {
	switch t := t.(type) {
	case TyTuple:
		return TyTuple{Elems: mapRegionsAll(t.Elems, f)}
	case TyAdt:
		return TyAdt{Def: t.Def, Args: mapRegionsAll(t.Args, f)}
	case TyRef:
		return TyRef{Region: f(t.Region), Mut: t.Mut, Inner: mapRegions(t.Inner, f)}
	case TyRawPtr:
		return TyRawPtr{Mut: t.Mut, Inner: mapRegions(t.Inner, f)}
	case TyFnPtr:
		return TyFnPtr{Inputs: mapRegionsAll(t.Inputs, f), Output: mapRegions(t.Output, f)}
	}
	return t
}

func mapRegionsAll(tys []Ty, f func(string) string) []Ty {
	if tys == nil {
		return nil
	}
	out := make([]Ty, len(tys))
	for i, t := range tys {
		out[i] = mapRegions(t, f)
	}
	return out
}

// visitRegions calls f for every region in t, in order of appearance.
func visitRegions(t Ty, f func(string)) {
	switch t := t.(type) {
	case TyTuple:
		for _, e := range t.Elems {
			visitRegions(e, f)
		}
	case TyAdt:
		for _, a := range t.Args {
			visitRegions(a, f)
		}
	case TyRef:
		f(t.Region)
		visitRegions(t.Inner, f)
	case TyRawPtr:
		visitRegions(t.Inner, f)
	case TyFnPtr:
		for _, in := range t.Inputs {
			visitRegions(in, f)
		}
		visitRegions(t.Output, f)
	}
}
