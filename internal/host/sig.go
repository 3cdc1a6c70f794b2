package host

import (
	"fmt"
	"strings"
)

// FnSig is a function signature under a binder of late-bound region names.
type FnSig struct {
	BoundVars []string
	Inputs    []Ty
	Output    Ty
	CVariadic bool
	Unsafe    bool
}

// FnDef is the type of a function item: the definition plus its generic arguments.
type FnDef struct {
	Def  DefID
	Args []Ty
}

func (d FnDef) String() string {
	if len(d.Args) == 0 {
		return fmt.Sprintf("fn() {%s}", d.Def)
	}
	return fmt.Sprintf("fn() {%s::<%s>}", d.Def, joinTys(d.Args))
}

func (s FnSig) String() string {
	var b strings.Builder
	if len(s.BoundVars) > 0 {
		fmt.Fprintf(&b, "for<%s> ", strings.Join(s.BoundVars, ", "))
	}
	if s.Unsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("fn(")
	b.WriteString(joinTys(s.Inputs))
	if s.CVariadic {
		b.WriteString(", ...")
	}
	b.WriteString(")")
	if s.Output != nil && !IsUnit(s.Output) {
		b.WriteString(" -> ")
		b.WriteString(s.Output.String())
	}
	return b.String()
}

func (s FnSig) output() Ty {
	if s.Output == nil {
		return Unit()
	}
	return s.Output
}

// Equal is literal equality; canonicalize both sides first to ignore binder names.
func (s FnSig) Equal(o FnSig) bool {
	if s.CVariadic != o.CVariadic || s.Unsafe != o.Unsafe {
		return false
	}
	if !stringsEqual(s.BoundVars, o.BoundVars) {
		return false
	}
	return tysEqual(s.Inputs, o.Inputs) && TyEqual(s.output(), o.output())
}

func (s FnSig) Subst(m Subst) FnSig {
	return FnSig{
		BoundVars: s.BoundVars,
		Inputs:    m.applyAll(s.Inputs),
		Output:    m.Apply(s.output()),
		CVariadic: s.CVariadic,
		Unsafe:    s.Unsafe,
	}
}

type PredKind int

const (
	PredTrait PredKind = iota
	PredProjection
	PredTypeOutlives
	PredRegionOutlives
)

// Predicate is one where-clause of a definition.
//
//	PredTrait:          Self: Trait<Args>
//	PredProjection:     <Self as Trait<Args>>::Item == Term
//	PredTypeOutlives:   Self: Region
//	PredRegionOutlives: Region: Bound
type Predicate struct {
	BoundVars []string
	Kind      PredKind
	Self      Ty
	Trait     DefID
	Args      []Ty
	Item      string
	Term      Ty
	Region    string
	Bound     string
}

func (p Predicate) String() string {
	var b strings.Builder
	if len(p.BoundVars) > 0 {
		fmt.Fprintf(&b, "for<%s> ", strings.Join(p.BoundVars, ", "))
	}
	traitRef := string(p.Trait)
	if len(p.Args) > 0 {
		traitRef = fmt.Sprintf("%s<%s>", p.Trait, joinTys(p.Args))
	}
	switch p.Kind {
	case PredTrait:
		fmt.Fprintf(&b, "%s: %s", p.Self, traitRef)
	case PredProjection:
		fmt.Fprintf(&b, "<%s as %s>::%s == %s", p.Self, traitRef, p.Item, p.Term)
	case PredTypeOutlives:
		fmt.Fprintf(&b, "%s: %s", p.Self, p.Region)
	case PredRegionOutlives:
		fmt.Fprintf(&b, "%s: %s", p.Region, p.Bound)
	}
	return b.String()
}

func (p Predicate) Equal(o Predicate) bool {
	if p.Kind != o.Kind || !stringsEqual(p.BoundVars, o.BoundVars) {
		return false
	}
	switch p.Kind {
	case PredTrait:
		return TyEqual(p.Self, o.Self) && p.Trait == o.Trait && tysEqual(p.Args, o.Args)
	case PredProjection:
		return TyEqual(p.Self, o.Self) && p.Trait == o.Trait && tysEqual(p.Args, o.Args) &&
			p.Item == o.Item && TyEqual(p.Term, o.Term)
	case PredTypeOutlives:
		return TyEqual(p.Self, o.Self) && p.Region == o.Region
	case PredRegionOutlives:
		return p.Region == o.Region && p.Bound == o.Bound
	}
	return false
}

func (p Predicate) Subst(m Subst) Predicate {
	q := p
	if p.Self != nil {
		q.Self = m.Apply(p.Self)
	}
	q.Args = m.applyAll(p.Args)
	if p.Term != nil {
		q.Term = m.Apply(p.Term)
	}
	return q
}

func (p Predicate) mapRegions(f func(string) string) Predicate {
	q := p
	if p.Self != nil {
		q.Self = mapRegions(p.Self, f)
	}
	q.Args = mapRegionsAll(p.Args, f)
	if p.Term != nil {
		q.Term = mapRegions(p.Term, f)
	}
	if p.Region != "" {
		q.Region = f(p.Region)
	}
	if p.Bound != "" {
		q.Bound = f(p.Bound)
	}
	return q
}

func (p Predicate) visitRegions(f func(string)) {
	if p.Kind == PredRegionOutlives {
		f(p.Region)
		f(p.Bound)
		return
	}
	if p.Self != nil {
		visitRegions(p.Self, f)
	}
	for _, a := range p.Args {
		visitRegions(a, f)
	}
	if p.Term != nil {
		visitRegions(p.Term, f)
	}
	if p.Kind == PredTypeOutlives {
		f(p.Region)
	}
}

// anonymize renumbers the bound variables of a binder in order of first
// appearance; bound names that never appear keep their relative order at the end.
func anonymize(bound []string, visit func(func(string))) ([]string, func(string) string) {
	if len(bound) == 0 {
		return bound, func(r string) string { return r }
	}
	isBound := make(map[string]bool, len(bound))
	for _, b := range bound {
		isBound[b] = true
	}
	renamed := make(map[string]string, len(bound))
	next := 0
	assign := func(r string) {
		if isBound[r] {
			if _, ok := renamed[r]; !ok {
				renamed[r] = fmt.Sprintf("'^%d", next)
				next++
			}
		}
	}
	visit(assign)
	for _, b := range bound {
		assign(b)
	}
	anon := make([]string, len(bound))
	for i := range anon {
		anon[i] = fmt.Sprintf("'^%d", i)
	}
	return anon, func(r string) string {
		if n, ok := renamed[r]; ok {
			return n
		}
		return r
	}
}

// CanonicalizeSig renames the signature's bound regions to a fixed scheme.
func CanonicalizeSig(s FnSig) FnSig {
	anon, rename := anonymize(s.BoundVars, func(f func(string)) {
		for _, in := range s.Inputs {
			visitRegions(in, f)
		}
		visitRegions(s.output(), f)
	})
	return FnSig{
		BoundVars: anon,
		Inputs:    mapRegionsAll(s.Inputs, rename),
		Output:    mapRegions(s.output(), rename),
		CVariadic: s.CVariadic,
		Unsafe:    s.Unsafe,
	}
}

// CanonicalizePredicate renames a higher-ranked predicate's bound regions.
func CanonicalizePredicate(p Predicate) Predicate {
	anon, rename := anonymize(p.BoundVars, p.visitRegions)
	q := p.mapRegions(rename)
	q.BoundVars = anon
	return q
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
