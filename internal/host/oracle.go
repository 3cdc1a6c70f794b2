package host

import (
	"vlower/internal/vir"
)

// TypeOracle answers type questions about host definitions.
type TypeOracle interface {
	// FnDef returns the type of a function item with its identity generic arguments.
	FnDef(id DefID) (FnDef, bool)
	// FnSig returns the signature of id with its generic parameters left in place.
	FnSig(id DefID) (FnSig, error)
	// Substitute returns the signature of id with args for its generic parameters.
	Substitute(id DefID, args []Ty) (FnSig, error)
	// PredicatesOf returns the where-clauses declared on id.
	PredicatesOf(id DefID) []Predicate
	// InstantiatePredicates returns the where-clauses of id with args substituted.
	InstantiatePredicates(id DefID, args []Ty) ([]Predicate, error)
	CanonicalizeSig(sig FnSig) FnSig
	CanonicalizePredicate(p Predicate) Predicate
}

// Resolver answers name and ownership questions.
type Resolver interface {
	DefPath(id DefID) vir.Path
	// ResolveCallee resolves the callee path of a call expression.
	ResolveCallee(callee *Expr) (DefID, bool)
	// ResolveMethodCall resolves a method call through its receiver type.
	ResolveMethodCall(call *Expr) (DefID, bool)
	TraitOf(id DefID) (DefID, bool)
	ImplOf(id DefID) (DefID, bool)
	ImplTraitRef(impl DefID) (DefID, bool)
	// Visibility is the true visibility of id, resolved relative to its owning module.
	Visibility(id DefID) vir.Visibility
	IsDiagnosticItem(name string, id DefID) bool
}

type Host interface {
	TypeOracle
	Resolver
}
