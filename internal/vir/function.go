package vir

import (
	"vlower/internal/diag"
)

// Expr is a contract or body expression. Expression lowering is done by a
// later pass; this one only carries them.
type Expr struct {
	Span diag.Span
	Text string
}

func (e *Expr) String() string {
	return e.Text
}

func (e *Expr) MarshalYAML() (interface{}, error) {
	return e.Text, nil
}

type Body struct {
	Span  diag.Span
	Stmts []*Expr
	Tail  *Expr
}

type UnwrappedInfo struct {
	Mode      Mode
	OuterName string
}

type Param struct {
	Span diag.Span
	Name string
	Typ  Typ
	Mode Mode
	// IsMut is set for `x: &mut T` as well as `x: Tracked<&mut T>` / `x: Ghost<&mut T>`.
	IsMut         bool
	UnwrappedInfo *UnwrappedInfo
}

type UnwrapParameter struct {
	Mode      Mode
	OuterName string
	InnerName string
}

type MaskKind int

const (
	MaskNoSpec MaskKind = iota
	MaskInvariantOpens
	MaskInvariantOpensExcept
)

type MaskSpec struct {
	Kind  MaskKind
	Exprs []*Expr
}

// EnsureID is the named return binding of an ensures clause.
type EnsureID struct {
	Name string
	Typ  Typ
}

// Header is the contract extracted from the leading statements of a body.
type Header struct {
	Require           []*Expr
	Ensure            []*Expr
	EnsureID          *EnsureID
	Recommend         []*Expr
	Decrease          []*Expr
	DecreaseWhen      *Expr
	DecreaseBy        *Fun
	InvariantMask     MaskSpec
	UnwrapParameters  []UnwrapParameter
	Hidden            []*Fun
	ExtraDependencies []*Fun
	NoMethodBody      bool
}

type FunctionKindTag int

const (
	KindStatic FunctionKindTag = iota
	KindTraitMethodDecl
	KindTraitMethodImpl
)

type FunctionKind struct {
	Tag FunctionKindTag
	// Trait is set for trait method declarations and implementations.
	Trait *Path
	// Method is the trait method an implementation provides.
	Method *Fun
	// ImplPath is the implementing impl block.
	ImplPath *Path
}

func StaticKind() FunctionKind {
	return FunctionKind{Tag: KindStatic}
}

func TraitMethodDeclKind(trait Path) FunctionKind {
	return FunctionKind{Tag: KindTraitMethodDecl, Trait: &trait}
}

func TraitMethodImplKind(method *Fun, trait, impl Path) FunctionKind {
	return FunctionKind{Tag: KindTraitMethodImpl, Method: method, Trait: &trait, ImplPath: &impl}
}

func (k FunctionKind) String() string {
	switch k.Tag {
	case KindTraitMethodDecl:
		return "trait_method_decl"
	case KindTraitMethodImpl:
		return "trait_method_impl"
	}
	return "static"
}

func (k FunctionKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

type Publish int

const (
	PublishPrivate Publish = iota
	PublishOpaque
	PublishVisible
)

// GenericBound is the list of traits a type parameter must implement.
type GenericBound struct {
	Traits []Path
}

type TypBound struct {
	Name  string
	Bound GenericBound
}

type FunctionAttrs struct {
	UsesGhostBlocks bool
	Inline          bool
	Hidden          []*Fun
	CustomReqErr    *string
	NoAutoTrigger   bool
	BroadcastForall bool
	BitVector       bool
	Autospec        *Fun
	Atomic          bool
	IntegerRing     bool
	IsDecreaseBy    bool
	CheckRecommends bool
	Nonlinear       bool
	SpinoffProver   bool
	Memoize         bool
}

// Function is the normalized record produced for one declaration.
type Function struct {
	Span              diag.Span
	Name              *Fun
	Proxy             *Path
	Kind              FunctionKind
	Visibility        Visibility
	Mode              Mode
	Fuel              uint32
	TypBounds         []TypBound
	Params            []*Param
	Ret               *Param
	Require           []*Expr
	Ensure            []*Expr
	Recommend         []*Expr
	Decrease          []*Expr
	DecreaseWhen      *Expr
	DecreaseBy        *Fun
	MaskSpec          MaskSpec
	IsConst           bool
	Publish           *Publish
	Attrs             FunctionAttrs
	Body              *Body
	ExtraDependencies []*Fun
}

// Krate collects the assembled functions of one whole-program pass.
type Krate struct {
	Functions []*Function
}

type IgnoredFunction struct {
	Name *Fun
	Span diag.Span
}

// ErasureInfo records declarations that were intentionally left out of the
// Krate so later passes do not expect a definition for them.
type ErasureInfo struct {
	ExternalFunctions []*Fun
	IgnoredFunctions  []IgnoredFunction
}
