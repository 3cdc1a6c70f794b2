package host

import (
	"fmt"
	"strings"

	"vlower/internal/diag"
	"vlower/internal/vir"
)

// Attribute is one raw annotation, e.g. verifier::fuel(3).
type Attribute struct {
	Span diag.Span
	Name string
	Args []string
}

func (a Attribute) String() string {
	if a.Args == nil {
		return a.Name
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(a.Args, ", "))
}

// ParseAttribute reads the textual form "name" or "name(arg, ...)".
func ParseAttribute(span diag.Span, text string) Attribute {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return Attribute{Span: span, Name: text}
	}
	attr := Attribute{Span: span, Name: strings.TrimSpace(text[:open]), Args: []string{}}
	inner := strings.TrimSpace(text[open+1 : len(text)-1])
	if inner == "" {
		return attr
	}
	for _, arg := range splitArgs(inner) {
		attr.Args = append(attr.Args, strings.TrimSpace(arg))
	}
	return attr
}

// splitArgs splits on commas outside string literals and nested parentheses.
func splitArgs(s string) []string {
	var (
		args    []string
		depth   int
		quoted  bool
		escaped bool
		start   int
	)
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			args = append(args, s[start:i])
			start = i + 1
		}
	}
	return append(args, s[start:])
}

type ExprKind int

const (
	ExprOpaque ExprKind = iota
	ExprPath
	ExprLit
	ExprCall
	ExprMethodCall
	ExprBlock
	ExprClosure
)

type ClosureParam struct {
	Name string
	Ty   Ty
}

// Expr is the part of a host expression tree the pass inspects. Anything
// else is carried as opaque source text.
type Expr struct {
	Span diag.Span
	Kind ExprKind
	// Name is the path of ExprPath, the token of ExprLit, the method of
	// ExprMethodCall and the source text of ExprOpaque.
	Name string
	// Res is the resolved definition of a path or a method call.
	Res      DefID
	Callee   *Expr
	Receiver *Expr
	Args     []*Expr
	Block    *Block
	Params   []ClosureParam
	Body     *Expr
}

type Block struct {
	Stmts  []*Expr
	Tail   *Expr
	Unsafe bool
}

func (e *Expr) String() string {
	switch e.Kind {
	case ExprPath, ExprLit, ExprOpaque:
		return e.Name
	case ExprCall:
		return fmt.Sprintf("%s(%s)", e.Callee, joinExprs(e.Args))
	case ExprMethodCall:
		return fmt.Sprintf("%s.%s(%s)", e.Receiver, e.Name, joinExprs(e.Args))
	case ExprBlock:
		var b strings.Builder
		if e.Block.Unsafe {
			b.WriteString("unsafe ")
		}
		b.WriteString("{ ")
		for _, s := range e.Block.Stmts {
			b.WriteString(s.String())
			b.WriteString("; ")
		}
		if e.Block.Tail != nil {
			b.WriteString(e.Block.Tail.String())
			b.WriteString(" ")
		}
		b.WriteString("}")
		return b.String()
	case ExprClosure:
		params := make([]string, len(e.Params))
		for i, p := range e.Params {
			params[i] = fmt.Sprintf("%s: %s", p.Name, p.Ty)
		}
		return fmt.Sprintf("|%s| %s", strings.Join(params, ", "), e.Body)
	}
	return "<expr>"
}

func joinExprs(exprs []*Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// BodyParam is a parameter pattern of a function body.
type BodyParam struct {
	Span  diag.Span
	Name  string
	Mut   bool
	Attrs []Attribute
}

type Body struct {
	Span      diag.Span
	Params    []BodyParam
	Generator bool
	Value     *Expr
}

type ImplicitSelf int

const (
	SelfNone ImplicitSelf = iota
	SelfImm
	SelfImmRef
	SelfMutRef
	SelfMut
)

type FnDecl struct {
	HasReturn    bool
	CVariadic    bool
	ImplicitSelf ImplicitSelf
}

type FnSigDecl struct {
	Span   diag.Span
	Unsafe bool
	Decl   FnDecl
}

type GenericParamKind int

const (
	GenericType GenericParamKind = iota
	GenericLifetime
	GenericConst
)

type GenericParam struct {
	Span diag.Span
	Name string
	Kind GenericParamKind
}

type Generics struct {
	Span   diag.Span
	Params []GenericParam
}

// ImplGenerics are the generics of the impl block enclosing a method.
type ImplGenerics struct {
	Generics Generics
	Impl     DefID
}

type Ident struct {
	Span diag.Span
	Name string
}

// FnItem is a function or method. Exactly one of Body and ParamNames is
// set; ParamNames is used for trait method declarations without a body.
type FnItem struct {
	ID           DefID
	Kind         vir.FunctionKind
	Visibility   vir.Visibility
	Attrs        []Attribute
	Sig          FnSigDecl
	SelfGenerics *ImplGenerics
	Generics     Generics
	Body         *Body
	ParamNames   []Ident
}

type ConstItem struct {
	ID         DefID
	Span       diag.Span
	Visibility vir.Visibility
	Attrs      []Attribute
	Ty         Ty
	Body       *Body
}

type ForeignFnItem struct {
	ID         DefID
	Span       diag.Span
	Visibility vir.Visibility
	Attrs      []Attribute
	Decl       FnDecl
	Idents     []Ident
	Generics   Generics
}

type ItemKind int

const (
	ItemFn ItemKind = iota
	ItemConst
	ItemForeignFn
)

func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "fn"
	case ItemConst:
		return "const"
	case ItemForeignFn:
		return "foreign fn"
	}
	return fmt.Sprintf("ItemKind(%d)", int(k))
}

// Item is one declaration handed to the pass.
type Item struct {
	Kind    ItemKind
	Fn      *FnItem
	Const   *ConstItem
	Foreign *ForeignFnItem
}

func (it *Item) ID() DefID {
	switch it.Kind {
	case ItemConst:
		return it.Const.ID
	case ItemForeignFn:
		return it.Foreign.ID
	}
	return it.Fn.ID
}

func (it *Item) Span() diag.Span {
	switch it.Kind {
	case ItemConst:
		return it.Const.Span
	case ItemForeignFn:
		return it.Foreign.Span
	}
	return it.Fn.Sig.Span
}
