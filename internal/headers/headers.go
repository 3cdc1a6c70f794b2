// Package headers extracts the contract written at the top of a function
// body: calls such as builtin::requires(..) and builtin::ensures(..) that
// precede the executable statements.
package headers

import (
	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

// Reader turns leading clause statements into a vir.Header.
type Reader interface {
	// ReadHeader splits body into its header and the remaining block.
	ReadHeader(body *host.Body) (*vir.Header, *host.Block, error)
	// ReadHeaderBlock reads a statement list that may only hold clauses.
	ReadHeaderBlock(stmts []*host.Expr) (*vir.Header, error)
}

// Clause names, as the last segment of builtin::<name>.
const (
	Requires              = "requires"
	Ensures               = "ensures"
	Recommends            = "recommends"
	Decreases             = "decreases"
	DecreasesWhen         = "decreases_when"
	DecreasesBy           = "decreases_by"
	OpensInvariants       = "opens_invariants"
	OpensInvariantsNone   = "opens_invariants_none"
	OpensInvariantsAny    = "opens_invariants_any"
	OpensInvariantsExcept = "opens_invariants_except"
	UnwrapParameter       = "unwrap_parameter"
	Hide                  = "hide"
	ExtraDependency       = "extra_dependency"
	NoMethodBody          = "no_method_body"
)

var clauses = map[string]bool{
	Requires: true, Ensures: true, Recommends: true,
	Decreases: true, DecreasesWhen: true, DecreasesBy: true,
	OpensInvariants: true, OpensInvariantsNone: true, OpensInvariantsAny: true, OpensInvariantsExcept: true,
	UnwrapParameter: true, Hide: true, ExtraDependency: true, NoMethodBody: true,
}

func calleePath(r host.Resolver, callee *host.Expr) (vir.Path, bool) {
	if callee == nil || callee.Kind != host.ExprPath {
		return vir.Path{}, false
	}
	if callee.Res != "" {
		return r.DefPath(callee.Res), true
	}
	return vir.ParsePath(callee.Name), true
}

// IsClause reports whether e is a header clause and which one.
func IsClause(r host.Resolver, e *host.Expr) (string, bool) {
	if e == nil || e.Kind != host.ExprCall {
		return "", false
	}
	path, ok := calleePath(r, e.Callee)
	if !ok || path.Krate != vir.BuiltinKrate || len(path.Segments) != 1 {
		return "", false
	}
	name := path.Segments[0]
	return name, clauses[name]
}

// ClauseReader is the Reader used by the pass. The resolver names the
// functions referenced from decreases_by, hide and extra_dependency.
type ClauseReader struct {
	Resolver host.Resolver
}

var _ Reader = (*ClauseReader)(nil)

func NewReader(r host.Resolver) *ClauseReader {
	return &ClauseReader{Resolver: r}
}

func (cr *ClauseReader) ReadHeader(body *host.Body) (*vir.Header, *host.Block, error) {
	block := &host.Block{}
	if body.Value != nil {
		if body.Value.Kind == host.ExprBlock {
			block = body.Value.Block
		} else {
			block = &host.Block{Tail: body.Value}
		}
	}
	var n int
	for n < len(block.Stmts) {
		if _, ok := IsClause(cr.Resolver, block.Stmts[n]); !ok {
			break
		}
		n++
	}
	for _, stmt := range block.Stmts[n:] {
		if name, ok := IsClause(cr.Resolver, stmt); ok {
			return nil, nil, diag.Err(stmt.Span, name+" clause must appear at the start of the function body")
		}
	}
	h, err := cr.ReadHeaderBlock(block.Stmts[:n])
	if err != nil {
		return nil, nil, err
	}
	rest := &host.Block{Stmts: block.Stmts[n:], Tail: block.Tail, Unsafe: block.Unsafe}
	if name, ok := IsClause(cr.Resolver, block.Tail); ok {
		if name != NoMethodBody {
			return nil, nil, diag.Err(block.Tail.Span, name+" clause cannot be the value of a function body")
		}
		h.NoMethodBody = true
		rest.Tail = nil
	}
	return h, rest, nil
}

func (cr *ClauseReader) ReadHeaderBlock(stmts []*host.Expr) (*vir.Header, error) {
	h := &vir.Header{InvariantMask: vir.MaskSpec{Kind: vir.MaskNoSpec}}
	var (
		hasMask   bool
		bySpan    diag.Span
		unwrapped = map[string]bool{}
	)
	for _, stmt := range stmts {
		name, ok := IsClause(cr.Resolver, stmt)
		if !ok {
			return nil, diag.Err(stmt.Span, "only specification clauses may appear here")
		}
		switch name {
		case Requires:
			h.Require = append(h.Require, exprs(stmt.Args)...)
		case Recommends:
			h.Recommend = append(h.Recommend, exprs(stmt.Args)...)
		case Decreases:
			h.Decrease = append(h.Decrease, exprs(stmt.Args)...)
		case Ensures:
			if err := cr.ensures(h, stmt); err != nil {
				return nil, err
			}
		case DecreasesWhen:
			if len(stmt.Args) != 1 || h.DecreaseWhen != nil {
				return nil, diag.Err(stmt.Span, "expected exactly one decreases_when expression")
			}
			h.DecreaseWhen = expr(stmt.Args[0])
		case DecreasesBy:
			if h.DecreaseBy != nil {
				return nil, diag.Err(stmt.Span, "only one decreases_by is allowed")
			}
			fun, err := cr.fun(stmt)
			if err != nil {
				return nil, err
			}
			h.DecreaseBy = fun
			bySpan = stmt.Span
		case Hide:
			fun, err := cr.fun(stmt)
			if err != nil {
				return nil, err
			}
			h.Hidden = append(h.Hidden, fun)
		case ExtraDependency:
			fun, err := cr.fun(stmt)
			if err != nil {
				return nil, err
			}
			h.ExtraDependencies = append(h.ExtraDependencies, fun)
		case OpensInvariants, OpensInvariantsNone, OpensInvariantsAny, OpensInvariantsExcept:
			if hasMask {
				return nil, diag.Err(stmt.Span, "only one invariant mask is allowed")
			}
			hasMask = true
			h.InvariantMask = mask(name, stmt.Args)
		case UnwrapParameter:
			up, err := unwrap(stmt)
			if err != nil {
				return nil, err
			}
			if unwrapped[up.OuterName] {
				return nil, diag.Errorf(diag.DuplicateName, stmt.Span, "parameter %s is unwrapped more than once", up.OuterName)
			}
			unwrapped[up.OuterName] = true
			h.UnwrapParameters = append(h.UnwrapParameters, up)
		case NoMethodBody:
			h.NoMethodBody = true
		}
	}
	if len(h.Decrease) == 0 {
		if h.DecreaseWhen != nil {
			return nil, diag.Err(h.DecreaseWhen.Span, "decreases_when requires decreases")
		}
		if h.DecreaseBy != nil {
			return nil, diag.Err(bySpan, "decreases_by requires decreases")
		}
	}
	return h, nil
}

// ensures accepts either plain clause expressions or a single closure
// |name: T| { .. } that names the return value.
func (cr *ClauseReader) ensures(h *vir.Header, stmt *host.Expr) error {
	if len(stmt.Args) != 1 || stmt.Args[0].Kind != host.ExprClosure {
		h.Ensure = append(h.Ensure, exprs(stmt.Args)...)
		return nil
	}
	closure := stmt.Args[0]
	if len(closure.Params) != 1 {
		return diag.Err(closure.Span, "ensures closure must bind exactly the return value")
	}
	param := closure.Params[0]
	typ, err := host.ToVir(cr.Resolver, closure.Span, param.Ty)
	if err != nil {
		return err
	}
	if h.EnsureID != nil && h.EnsureID.Name != param.Name {
		return diag.Err(closure.Span, "ensures clauses name the return value differently ("+h.EnsureID.Name+" and "+param.Name+")")
	}
	h.EnsureID = &vir.EnsureID{Name: param.Name, Typ: typ}
	body := closure.Body
	if body != nil && body.Kind == host.ExprBlock {
		h.Ensure = append(h.Ensure, exprs(body.Block.Stmts)...)
		if body.Block.Tail != nil {
			h.Ensure = append(h.Ensure, expr(body.Block.Tail))
		}
	} else if body != nil {
		h.Ensure = append(h.Ensure, expr(body))
	}
	return nil
}

func (cr *ClauseReader) fun(stmt *host.Expr) (*vir.Fun, error) {
	if len(stmt.Args) != 1 {
		return nil, diag.Err(stmt.Span, "expected a function name")
	}
	path, ok := calleePath(cr.Resolver, stmt.Args[0])
	if !ok {
		return nil, diag.Err(stmt.Args[0].Span, "expected a function name")
	}
	return &vir.Fun{Path: path}, nil
}

func mask(name string, args []*host.Expr) vir.MaskSpec {
	switch name {
	case OpensInvariantsNone:
		return vir.MaskSpec{Kind: vir.MaskInvariantOpens}
	case OpensInvariantsAny:
		return vir.MaskSpec{Kind: vir.MaskInvariantOpensExcept}
	case OpensInvariantsExcept:
		return vir.MaskSpec{Kind: vir.MaskInvariantOpensExcept, Exprs: exprs(args)}
	}
	return vir.MaskSpec{Kind: vir.MaskInvariantOpens, Exprs: exprs(args)}
}

// unwrap reads builtin::unwrap_parameter(outer, inner, mode).
func unwrap(stmt *host.Expr) (vir.UnwrapParameter, error) {
	var up vir.UnwrapParameter
	if len(stmt.Args) != 3 {
		return up, diag.Err(stmt.Span, "unwrap_parameter expects the outer name, the inner name and a mode")
	}
	outer, inner, lit := stmt.Args[0], stmt.Args[1], stmt.Args[2]
	if outer.Kind != host.ExprPath || inner.Kind != host.ExprPath {
		return up, diag.Err(stmt.Span, "unwrap_parameter expects parameter names")
	}
	mode, ok := vir.ParseMode(lit.Name)
	if !ok || mode == vir.ModeExec {
		return up, diag.Err(lit.Span, "unwrap_parameter mode must be spec or proof")
	}
	return vir.UnwrapParameter{Mode: mode, OuterName: outer.Name, InnerName: inner.Name}, nil
}

func expr(e *host.Expr) *vir.Expr {
	return &vir.Expr{Span: e.Span, Text: e.String()}
}

func exprs(es []*host.Expr) []*vir.Expr {
	out := make([]*vir.Expr, 0, len(es))
	for _, e := range es {
		out = append(out, expr(e))
	}
	return out
}
