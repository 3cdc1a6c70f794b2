// Package extspec binds an external_fn_specification proxy to the function
// it specifies. A proxy is an ordinary exec function whose body is a single
// call to the target; once its signature and trait bounds are shown to be
// identical to the target's, the proxy's contract describes the target.
package extspec

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vlower/internal/attrs"
	"vlower/internal/diag"
	"vlower/internal/headers"
	"vlower/internal/host"
	"vlower/internal/vir"
)

// ProxyDecl is the declaration carrying the external_fn_specification attribute.
type ProxyDecl struct {
	Item  *host.FnItem
	Mode  vir.Mode
	Attrs *attrs.VerifierAttrs
}

type Binder struct {
	Host host.Host
}

func NewBinder(h host.Host) *Binder {
	return &Binder{Host: h}
}

// Bind checks the proxy against its target and returns the target's path
// and true visibility.
func (b *Binder) Bind(proxy ProxyDecl) (vir.Path, vir.Visibility, error) {
	item := proxy.Item
	span := item.Sig.Span
	va := proxy.Attrs

	if proxy.Mode != vir.ModeExec {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.MalformedAttributes, span,
			"a function marked `external_fn_specification` cannot be marked `%s`", proxy.Mode)
	}
	if va.External {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.MalformedAttributes, span,
			"a function cannot be marked both `external_fn_specification` and `external`")
	}
	if va.ExternalBody {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.MalformedAttributes, span,
			"a function cannot be marked both `external_fn_specification` and `external_body`")
	}
	if item.SelfGenerics != nil {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.UnsupportedConstruct, span,
			"`external_fn_specification` attribute not supported here")
	}
	if impl, ok := b.Host.ImplOf(item.ID); ok {
		if _, ok := b.Host.ImplTraitRef(impl); ok {
			return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.UnsupportedConstruct, span,
				"external_fn_specification not supported for trait functions")
		}
	}
	if va.Autospec != nil {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.MalformedAttributes, span,
			"`external_fn_specification` attribute not yet supported with `when_used_as_spec`")
	}
	if item.Body == nil {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.UnsupportedConstruct, span,
			"external_fn_specification not supported for trait functions")
	}

	target, err := b.GetExternalDefID(span, item.Body)
	if err != nil {
		return vir.Path{}, vir.Visibility{}, err
	}
	targetPath := b.Host.DefPath(target)
	if _, ok := b.Host.TraitOf(target); ok {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.UnsupportedConstruct, span,
			"external_fn_specification not supported for trait functions")
	}
	if targetPath.Krate == vir.BuiltinKrate {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.UnsupportedConstruct, span,
			"cannot apply `external_fn_specification` to verifier builtin functions")
	}

	if err := b.checkSignatures(span, item.ID, target); err != nil {
		return vir.Path{}, vir.Visibility{}, err
	}

	vis := b.Host.Visibility(target)
	if !vis.Covers(item.Visibility) {
		return vir.Path{}, vir.Visibility{}, diag.Errorf(diag.VisibilityViolation, span,
			"a function marked `external_fn_specification` must be visible to the function it provides a spec for")
	}
	log.Debugf("bound %s to external %s (%s)", b.Host.DefPath(item.ID), targetPath, vis)
	return targetPath, vis, nil
}

func (b *Binder) checkSignatures(span diag.Span, proxy, target host.DefID) error {
	def1, ok1 := b.Host.FnDef(proxy)
	def2, ok2 := b.Host.FnDef(target)
	mismatch := func() error {
		return diag.Errorf(diag.ShapeMismatch, span,
			"external_fn_specification requires function type signature to match exactly (got `%s` and `%s`)",
			fnDefString(def1, ok1, proxy), fnDefString(def2, ok2, target))
	}
	if !ok1 || !ok2 || len(def1.Args) != len(def2.Args) {
		return mismatch()
	}

	// Both signatures are instantiated with the proxy's own generic
	// arguments so that differently named parameters line up.
	args := def1.Args
	sig1, err := b.Host.Substitute(proxy, args)
	if err != nil {
		return errors.Wrapf(err, "signature of %s", proxy)
	}
	sig2, err := b.Host.Substitute(target, args)
	if err != nil {
		return errors.Wrapf(err, "signature of %s", target)
	}
	if !b.Host.CanonicalizeSig(sig1).Equal(b.Host.CanonicalizeSig(sig2)) {
		return mismatch()
	}

	preds1, err := b.Host.InstantiatePredicates(proxy, args)
	if err != nil {
		return errors.Wrapf(err, "predicates of %s", proxy)
	}
	preds2, err := b.Host.InstantiatePredicates(target, args)
	if err != nil {
		return errors.Wrapf(err, "predicates of %s", target)
	}
	if !PredicatesMatch(b.Host, preds1, preds2) {
		return diag.Errorf(diag.ShapeMismatch, span,
			"external_fn_specification requires function type signature to match exactly (trait bound mismatch)")
	}
	return nil
}

func fnDefString(def host.FnDef, ok bool, id host.DefID) string {
	if !ok {
		return fmt.Sprintf("%s (not a function)", id)
	}
	return def.String()
}

// PredicatesMatch reports whether preds1 and preds2 are equal as multisets
// once bound variables are canonicalized. Every predicate of preds1 must
// consume a distinct equal predicate of preds2.
func PredicatesMatch(oracle host.TypeOracle, preds1, preds2 []host.Predicate) bool {
	if len(preds1) != len(preds2) {
		return false
	}
	remaining := make([]host.Predicate, len(preds2))
	for i, p := range preds2 {
		remaining[i] = oracle.CanonicalizePredicate(p)
	}
	for _, p := range preds1 {
		p = oracle.CanonicalizePredicate(p)
		found := false
		for i := range remaining {
			if p.Equal(remaining[i]) {
				remaining = append(remaining[:i], remaining[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetExternalDefID returns the function called at the end of a proxy body.
// Leading statements are allowed only when they are contract clauses.
func (b *Binder) GetExternalDefID(span diag.Span, body *host.Body) (host.DefID, error) {
	fail := func() (host.DefID, error) {
		return "", diag.Errorf(diag.ShapeMismatch, span,
			"external_fn_specification encoding error: body should end in call expression")
	}
	expr := body.Value
	if expr == nil {
		return fail()
	}
	if expr.Kind == host.ExprBlock {
		for _, stmt := range expr.Block.Stmts {
			if _, ok := headers.IsClause(b.Host, stmt); !ok {
				return fail()
			}
		}
		expr = expr.Block.Tail
		if expr == nil {
			return fail()
		}
	}
	var (
		id host.DefID
		ok bool
	)
	switch expr.Kind {
	case host.ExprCall:
		id, ok = b.Host.ResolveCallee(expr.Callee)
	case host.ExprMethodCall:
		id, ok = b.Host.ResolveMethodCall(expr)
	}
	if !ok {
		return fail()
	}
	return id, nil
}
