package lower

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vlower/internal/attrs"
	"vlower/internal/diag"
	"vlower/internal/extspec"
	"vlower/internal/host"
	"vlower/internal/vir"
)

type paramName struct {
	name  string
	span  diag.Span
	attrs []host.Attribute
	// fromBody is false for the bare parameter names of a trait method declaration.
	fromBody bool
}

type classifiedParam struct {
	param   *vir.Param
	wrapped *vir.Mode
}

// CheckItemFn assembles a function or method. It returns the record's name,
// or nil when no callable record was produced: external functions, the
// new_strlit constructor and VERUS_SPEC methods.
func (ctx *Context) CheckItemFn(krate *vir.Krate, item *host.FnItem) (*vir.Fun, error) {
	span := item.Sig.Span
	thisPath := ctx.Host.DefPath(item.ID)
	isVerusSpec := strings.HasPrefix(thisPath.LastSegment(), vir.VerusSpec)
	isNewStrlit := ctx.Host.IsDiagnosticItem(newStrlitItem, item.ID)

	va, err := attrs.GetVerifierAttrs(item.Attrs)
	if err != nil {
		return nil, err
	}
	mode := attrs.GetMode(vir.ModeExec, item.Attrs)

	path, visibility := thisPath, item.Visibility
	var proxy *vir.Path
	if va.ExternalFnSpecification {
		if isVerusSpec {
			return nil, diag.Errorf(diag.UnsupportedConstruct, span, "`external_fn_specification` attribute not supported with VERUS_SPEC")
		}
		if isNewStrlit {
			return nil, diag.Errorf(diag.UnsupportedConstruct, span, "`external_fn_specification` attribute not supported with new_strlit")
		}
		path, visibility, err = ctx.Binder.Bind(extspec.ProxyDecl{Item: item, Mode: mode, Attrs: va})
		if err != nil {
			return nil, err
		}
		proxy = &thisPath
	}
	name := &vir.Fun{Path: path}

	if va.External {
		log.Debugf("%s is external", name)
		ctx.Erasure.ExternalFunctions = append(ctx.Erasure.ExternalFunctions, name)
		return nil, nil
	}

	var selfBounds []vir.TypBound
	if item.SelfGenerics != nil {
		selfBounds, err = CheckGenericsBounds(ctx.Host, item.SelfGenerics.Generics, item.SelfGenerics.Impl)
		if err != nil {
			return nil, err
		}
	}

	sig, err := ctx.Host.FnSig(item.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "CheckItemFn %s", item.ID)
	}
	if item.Sig.Unsafe {
		return nil, diag.Unsupported(span, "unsafe")
	}
	ret, err := ctx.checkFnDecl(span, item.Sig.Decl, item.Attrs, mode, sig.Output)
	if err != nil {
		return nil, err
	}

	if isNewStrlit {
		if err := ctx.checkNewStrlit(span, item.Sig.Decl, sig); err != nil {
			return nil, err
		}
		if !va.ExternalBody {
			return nil, diag.Unsupported(span, "StrSlice::new must be external_body")
		}
		ctx.Erasure.IgnoredFunctions = append(ctx.Erasure.IgnoredFunctions, vir.IgnoredFunction{Name: name, Span: span})
		ctx.Erasure.ExternalFunctions = append(ctx.Erasure.ExternalFunctions, name)
		return nil, nil
	}

	sigBounds, err := CheckGenericsBounds(ctx.Host, item.Generics, item.ID)
	if err != nil {
		return nil, err
	}
	fuel := attrs.GetFuel(va)

	isTraitDecl := item.Kind.Tag == vir.KindTraitMethodDecl
	var (
		header *vir.Header
		body   *vir.Body
		names  []paramName
	)
	if item.Body != nil {
		if item.Body.Generator {
			return nil, diag.Unsupported(span, "generator_kind")
		}
		for _, p := range item.Body.Params {
			if p.Mut {
				return nil, diag.Errorf(diag.UnsupportedConstruct, p.Span,
					"the verifier does not support `mut` arguments (try writing `let mut param = param;` in the body of the function)")
			}
			names = append(names, paramName{name: p.Name, span: p.Span, attrs: p.Attrs, fromBody: true})
		}
		var rest *host.Block
		header, rest, err = ctx.Headers.ReadHeader(item.Body)
		if err != nil {
			return nil, err
		}
		if body, err = bodyToVir(item.Body.Span, rest, va.ExternalBody); err != nil {
			return nil, err
		}
	} else {
		if !isTraitDecl {
			return nil, diag.Errorf(diag.ShapeMismatch, span, "function must have a body")
		}
		for _, id := range item.ParamNames {
			names = append(names, paramName{name: id.Name, span: id.Span})
		}
		if header, err = ctx.Headers.ReadHeaderBlock(nil); err != nil {
			return nil, err
		}
	}

	if len(names) != len(sig.Inputs) {
		panic(fmt.Sprintf("internal error: %s has %d parameters but %d inputs", item.ID, len(names), len(sig.Inputs)))
	}
	params := make([]classifiedParam, 0, len(names))
	for i, pn := range names {
		paramMode := vir.ModeExec
		if pn.fromBody {
			if paramMode, err = attrs.GetVarMode(mode, pn.attrs); err != nil {
				return nil, err
			}
		} else if !isTraitDecl {
			panic("internal error: parameter without a body outside a trait method declaration")
		}
		input := sig.Inputs[i]
		inner, wrapped, isMut := ClassifyMut(ctx.Host, input)
		if isMut && mode == vir.ModeSpec {
			return nil, diag.Err(pn.span, "&mut argument not allowed for #[verifier::spec] functions")
		}
		if isMut {
			input = inner
		}
		typ, err := host.ToVir(ctx.Host, pn.span, input)
		if err != nil {
			return nil, err
		}
		params = append(params, classifiedParam{
			param:   &vir.Param{Span: pn.span, Name: pn.name, Typ: typ, Mode: paramMode, IsMut: isMut},
			wrapped: wrapped,
		})
	}

	if err := checkBodyShape(span, item.Kind, header.NoMethodBody, isVerusSpec, item.Body != nil); err != nil {
		return nil, err
	}
	if mode == vir.ModeSpec && len(header.Require)+len(header.Ensure) > 0 {
		return nil, diag.Err(span, "spec functions cannot have requires/ensures")
	}
	if mode != vir.ModeSpec && len(header.Recommend) > 0 {
		return nil, diag.Err(span, "non-spec functions cannot have recommends")
	}
	if mode != vir.ModeExec && va.ExternalFnSpecification {
		return nil, diag.Err(span, "external_fn_specification should be 'exec'")
	}
	if header.EnsureID != nil || len(header.Ensure) > 0 {
		if err := checkNamedReturn(span, header.EnsureID, ret); err != nil {
			return nil, err
		}
	}

	vparams, err := unwrapParams(span, mode, params, header.UnwrapParameters)
	if err != nil {
		return nil, err
	}

	var retParam *vir.Param
	switch {
	case header.EnsureID == nil && ret == nil:
		retParam = unitRet(span, mode)
	case header.EnsureID == nil:
		retParam = &vir.Param{Span: span, Name: vir.ReturnValue, Typ: ret.typ, Mode: ret.mode}
	case ret != nil:
		retParam = &vir.Param{Span: span, Name: header.EnsureID.Name, Typ: ret.typ, Mode: ret.mode}
	default:
		panic("internal error: named return without a return type")
	}

	var typBounds []vir.TypBound
	if isTraitDecl {
		typBounds = append(typBounds, vir.TypBound{Name: vir.TraitSelfTypeParam(), Bound: vir.GenericBound{Traits: []vir.Path{}}})
	}
	typBounds = append(typBounds, selfBounds...)
	typBounds = append(typBounds, sigBounds...)

	var autospec *vir.Fun
	if va.Autospec != nil {
		autospec = &vir.Fun{Path: path.WithLastSegment(*va.Autospec)}
	}
	if va.Nonlinear && va.SpinoffProver {
		return nil, diag.Errorf(diag.MalformedAttributes, span, "#[verifier(spinoff_prover)] is implied for assert by nonlinear_arith")
	}

	// decreases_when is checked at call sites together with the recommends.
	var recommend []*vir.Expr
	if mode == vir.ModeSpec {
		recommend = append(recommend, header.Recommend...)
		if header.DecreaseWhen != nil {
			recommend = append(recommend, header.DecreaseWhen)
		}
	}

	// Closure calls are routed through exec_nonstatic_call.
	if path.Equal(vir.ExecNonstaticCallPath(ctx.VstdCrate)) {
		visibility = vir.Public()
	}

	if va.ExternalBody || va.ExternalFnSpecification || header.NoMethodBody {
		body = nil
	}

	f := &vir.Function{
		Span:         span,
		Name:         name,
		Proxy:        proxy,
		Kind:         item.Kind,
		Visibility:   visibility,
		Mode:         mode,
		Fuel:         fuel,
		TypBounds:    typBounds,
		Params:       vparams,
		Ret:          retParam,
		Require:      header.Require,
		Ensure:       header.Ensure,
		Recommend:    recommend,
		Decrease:     header.Decrease,
		DecreaseWhen: header.DecreaseWhen,
		DecreaseBy:   header.DecreaseBy,
		MaskSpec:     header.InvariantMask,
		Publish:      attrs.GetPublish(va),
		Attrs: vir.FunctionAttrs{
			UsesGhostBlocks: va.VerusMacro,
			Inline:          va.Inline,
			Hidden:          header.Hidden,
			CustomReqErr:    va.CustomReqErr,
			NoAutoTrigger:   va.NoAutoTrigger,
			BroadcastForall: va.BroadcastForall,
			BitVector:       va.BitVector,
			Autospec:        autospec,
			Atomic:          va.Atomic,
			IntegerRing:     va.IntegerRing,
			IsDecreaseBy:    va.DecreasesBy,
			CheckRecommends: va.CheckRecommends,
			Nonlinear:       va.Nonlinear,
			SpinoffProver:   va.SpinoffProver,
			Memoize:         va.Memoize,
		},
		Body:              body,
		ExtraDependencies: header.ExtraDependencies,
	}
	krate.Functions = append(krate.Functions, f)
	log.WithFields(log.Fields{"mode": mode, "kind": item.Kind}).Debugf("assembled %s", name)
	if isVerusSpec {
		return nil, nil
	}
	return name, nil
}

// checkBodyShape enforces which combinations of declaration kind, body and
// no_method_body marker are legal.
func checkBodyShape(span diag.Span, kind vir.FunctionKind, noMethodBody, isVerusSpec, hasBody bool) error {
	if kind.Tag == vir.KindTraitMethodDecl {
		switch {
		case !noMethodBody && !isVerusSpec && !hasBody:
			return nil
		case !noMethodBody && !isVerusSpec:
			return diag.Errorf(diag.UnsupportedConstruct, span, "trait default methods are not yet supported")
		case noMethodBody && isVerusSpec:
			return nil
		case isVerusSpec:
			return diag.Errorf(diag.ShapeMismatch, span, "trait method declaration body must end with call to no_method_body()")
		}
		return diag.Errorf(diag.ShapeMismatch, span, "no_method_body can only appear in trait method declarations")
	}
	switch {
	case isVerusSpec:
		return diag.Errorf(diag.ShapeMismatch, span, "%s can only appear in trait method declarations", vir.VerusSpec)
	case noMethodBody:
		return diag.Errorf(diag.ShapeMismatch, span, "no_method_body can only appear in trait method declarations")
	case !hasBody:
		return diag.Errorf(diag.ShapeMismatch, span, "function must have a body")
	}
	return nil
}

func checkNamedReturn(span diag.Span, id *vir.EnsureID, ret *retTypMode) error {
	switch {
	case id == nil && ret == nil:
		return nil
	case id == nil:
		return diag.Err(span, "the return value must be named in a function with an ensures clause")
	case ret == nil:
		return diag.Err(span, "unexpected named return value for function with default return")
	case !vir.TypesEqual(id.Typ, ret.typ):
		return diag.Errorf(diag.ContractMismatch, span, "return type is %v, but ensures expects type %v", ret.typ, id.Typ)
	}
	return nil
}

// unwrapParams renames parameters claimed by an unwrap_parameter clause to
// their inner names and rejects wrapped mutable parameters left unclaimed
// and any repeated name.
func unwrapParams(span diag.Span, mode vir.Mode, params []classifiedParam, unwraps []vir.UnwrapParameter) ([]*vir.Param, error) {
	var allNames []string
	byOuter := make(map[string]vir.UnwrapParameter, len(unwraps))
	for _, u := range unwraps {
		allNames = append(allNames, u.InnerName)
		byOuter[u.OuterName] = u
	}
	out := make([]*vir.Param, 0, len(params))
	for _, cp := range params {
		p := cp.param
		allNames = append(allNames, p.Name)
		if u, ok := byOuter[p.Name]; ok {
			if mode != vir.ModeExec {
				return nil, diag.Err(span, "only exec functions can use Ghost(x) or Tracked(x) parameters")
			}
			unwrapped := *p
			unwrapped.Name = u.InnerName
			unwrapped.UnwrappedInfo = &vir.UnwrappedInfo{Mode: u.Mode, OuterName: u.OuterName}
			p = &unwrapped
		} else if cp.wrapped != nil {
			return nil, diag.Errorf(diag.ContractMismatch, span, "parameter %s must be unwrapped", p.Name)
		}
		out = append(out, p)
	}
	seen := make(map[string]bool, len(allNames))
	for _, n := range allNames {
		if seen[n] {
			return nil, diag.Errorf(diag.DuplicateName, span, "duplicate parameter name %s", n)
		}
		seen[n] = true
	}
	return out, nil
}

// checkNewStrlit requires the shape fn(&str) -> StrSlice.
func (ctx *Context) checkNewStrlit(span diag.Span, decl host.FnDecl, sig host.FnSig) error {
	if len(sig.Inputs) != 1 {
		return diag.Errorf(diag.ShapeMismatch, span, "Expected one argument to new_strlit")
	}
	ref, ok := sig.Inputs[0].(host.TyRef)
	if !ok {
		return diag.Errorf(diag.ShapeMismatch, span, "expected a str")
	}
	if prim, ok := ref.Inner.(host.TyPrim); !ok || prim.Name != "str" {
		return diag.Errorf(diag.ShapeMismatch, span, "expected a str")
	}
	if !decl.HasReturn {
		return diag.Errorf(diag.ShapeMismatch, span, "expected a return type of StrSlice")
	}
	adt, ok := sig.Output.(host.TyAdt)
	if !ok || !ctx.Host.IsDiagnosticItem(strSliceItem, adt.Def) {
		return diag.Errorf(diag.ShapeMismatch, span, "expected a StrSlice")
	}
	return nil
}
