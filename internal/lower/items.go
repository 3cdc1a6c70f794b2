package lower

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vlower/internal/attrs"
	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

// CheckItemConst assembles a constant as a spec function with no
// parameters. The declared mode goes on the return value.
func (ctx *Context) CheckItemConst(krate *vir.Krate, item *host.ConstItem) error {
	name := &vir.Fun{Path: ctx.Host.DefPath(item.ID)}
	mode := attrs.GetMode(vir.ModeExec, item.Attrs)
	va, err := attrs.GetVerifierAttrs(item.Attrs)
	if err != nil {
		return err
	}
	if va.ExternalFnSpecification {
		return diag.Errorf(diag.UnsupportedConstruct, item.Span, "`external_fn_specification` attribute not yet supported for const")
	}
	fuel := attrs.GetFuel(va)
	if va.External {
		log.Debugf("%s is external", name)
		ctx.Erasure.ExternalFunctions = append(ctx.Erasure.ExternalFunctions, name)
		return nil
	}
	if item.Body == nil {
		return diag.Err(item.Span, "const must have a body")
	}
	header, rest, err := ctx.Headers.ReadHeader(item.Body)
	if err != nil {
		return err
	}
	if !headerIsEmpty(header) {
		return diag.Err(item.Span, "const declarations cannot have specification clauses")
	}
	body, err := bodyToVir(item.Body.Span, rest, va.ExternalBody)
	if err != nil {
		return err
	}
	typ, err := host.ToVir(ctx.Host, item.Span, item.Ty)
	if err != nil {
		return err
	}
	if va.ExternalBody {
		body = nil
	}
	krate.Functions = append(krate.Functions, &vir.Function{
		Span:       item.Span,
		Name:       name,
		Kind:       vir.StaticKind(),
		Visibility: item.Visibility,
		Mode:       vir.ModeSpec,
		Fuel:       fuel,
		Ret:        &vir.Param{Span: item.Span, Name: vir.ReturnValue, Typ: typ, Mode: mode},
		MaskSpec:   vir.MaskSpec{Kind: vir.MaskNoSpec},
		IsConst:    true,
		Publish:    attrs.GetPublish(va),
		Body:       body,
	})
	log.Debugf("assembled const %s", name)
	return nil
}

func headerIsEmpty(h *vir.Header) bool {
	return len(h.Require) == 0 && len(h.Ensure) == 0 && h.EnsureID == nil &&
		len(h.Recommend) == 0 && len(h.Decrease) == 0 && h.DecreaseWhen == nil &&
		h.DecreaseBy == nil && h.InvariantMask.Kind == vir.MaskNoSpec &&
		len(h.UnwrapParameters) == 0 && len(h.Hidden) == 0 &&
		len(h.ExtraDependencies) == 0 && !h.NoMethodBody
}

// CheckForeignItemFn assembles an extern declaration. Its parameters carry
// no attributes of their own and take the function's mode.
func (ctx *Context) CheckForeignItemFn(krate *vir.Krate, item *host.ForeignFnItem) error {
	mode := attrs.GetMode(vir.ModeExec, item.Attrs)
	sig, err := ctx.Host.FnSig(item.ID)
	if err != nil {
		return errors.Wrapf(err, "CheckForeignItemFn %s", item.ID)
	}
	ret, err := ctx.checkFnDecl(item.Span, item.Decl, item.Attrs, mode, sig.Output)
	if err != nil {
		return err
	}
	typBounds, err := CheckGenericsBounds(ctx.Host, item.Generics, item.ID)
	if err != nil {
		return err
	}
	va, err := attrs.GetVerifierAttrs(item.Attrs)
	if err != nil {
		return err
	}
	fuel := attrs.GetFuel(va)
	if va.ExternalFnSpecification {
		return diag.Errorf(diag.UnsupportedConstruct, item.Span, "`external_fn_specification` attribute not supported on foreign items")
	}

	if len(item.Idents) != len(sig.Inputs) {
		panic(fmt.Sprintf("internal error: %s has %d parameters but %d inputs", item.ID, len(item.Idents), len(sig.Inputs)))
	}
	params := make([]*vir.Param, 0, len(item.Idents))
	for i, id := range item.Idents {
		input := sig.Inputs[i]
		inner, _, isMut := ClassifyMut(ctx.Host, input)
		if isMut {
			input = inner
		}
		typ, err := host.ToVir(ctx.Host, id.Span, input)
		if err != nil {
			return err
		}
		params = append(params, &vir.Param{Span: id.Span, Name: id.Name, Typ: typ, Mode: mode, IsMut: isMut})
	}

	retParam := unitRet(item.Span, mode)
	if ret != nil {
		retParam = &vir.Param{Span: item.Span, Name: vir.ReturnValue, Typ: ret.typ, Mode: ret.mode}
	}
	name := &vir.Fun{Path: ctx.Host.DefPath(item.ID)}
	krate.Functions = append(krate.Functions, &vir.Function{
		Span:       item.Span,
		Name:       name,
		Kind:       vir.StaticKind(),
		Visibility: item.Visibility,
		Mode:       mode,
		Fuel:       fuel,
		TypBounds:  typBounds,
		Params:     params,
		Ret:        retParam,
		MaskSpec:   vir.MaskSpec{Kind: vir.MaskNoSpec},
	})
	log.Debugf("assembled foreign fn %s", name)
	return nil
}
