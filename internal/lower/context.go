// Package lower assembles verifier function records from host declarations.
//
// There are three entry points, one per declaration kind: CheckItemFn for
// functions and methods, CheckItemConst for associated and free constants and
// CheckForeignItemFn for extern declarations. Each either appends exactly one
// record to the krate, records the declaration in the erasure ledger, or
// returns a diagnostic and leaves both untouched.
package lower

import (
	"vlower/internal/attrs"
	"vlower/internal/diag"
	"vlower/internal/extspec"
	"vlower/internal/headers"
	"vlower/internal/host"
	"vlower/internal/vir"
)

const (
	newStrlitItem = "pervasive::string::new_strlit"
	strSliceItem  = "pervasive::string::StrSlice"
)

type Context struct {
	Host    host.Host
	Headers headers.Reader
	Binder  *extspec.Binder
	// Erasure is the ledger of declarations deliberately left out of the krate.
	Erasure   *vir.ErasureInfo
	VstdCrate string
}

func NewContext(h host.Host, erasure *vir.ErasureInfo, vstdCrate string) *Context {
	return &Context{
		Host:      h,
		Headers:   headers.NewReader(h),
		Binder:    extspec.NewBinder(h),
		Erasure:   erasure,
		VstdCrate: vstdCrate,
	}
}

// checkFnDecl validates the declaration shape and lowers the declared
// return type. It returns nil when the function has the default return.
func (ctx *Context) checkFnDecl(span diag.Span, decl host.FnDecl, attrList []host.Attribute, mode vir.Mode, output host.Ty) (*retTypMode, error) {
	if decl.CVariadic {
		return nil, diag.Unsupported(span, "c_variadic functions")
	}
	if decl.ImplicitSelf == host.SelfMut {
		return nil, diag.Unsupported(span, "mut self")
	}
	if !decl.HasReturn {
		return nil, nil
	}
	typ, err := host.ToVir(ctx.Host, span, output)
	if err != nil {
		return nil, err
	}
	return &retTypMode{typ: typ, mode: attrs.GetRetMode(mode, attrList)}, nil
}

type retTypMode struct {
	typ  vir.Typ
	mode vir.Mode
}

func unitRet(span diag.Span, mode vir.Mode) *vir.Param {
	return &vir.Param{Span: span, Name: vir.ReturnValue, Typ: vir.Unit(), Mode: mode}
}
