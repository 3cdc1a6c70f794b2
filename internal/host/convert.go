package host

import (
	"vlower/internal/diag"
	"vlower/internal/vir"
)

var intRanges = map[string]bool{
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"int": true, "nat": true, "char": true,
}

// ToVir lowers a host type into a verifier type. Mutable references are
// only legal where the caller has already peeled them off.
func ToVir(r Resolver, span diag.Span, ty Ty) (vir.Typ, error) {
	switch ty := ty.(type) {
	case TyPrim:
		switch {
		case ty.Name == "bool":
			return vir.Bool{}, nil
		case ty.Name == "str":
			return vir.StrSlice{}, nil
		case intRanges[ty.Name]:
			return vir.Int{Range: ty.Name}, nil
		}
		return nil, diag.Unsupported(span, "primitive type "+ty.Name)
	case TyParam:
		return vir.TypParam{Name: ty.Name}, nil
	case TyTuple:
		elems, err := toVirAll(r, span, ty.Elems)
		if err != nil {
			return nil, err
		}
		return vir.Tuple{Elems: elems}, nil
	case TyRef:
		if ty.Mut {
			return nil, diag.Unsupported(span, "&mut types, except in special cases")
		}
		inner, err := ToVir(r, span, ty.Inner)
		if err != nil {
			return nil, err
		}
		return vir.Decorate{Dec: vir.DecorateRef, Inner: inner}, nil
	case TyAdt:
		args, err := toVirAll(r, span, ty.Args)
		if err != nil {
			return nil, err
		}
		path := r.DefPath(ty.Def)
		if len(args) == 1 {
			switch path.String() {
			case "builtin::Ghost":
				return vir.Decorate{Dec: vir.DecorateGhost, Inner: args[0]}, nil
			case "builtin::Tracked":
				return vir.Decorate{Dec: vir.DecorateTracked, Inner: args[0]}, nil
			case "alloc::boxed::Box":
				return vir.Decorate{Dec: vir.DecorateBox, Inner: args[0]}, nil
			}
		}
		return vir.Datatype{Path: path, Args: args}, nil
	case TyRawPtr:
		return nil, diag.Unsupported(span, "raw pointers")
	case TyFnPtr:
		return nil, diag.Unsupported(span, "function pointer types")
	}
	return nil, diag.Unsupported(span, "type "+ty.String())
}

func toVirAll(r Resolver, span diag.Span, tys []Ty) ([]vir.Typ, error) {
	out := make([]vir.Typ, 0, len(tys))
	for _, t := range tys {
		vt, err := ToVir(r, span, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}
