package lower

import (
	"vlower/internal/host"
	"vlower/internal/vir"
)

// ClassifyMut recognizes the three spellings of a mutable parameter:
//
//	&mut T          => T, nil
//	Ghost<&mut T>   => T, spec
//	Tracked<&mut T> => T, proof
//
// Wrappers of wrappers are not recognized.
func ClassifyMut(r host.Resolver, ty host.Ty) (host.Ty, *vir.Mode, bool) {
	switch ty := ty.(type) {
	case host.TyRef:
		if ty.Mut {
			return ty.Inner, nil, true
		}
	case host.TyAdt:
		if len(ty.Args) != 1 {
			return nil, nil, false
		}
		var mode vir.Mode
		switch r.DefPath(ty.Def).String() {
		case "builtin::Ghost":
			mode = vir.ModeSpec
		case "builtin::Tracked":
			mode = vir.ModeProof
		default:
			return nil, nil, false
		}
		if inner, wrapped, ok := ClassifyMut(r, ty.Args[0]); ok && wrapped == nil {
			return inner, &mode, true
		}
	}
	return nil, nil, false
}
