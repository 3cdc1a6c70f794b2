package attrs

import (
	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

func explicitMode(attrs []host.Attribute) *vir.Mode {
	for _, a := range attrs {
		k, _, ok := key(a)
		if !ok {
			continue
		}
		if mode, ok := vir.ParseMode(k); ok {
			return &mode
		}
	}
	return nil
}

// GetMode is the annotated mode, or def when there is none.
func GetMode(def vir.Mode, attrs []host.Attribute) vir.Mode {
	if mode := explicitMode(attrs); mode != nil {
		return *mode
	}
	return def
}

// GetRetMode is the mode of the return value. Return types carry no
// attribute syntax of their own, so verifier::returns(mode) on the function
// is the override; the default is the function's mode.
func GetRetMode(fnMode vir.Mode, attrs []host.Attribute) vir.Mode {
	for _, a := range attrs {
		k, args, ok := key(a)
		if !ok || k != "returns" || len(args) != 1 {
			continue
		}
		if mode, ok := vir.ParseMode(args[0]); ok {
			return mode
		}
	}
	return fnMode
}

// GetVarMode is the mode of a parameter; only mode annotations are legal there.
func GetVarMode(fnMode vir.Mode, attrs []host.Attribute) (vir.Mode, error) {
	var mode *vir.Mode
	for _, a := range attrs {
		k, args, ok := key(a)
		if !ok {
			continue
		}
		m, ok := vir.ParseMode(k)
		if !ok || args != nil {
			return fnMode, diag.Errorf(diag.MalformedAttributes, a.Span, "unexpected attribute on parameter: %s", a)
		}
		if err := setMode(a, &mode, m); err != nil {
			return fnMode, err
		}
	}
	if mode != nil {
		return *mode, nil
	}
	return fnMode, nil
}
