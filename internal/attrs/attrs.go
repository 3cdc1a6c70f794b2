// Package attrs interprets the verifier annotations attached to a declaration.
package attrs

import (
	"strconv"
	"strings"

	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

// VerifierAttrs is the structured form of a declaration's annotation list.
type VerifierAttrs struct {
	External                bool
	ExternalBody            bool
	ExternalFnSpecification bool
	Opaque                  bool
	Publish                 bool
	Nonlinear               bool
	IntegerRing             bool
	BitVector               bool
	Atomic                  bool
	BroadcastForall         bool
	NoAutoTrigger           bool
	DecreasesBy             bool
	CheckRecommends         bool
	SpinoffProver           bool
	Memoize                 bool
	VerusMacro              bool
	Inline                  bool

	Fuel         *uint32
	Autospec     *string
	CustomReqErr *string
	Mode         *vir.Mode
	RetMode      *vir.Mode
}

type flagSetter func(*VerifierAttrs)

var flags = map[string]flagSetter{
	"external":                  func(va *VerifierAttrs) { va.External = true },
	"external_body":             func(va *VerifierAttrs) { va.ExternalBody = true },
	"external_fn_specification": func(va *VerifierAttrs) { va.ExternalFnSpecification = true },
	"opaque":                    func(va *VerifierAttrs) { va.Opaque = true },
	"publish":                   func(va *VerifierAttrs) { va.Publish = true },
	"nonlinear":                 func(va *VerifierAttrs) { va.Nonlinear = true },
	"integer_ring":              func(va *VerifierAttrs) { va.IntegerRing = true },
	"bit_vector":                func(va *VerifierAttrs) { va.BitVector = true },
	"atomic":                    func(va *VerifierAttrs) { va.Atomic = true },
	"broadcast_forall":          func(va *VerifierAttrs) { va.BroadcastForall = true },
	"no_auto_trigger":           func(va *VerifierAttrs) { va.NoAutoTrigger = true },
	"decreases_by":              func(va *VerifierAttrs) { va.DecreasesBy = true },
	"recommends_by":             func(va *VerifierAttrs) { va.DecreasesBy = true },
	"check_recommends":          func(va *VerifierAttrs) { va.CheckRecommends = true },
	"spinoff_prover":            func(va *VerifierAttrs) { va.SpinoffProver = true },
	"memoize":                   func(va *VerifierAttrs) { va.Memoize = true },
	"verus_macro":               func(va *VerifierAttrs) { va.VerusMacro = true },
	"inline":                    func(va *VerifierAttrs) { va.Inline = true },
}

// key splits a raw attribute into its verifier key and arguments. Both
// `verifier::key(args)` and `verifier(key)` spellings are accepted; anything
// outside the verifier namespace reports ok == false.
func key(a host.Attribute) (string, []string, bool) {
	switch {
	case strings.HasPrefix(a.Name, "verifier::"):
		return strings.TrimPrefix(a.Name, "verifier::"), a.Args, true
	case a.Name == "verifier" && len(a.Args) == 1:
		return a.Args[0], nil, true
	}
	return "", nil, false
}

func malformed(a host.Attribute, format string, args ...interface{}) error {
	return diag.Errorf(diag.MalformedAttributes, a.Span, format, args...)
}

// GetVerifierAttrs interprets attrs. Unknown verifier keys, arguments of
// the wrong shape and conflicting annotations are rejected.
func GetVerifierAttrs(attrs []host.Attribute) (*VerifierAttrs, error) {
	va := &VerifierAttrs{}
	for _, a := range attrs {
		k, args, ok := key(a)
		if !ok {
			continue
		}
		if set, ok := flags[k]; ok {
			if args != nil {
				return nil, malformed(a, "attribute verifier::%s takes no arguments", k)
			}
			set(va)
			continue
		}
		switch k {
		case "spec", "proof", "exec":
			mode, _ := vir.ParseMode(k)
			if err := setMode(a, &va.Mode, mode); err != nil {
				return nil, err
			}
			if mode == vir.ModeSpec && len(args) == 1 && args[0] == "checked" {
				va.CheckRecommends = true
			} else if args != nil {
				return nil, malformed(a, "unexpected arguments to verifier::%s", k)
			}
		case "returns":
			if len(args) != 1 {
				return nil, malformed(a, "verifier::returns expects one mode")
			}
			mode, ok := vir.ParseMode(args[0])
			if !ok {
				return nil, malformed(a, "verifier::returns expects spec, proof or exec, got %q", args[0])
			}
			if err := setMode(a, &va.RetMode, mode); err != nil {
				return nil, err
			}
		case "fuel":
			if len(args) != 1 {
				return nil, malformed(a, "verifier::fuel expects one integer")
			}
			n, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return nil, malformed(a, "verifier::fuel expects an integer, got %q", args[0])
			}
			fuel := uint32(n)
			if va.Fuel != nil && *va.Fuel != fuel {
				return nil, malformed(a, "conflicting fuel annotations")
			}
			va.Fuel = &fuel
		case "when_used_as_spec":
			if len(args) != 1 || args[0] == "" {
				return nil, malformed(a, "verifier::when_used_as_spec expects a method name")
			}
			name := args[0]
			if va.Autospec != nil && *va.Autospec != name {
				return nil, malformed(a, "conflicting when_used_as_spec annotations")
			}
			va.Autospec = &name
		case "custom_req_err":
			if len(args) != 1 {
				return nil, malformed(a, "verifier::custom_req_err expects a message")
			}
			msg := strings.Trim(args[0], `"`)
			va.CustomReqErr = &msg
		default:
			return nil, malformed(a, "unrecognized verifier attribute %s", k)
		}
	}
	if va.Opaque && va.Publish {
		return nil, diag.Errorf(diag.MalformedAttributes, spanOf(attrs), "a function cannot be both opaque and publish")
	}
	if va.Opaque && va.Fuel != nil && *va.Fuel != 0 {
		return nil, diag.Errorf(diag.MalformedAttributes, spanOf(attrs), "an opaque function cannot have nonzero fuel")
	}
	return va, nil
}

func setMode(a host.Attribute, slot **vir.Mode, mode vir.Mode) error {
	if *slot != nil && **slot != mode {
		return malformed(a, "conflicting mode annotations %s and %s", **slot, mode)
	}
	*slot = &mode
	return nil
}

func spanOf(attrs []host.Attribute) diag.Span {
	if len(attrs) == 0 {
		return diag.Span{}
	}
	return attrs[0].Span
}

// GetFuel is the explicit fuel, else 0 for opaque functions, else 1.
func GetFuel(va *VerifierAttrs) uint32 {
	if va.Fuel != nil {
		return *va.Fuel
	}
	if va.Opaque {
		return 0
	}
	return 1
}

func GetPublish(va *VerifierAttrs) *vir.Publish {
	var p vir.Publish
	switch {
	case va.Publish:
		p = vir.PublishVisible
	case va.Opaque:
		p = vir.PublishOpaque
	default:
		return nil
	}
	return &p
}
