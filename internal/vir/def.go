package vir

const (
	// ReturnValue names the return binding when the ensures clause does not.
	ReturnValue = "%return"
	// VerusSpec prefixes the specification method paired with a trait method declaration.
	VerusSpec = "VERUS_SPEC__"
	// BuiltinKrate holds the verifier's own builtins; it is never a valid spec target.
	BuiltinKrate = "builtin"
)

func TraitSelfTypeParam() string {
	return "Self%"
}

// ExecNonstaticCallPath is the vstd helper every call through a closure is
// routed to. It is private in the source but must stay reachable.
func ExecNonstaticCallPath(vstdCrate string) Path {
	return NewPath(vstdCrate, "pervasive", "exec_nonstatic_call")
}
