package vir

import (
	"fmt"
)

// Mode is the effect level of a function, parameter or return value.
// Spec code is erased before execution, proof code exists only for the
// solver, exec code is the only code that runs.
type Mode int

const (
	ModeSpec Mode = iota
	ModeProof
	ModeExec
)

func (m Mode) String() string {
	switch m {
	case ModeSpec:
		return "spec"
	case ModeProof:
		return "proof"
	case ModeExec:
		return "exec"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, bool) {
	switch s {
	case "spec":
		return ModeSpec, true
	case "proof":
		return ModeProof, true
	case "exec":
		return ModeExec, true
	}
	return ModeExec, false
}

func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
