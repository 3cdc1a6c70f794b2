package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/loader"
	"vlower/internal/strategy"
	"vlower/internal/util"
)

const program = `
file: lib.rs
defs:
  - id: core::mem::swap
    vis: pub
    generics: [T]
    sig: {bound_vars: ["'a", "'b"], inputs: ["&'a mut T", "&'b mut T"]}
  - id: app::ex_swap
    vis: pub
    generics: [V]
    sig: {bound_vars: ["'x", "'y"], inputs: ["&'x mut V", "&'y mut V"]}
  - id: app::double
    vis: pub
    sig: {inputs: [u8], output: u8}
  - id: app::bad_spec
    vis: pub
    sig: {output: bool}
  - id: app::ffi_helper
    vis: pub
    sig: {}
  - id: app::LIMIT
  - id: app::c_abs
    vis: pub
    sig: {inputs: [i32], output: i32}
items:
  - id: app::ex_swap
    line: 3
    attrs: [verifier::external_fn_specification]
    generics: [V]
    params: [{name: a}, {name: b}]
    body:
      stmts: [{call: builtin::ensures, args: ["*a == *old(b)"]}]
      tail: {call: core::mem::swap, res: core::mem::swap, args: [{path: a}, {path: b}]}
  - id: app::double
    line: 9
    params: [{name: x}]
    body:
      stmts:
        - {call: builtin::requires, args: ["x < 128"]}
        - call: builtin::ensures
          args: [{closure: [{name: r, ty: u8}], body: "r == 2 * x"}]
      tail: "x * 2"
  - id: app::bad_spec
    line: 15
    attrs: [verifier::spec]
    body:
      stmts: [{call: builtin::ensures, args: ["true"]}]
      tail: "true"
  - id: app::ffi_helper
    line: 20
    attrs: [verifier::external]
    body: {tail: "()"}
  - kind: const
    id: app::LIMIT
    line: 24
    ty: u8
    body: {tail: {lit: "10"}}
  - kind: foreign
    id: app::c_abs
    line: 27
    params: [{name: v}]
`

func newSource(t *testing.T) *loader.Loader {
	l := loader.NewLoader()
	require.NoError(t, l.Load("lib.yaml", []byte(program)))
	return l
}

func Test_RunLowersEveryItem(t *testing.T) {
	result, err := NewDriver(newSource(t), nil).Run()
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)

	var names []string
	for _, f := range result.Krate.Functions {
		names = append(names, f.Name.String())
	}
	assert.Equal(t, []string{"core::mem::swap", "app::double", "app::LIMIT", "app::c_abs"}, names)
	assert.Equal(t, "app::ex_swap", result.Krate.Functions[0].Proxy.String())
	assert.Equal(t, "r", result.Krate.Functions[1].Ret.Name)
	assert.True(t, result.Krate.Functions[2].IsConst)

	require.Len(t, result.Erasure.ExternalFunctions, 1)
	assert.Equal(t, "app::ffi_helper", result.Erasure.ExternalFunctions[0].String())

	require.True(t, result.Failed())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, host.DefID("app::bad_spec"), result.Diagnostics[0].Item)
	de, ok := diag.AsError(result.Diagnostics[0].Err)
	require.True(t, ok)
	assert.Equal(t, diag.ContractMismatch, de.Kind)

	require.Len(t, result.Fingerprints, 4)
	fp, err := util.Fingerprint(result.Krate.Functions[1])
	require.NoError(t, err)
	assert.Equal(t, fp, result.Fingerprints["app::double"])
}

func Test_RunIsDeterministic(t *testing.T) {
	first, err := NewDriver(newSource(t), nil).Run()
	require.NoError(t, err)
	second, err := NewDriver(newSource(t), nil).Run()
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprints, second.Fingerprints)
}

func Test_RunWithStackOrder(t *testing.T) {
	result, err := NewDriver(newSource(t), strategy.NewDFS()).Run()
	require.NoError(t, err)
	require.Len(t, result.Krate.Functions, 4)
	assert.Equal(t, "app::c_abs", result.Krate.Functions[0].Name.String())
	assert.Equal(t, "core::mem::swap", result.Krate.Functions[3].Name.String())
}

func Test_RunWithoutItems(t *testing.T) {
	l := loader.NewLoader()
	require.NoError(t, l.Load("empty.yaml", []byte("defs: [{id: app::f}]\n")))
	_, err := NewDriver(l, nil).Run()
	assert.Error(t, err)
}

const emptyEnsures = `
file: lib.rs
defs:
  - id: app::f
    vis: pub
    sig: {}
  - id: app::g
    vis: pub
    sig: {inputs: [u8], output: u8}
items:
  - id: app::f
    line: 1
    body:
      stmts:
        - call: builtin::ensures
          args: [{closure: [{name: r, ty: u8}], body: {block: {}}}]
      tail: "()"
  - id: app::g
    line: 5
    params: [{name: x}]
    body: {tail: "x"}
`

func Test_RunSurvivesEmptyNamedEnsures(t *testing.T) {
	l := loader.NewLoader()
	require.NoError(t, l.Load("lib.yaml", []byte(emptyEnsures)))

	var (
		result *Result
		err    error
	)
	assert.NotPanics(t, func() {
		result, err = NewDriver(l, nil).Run()
	})
	require.NoError(t, err)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, host.DefID("app::f"), result.Diagnostics[0].Item)
	require.Len(t, result.Krate.Functions, 1)
	assert.Equal(t, "app::g", result.Krate.Functions[0].Name.String())
}
