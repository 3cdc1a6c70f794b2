package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

func parse(texts ...string) []host.Attribute {
	var out []host.Attribute
	for i, text := range texts {
		out = append(out, host.ParseAttribute(diag.Span{File: "lib.rs", Line: i + 1}, text))
	}
	return out
}

func Test_GetVerifierAttrsFlags(t *testing.T) {
	va, err := GetVerifierAttrs(parse(
		"verifier::external_body",
		"verifier(nonlinear)",
		"verifier::fuel(3)",
		"verifier::when_used_as_spec(len_spec)",
		`verifier::custom_req_err("index out of bounds, sorry")`,
		"inline",
		"doc(hidden)",
	))
	require.NoError(t, err)
	assert.True(t, va.ExternalBody)
	assert.True(t, va.Nonlinear)
	assert.False(t, va.Inline)
	assert.Equal(t, uint32(3), GetFuel(va))
	assert.Equal(t, "len_spec", *va.Autospec)
	assert.Equal(t, "index out of bounds, sorry", *va.CustomReqErr)
	assert.Nil(t, GetPublish(va))
}

func Test_CustomReqErrKeepsCommas(t *testing.T) {
	va, err := GetVerifierAttrs(parse(`verifier::custom_req_err("a,b")`))
	require.NoError(t, err)
	assert.Equal(t, "a,b", *va.CustomReqErr)

	va, err = GetVerifierAttrs(parse(`verifier::custom_req_err("x ,  y")`))
	require.NoError(t, err)
	assert.Equal(t, "x ,  y", *va.CustomReqErr)
}

func Test_GetVerifierAttrsRejects(t *testing.T) {
	cases := map[string][]string{
		"unknown key":      {"verifier::no_such_thing"},
		"flag with args":   {"verifier::external(yes)"},
		"fuel not integer": {"verifier::fuel(lots)"},
		"fuel conflict":    {"verifier::fuel(1)", "verifier::fuel(2)"},
		"mode conflict":    {"verifier::spec", "verifier::proof"},
		"bad returns":      {"verifier::returns(ghost)"},
		"opaque publish":   {"verifier::opaque", "verifier::publish"},
		"opaque fuel":      {"verifier::opaque", "verifier::fuel(2)"},
		"two messages":     {`verifier::custom_req_err("a", "b")`},
	}
	for name, texts := range cases {
		_, err := GetVerifierAttrs(parse(texts...))
		de, ok := diag.AsError(err)
		if assert.True(t, ok, name) {
			assert.Equal(t, diag.MalformedAttributes, de.Kind, name)
		}
	}
}

func Test_FuelAndPublish(t *testing.T) {
	va, err := GetVerifierAttrs(parse("verifier::opaque"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), GetFuel(va))
	assert.Equal(t, vir.PublishOpaque, *GetPublish(va))

	va, err = GetVerifierAttrs(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), GetFuel(va))

	va, err = GetVerifierAttrs(parse("verifier::publish"))
	require.NoError(t, err)
	assert.Equal(t, vir.PublishVisible, *GetPublish(va))
}

func Test_ModeDefaults(t *testing.T) {
	assert.Equal(t, vir.ModeExec, GetMode(vir.ModeExec, nil))
	assert.Equal(t, vir.ModeSpec, GetMode(vir.ModeExec, parse("verifier::spec")))
	assert.Equal(t, vir.ModeProof, GetMode(vir.ModeExec, parse("verifier(proof)")))

	assert.Equal(t, vir.ModeProof, GetRetMode(vir.ModeProof, nil))
	assert.Equal(t, vir.ModeSpec, GetRetMode(vir.ModeExec, parse("verifier::returns(spec)")))

	m, err := GetVarMode(vir.ModeExec, nil)
	require.NoError(t, err)
	assert.Equal(t, vir.ModeExec, m)
	m, err = GetVarMode(vir.ModeExec, parse("verifier::spec"))
	require.NoError(t, err)
	assert.Equal(t, vir.ModeSpec, m)
	_, err = GetVarMode(vir.ModeExec, parse("verifier::external"))
	assert.Error(t, err)
}

func Test_SpecChecked(t *testing.T) {
	va, err := GetVerifierAttrs(parse("verifier::spec(checked)"))
	require.NoError(t, err)
	assert.Equal(t, vir.ModeSpec, *va.Mode)
	assert.True(t, va.CheckRecommends)
}
