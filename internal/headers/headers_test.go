package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

func path(name string) *host.Expr {
	return &host.Expr{Kind: host.ExprPath, Name: name}
}

func call(callee string, args ...*host.Expr) *host.Expr {
	return &host.Expr{Kind: host.ExprCall, Callee: path(callee), Args: args}
}

func opaque(text string) *host.Expr {
	return &host.Expr{Kind: host.ExprOpaque, Name: text}
}

func body(stmts []*host.Expr, tail *host.Expr) *host.Body {
	return &host.Body{Value: &host.Expr{Kind: host.ExprBlock, Block: &host.Block{Stmts: stmts, Tail: tail}}}
}

func Test_ReadHeaderSplitsBody(t *testing.T) {
	r := NewReader(host.NewTable())
	h, rest, err := r.ReadHeader(body([]*host.Expr{
		call("builtin::requires", opaque("x > 0"), opaque("y > 0")),
		call("builtin::ensures", &host.Expr{
			Kind:   host.ExprClosure,
			Params: []host.ClosureParam{{Name: "r", Ty: host.TyPrim{Name: "u64"}}},
			Body:   opaque("r == x + y"),
		}),
		opaque("let z = x"),
	}, opaque("z + y")))
	require.NoError(t, err)
	assert.Len(t, h.Require, 2)
	assert.Equal(t, "r == x + y", h.Ensure[0].Text)
	assert.Equal(t, "r", h.EnsureID.Name)
	assert.Equal(t, vir.Int{Range: "u64"}, h.EnsureID.Typ)
	assert.Equal(t, vir.MaskNoSpec, h.InvariantMask.Kind)
	require.Len(t, rest.Stmts, 1)
	assert.Equal(t, "z + y", rest.Tail.String())
}

func Test_ReadHeaderNoMethodBody(t *testing.T) {
	r := NewReader(host.NewTable())
	h, rest, err := r.ReadHeader(body([]*host.Expr{
		call("builtin::requires", opaque("b")),
	}, call("builtin::no_method_body")))
	require.NoError(t, err)
	assert.True(t, h.NoMethodBody)
	assert.Nil(t, rest.Tail)
}

func Test_ReadHeaderBlockClauses(t *testing.T) {
	r := NewReader(host.NewTable())
	h, err := r.ReadHeaderBlock([]*host.Expr{
		call("builtin::decreases", opaque("n")),
		call("builtin::decreases_when", opaque("n >= 0")),
		call("builtin::decreases_by", path("app::lemma")),
		call("builtin::opens_invariants_any"),
		call("builtin::unwrap_parameter", path("t"), path("t_inner"), opaque("proof")),
		call("builtin::hide", path("app::secret")),
		call("builtin::extra_dependency", path("app::helper")),
	})
	require.NoError(t, err)
	assert.Equal(t, "n >= 0", h.DecreaseWhen.Text)
	assert.Equal(t, "app::lemma", h.DecreaseBy.String())
	assert.Equal(t, vir.MaskInvariantOpensExcept, h.InvariantMask.Kind)
	assert.Equal(t, []vir.UnwrapParameter{{Mode: vir.ModeProof, OuterName: "t", InnerName: "t_inner"}}, h.UnwrapParameters)
	assert.Equal(t, "app::secret", h.Hidden[0].String())
	assert.Equal(t, "app::helper", h.ExtraDependencies[0].String())
}

func Test_ReadHeaderRejects(t *testing.T) {
	r := NewReader(host.NewTable())
	cases := map[string][]*host.Expr{
		"when without decreases": {call("builtin::decreases_when", opaque("b"))},
		"by without decreases":   {call("builtin::decreases_by", path("app::lemma"))},
		"two masks":              {call("builtin::opens_invariants_none"), call("builtin::opens_invariants_any")},
		"not a clause":           {opaque("let x = 1")},
		"exec unwrap":            {call("builtin::unwrap_parameter", path("a"), path("b"), opaque("exec"))},
		"duplicate unwrap": {
			call("builtin::unwrap_parameter", path("a"), path("b"), opaque("spec")),
			call("builtin::unwrap_parameter", path("a"), path("c"), opaque("spec")),
		},
	}
	for name, stmts := range cases {
		_, err := r.ReadHeaderBlock(stmts)
		_, ok := diag.AsError(err)
		assert.True(t, ok, name)
	}

	_, _, err := r.ReadHeader(body([]*host.Expr{
		opaque("let x = 1"),
		call("builtin::requires", opaque("x > 0")),
	}, nil))
	assert.Error(t, err)
}

func Test_IsClause(t *testing.T) {
	tab := host.NewTable()
	name, ok := IsClause(tab, call("builtin::ensures"))
	assert.True(t, ok)
	assert.Equal(t, Ensures, name)

	_, ok = IsClause(tab, call("builtin::Ghost"))
	assert.False(t, ok)
	_, ok = IsClause(tab, call("app::requires"))
	assert.False(t, ok)
	_, ok = IsClause(tab, opaque("requires"))
	assert.False(t, ok)
}
