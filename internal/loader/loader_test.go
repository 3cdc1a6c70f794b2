package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlower/internal/host"
	"vlower/internal/vir"
)

func load(t *testing.T) *Loader {
	l := NewLoader()
	require.NoError(t, l.LoadFromFiles([]string{"testdata/swap.yaml"}))
	return l
}

func Test_LoadDefs(t *testing.T) {
	l := load(t)
	assert.Equal(t, "vstd", l.VstdCrate())
	assert.Len(t, l.Table().Defs(), 6)

	sig, err := l.Table().FnSig("core::mem::swap")
	require.NoError(t, err)
	assert.Equal(t, "for<'a, 'b> fn(&'a mut T, &'b mut T)", sig.String())

	sig, err = l.Table().FnSig("app::double")
	require.NoError(t, err)
	assert.Equal(t, "fn(u8) -> u8", sig.String())

	assert.Equal(t, vir.RestrictedTo(vir.NewPath("app")), l.Table().Visibility("app::is_small"))
}

func Test_LoadItems(t *testing.T) {
	l := load(t)
	items := l.Items()
	require.Len(t, items, 5)
	assert.Equal(t, []host.ItemKind{host.ItemFn, host.ItemFn, host.ItemFn, host.ItemConst, host.ItemForeignFn},
		[]host.ItemKind{items[0].Kind, items[1].Kind, items[2].Kind, items[3].Kind, items[4].Kind})

	proxy := items[0].Fn
	assert.Equal(t, "lib.rs:4", proxy.Sig.Span.String())
	require.Len(t, proxy.Attrs, 1)
	assert.Equal(t, "verifier::external_fn_specification", proxy.Attrs[0].Name)
	require.NotNil(t, proxy.Body)
	require.Len(t, proxy.Body.Params, 2)
	block := proxy.Body.Value.Block
	require.Len(t, block.Stmts, 1)
	assert.Equal(t, host.ExprCall, block.Stmts[0].Kind)
	assert.Equal(t, "builtin::ensures(*a == *old(b), *b == *old(a))", block.Stmts[0].String())
	assert.Equal(t, host.DefID("core::mem::swap"), block.Tail.Callee.Res)

	double := items[1].Fn
	assert.True(t, double.Sig.Decl.HasReturn)
	ens := double.Body.Value.Block.Stmts[1].Args[0]
	assert.Equal(t, host.ExprClosure, ens.Kind)
	assert.Equal(t, "|r: u8| r == 2 * x", ens.String())

	c := items[3].Const
	assert.Equal(t, host.TyPrim{Name: "u8"}, c.Ty)
	assert.Equal(t, host.ExprLit, c.Body.Value.Block.Tail.Kind)

	f := items[4].Foreign
	assert.True(t, f.Decl.HasReturn)
	require.Len(t, f.Idents, 1)
	assert.Equal(t, "v", f.Idents[0].Name)
}

func Test_LoadTraitItems(t *testing.T) {
	l := NewLoader()
	err := l.Load("traits.yaml", []byte(`
defs:
  - id: app::Shape
  - id: app::Shape::area
    trait: app::Shape
    sig: {inputs: ["&Self"], output: u64}
  - id: app::impl_square
    impl_trait: app::Shape
  - id: app::Square::area
    impl: app::impl_square
    sig: {inputs: ["&app::Square"], output: u64}
items:
  - id: app::Shape::area
    self: "&self"
    params: [{name: self}]
  - id: app::Square::area
    self: "&self"
    method: app::Shape::area
    generics: ["'a"]
    params: [{name: self}]
    body: {tail: "self.side * self.side"}
`))
	require.NoError(t, err)
	items := l.Items()
	require.Len(t, items, 2)

	decl := items[0].Fn
	assert.Equal(t, vir.KindTraitMethodDecl, decl.Kind.Tag)
	assert.Equal(t, "app::Shape", decl.Kind.Trait.String())
	assert.Nil(t, decl.Body)
	require.Len(t, decl.ParamNames, 1)
	assert.Equal(t, host.SelfImmRef, decl.Sig.Decl.ImplicitSelf)

	impl := items[1].Fn
	assert.Equal(t, vir.KindTraitMethodImpl, impl.Kind.Tag)
	assert.Equal(t, "app::Shape::area", impl.Kind.Method.String())
	assert.Equal(t, host.GenericLifetime, impl.Generics.Params[0].Kind)
	assert.Equal(t, host.ExprOpaque, impl.Body.Value.Block.Tail.Kind)
}

func Test_LoadRejects(t *testing.T) {
	for name, src := range map[string]string{
		"missing def":  "items: [{id: app::f}]",
		"unknown kind": "defs: [{id: app::f}]\nitems: [{id: app::f, kind: static}]",
		"bad type":     "defs: [{id: app::f, sig: {inputs: [\"&&\"]}}]",
		"const no ty":  "defs: [{id: app::C}]\nitems: [{id: app::C, kind: const}]",
		"no id":        "defs: [{vis: pub}]",
		"bad yaml":     "defs: [",
		"arity":        "defs: [{id: app::f, sig: {inputs: [u8]}}]\nitems: [{id: app::f, body: {tail: x}}]",
	} {
		err := NewLoader().Load("bad.yaml", []byte(src))
		assert.Error(t, err, name)
	}
}
