package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vlower/internal/diag"
	"vlower/internal/vir"
)

func mustTy(t *testing.T, src string, generics ...string) Ty {
	ty, err := ParseTy(src, generics)
	require.NoError(t, err, src)
	return ty
}

func Test_ParseTy(t *testing.T) {
	ty := mustTy(t, "&'a mut builtin::Tracked<std::vec::Vec<T>>", "T")
	ref, ok := ty.(TyRef)
	require.True(t, ok)
	assert.Equal(t, "'a", ref.Region)
	assert.True(t, ref.Mut)
	adt, ok := ref.Inner.(TyAdt)
	require.True(t, ok)
	assert.Equal(t, DefID("builtin::Tracked"), adt.Def)
	assert.Equal(t, TyParam{Name: "T"}, adt.Args[0].(TyAdt).Args[0])

	assert.Equal(t, TyPrim{Name: "u8"}, mustTy(t, "u8"))
	assert.Equal(t, TyAdt{Def: "Foo"}, mustTy(t, "Foo"))
	assert.Equal(t, "(u8,)", mustTy(t, "(u8,)").String())
	assert.Equal(t, "fn(u8) -> bool", mustTy(t, "fn(u8) -> bool").String())
	assert.Equal(t, "*const T", mustTy(t, "*const T", "T").String())

	_, err := ParseTy("Vec<u8", nil)
	assert.Error(t, err)
	_, err = ParseTy("u8 u8", nil)
	assert.Error(t, err)
}

func Test_ParsePredicate(t *testing.T) {
	p, err := ParsePredicate("T: core::clone::Clone", []string{"T"})
	require.NoError(t, err)
	assert.Equal(t, PredTrait, p.Kind)
	assert.Equal(t, DefID("core::clone::Clone"), p.Trait)

	p, err = ParsePredicate("<I as core::iter::Iterator>::Item == u8", []string{"I"})
	require.NoError(t, err)
	assert.Equal(t, PredProjection, p.Kind)
	assert.Equal(t, "Item", p.Item)
	assert.Equal(t, "<I as core::iter::Iterator>::Item == u8", p.String())

	p, err = ParsePredicate("for<'a> F: core::ops::Fn<(&'a u8,)>", []string{"F"})
	require.NoError(t, err)
	assert.Equal(t, []string{"'a"}, p.BoundVars)

	p, err = ParsePredicate("'a: 'b", nil)
	require.NoError(t, err)
	assert.Equal(t, PredRegionOutlives, p.Kind)

	p, err = ParsePredicate("T: 'static", []string{"T"})
	require.NoError(t, err)
	assert.Equal(t, PredTypeOutlives, p.Kind)
}

func Test_CanonicalizeSigIgnoresBinderNames(t *testing.T) {
	a := FnSig{
		BoundVars: []string{"'a", "'b"},
		Inputs:    []Ty{mustTy(t, "&'a mut T", "T"), mustTy(t, "&'b T", "T")},
		Output:    Unit(),
	}
	b := FnSig{
		BoundVars: []string{"'y", "'x"},
		Inputs:    []Ty{mustTy(t, "&'x mut T", "T"), mustTy(t, "&'y T", "T")},
		Output:    Unit(),
	}
	assert.False(t, a.Equal(b))
	assert.True(t, CanonicalizeSig(a).Equal(CanonicalizeSig(b)))

	c := FnSig{
		BoundVars: []string{"'a"},
		Inputs:    []Ty{mustTy(t, "&'a mut T", "T"), mustTy(t, "&'a T", "T")},
		Output:    Unit(),
	}
	assert.False(t, CanonicalizeSig(a).Equal(CanonicalizeSig(c)))
}

func Test_CanonicalizeKeepsFreeRegions(t *testing.T) {
	sig := FnSig{
		BoundVars: []string{"'a"},
		Inputs:    []Ty{mustTy(t, "&'a u8"), mustTy(t, "&'static u8")},
	}
	canon := CanonicalizeSig(sig)
	assert.Equal(t, "for<'^0> fn(&'^0 u8, &'static u8)", canon.String())
}

func Test_SubstIsSimultaneous(t *testing.T) {
	s := Subst{"A": TyParam{Name: "B"}, "B": TyParam{Name: "A"}}
	ty := mustTy(t, "(A, B)", "A", "B")
	assert.Equal(t, "(B, A)", s.Apply(ty).String())
}

func Test_TableSubstituteAndVisibility(t *testing.T) {
	tab := NewTable()
	tab.Add(&Def{
		ID:       "core::mem::swap",
		Vis:      "pub",
		Generics: []string{"T"},
		Sig: &FnSig{
			BoundVars: []string{"'a", "'b"},
			Inputs:    []Ty{mustTy(t, "&'a mut T", "T"), mustTy(t, "&'b mut T", "T")},
		},
	})
	tab.Add(&Def{ID: "app::net::helper", Vis: "pub(super)"})
	tab.Add(&Def{ID: "app::net::inner", Vis: ""})
	tab.Add(&Def{ID: "app::net::krate", Vis: "pub(crate)"})
	tab.Add(&Def{ID: "app::net::scoped", Vis: "pub(in app::net)"})

	fd, ok := tab.FnDef("core::mem::swap")
	require.True(t, ok)
	assert.Equal(t, []Ty{TyParam{Name: "T"}}, fd.Args)

	sig, err := tab.Substitute("core::mem::swap", []Ty{TyPrim{Name: "u8"}})
	require.NoError(t, err)
	assert.Equal(t, "for<'a, 'b> fn(&'a mut u8, &'b mut u8)", sig.String())

	_, err = tab.Substitute("core::mem::swap", nil)
	assert.Error(t, err)

	assert.True(t, tab.Visibility("core::mem::swap").IsPublic())
	assert.Equal(t, "pub(in app)", tab.Visibility("app::net::helper").String())
	assert.Equal(t, "pub(in app::net)", tab.Visibility("app::net::inner").String())
	assert.Equal(t, "pub(in app)", tab.Visibility("app::net::krate").String())
	assert.Equal(t, "pub(in app::net)", tab.Visibility("app::net::scoped").String())
}

func Test_ToVir(t *testing.T) {
	tab := NewTable()
	span := diag.Span{File: "lib.rs", Line: 1}

	typ, err := ToVir(tab, span, mustTy(t, "builtin::Ghost<&T>", "T"))
	require.NoError(t, err)
	assert.Equal(t, vir.Decorate{Dec: vir.DecorateGhost, Inner: vir.Decorate{Dec: vir.DecorateRef, Inner: vir.TypParam{Name: "T"}}}, typ)

	_, err = ToVir(tab, span, mustTy(t, "&mut u8"))
	de, ok := diag.AsError(err)
	require.True(t, ok)
	assert.Equal(t, diag.UnsupportedConstruct, de.Kind)

	_, err = ToVir(tab, span, mustTy(t, "*mut u8"))
	assert.Error(t, err)
}

func Test_ParseAttribute(t *testing.T) {
	a := ParseAttribute(diag.Span{}, "verifier::fuel(3)")
	assert.Equal(t, "verifier::fuel", a.Name)
	assert.Equal(t, []string{"3"}, a.Args)

	a = ParseAttribute(diag.Span{}, "verifier::external_body")
	assert.Nil(t, a.Args)
	assert.Equal(t, "verifier::external_body", a.String())

	a = ParseAttribute(diag.Span{}, `verifier::custom_req_err("a,b")`)
	assert.Equal(t, []string{`"a,b"`}, a.Args)

	a = ParseAttribute(diag.Span{}, `verifier(x, "say \"hi\", then", f(1, 2))`)
	assert.Equal(t, []string{"x", `"say \"hi\", then"`, "f(1, 2)"}, a.Args)
}
