package lower

import (
	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

// CheckGenericsBounds collects the trait bounds of every type parameter of
// owner, in declaration order. Lifetime parameters and outlives clauses do
// not matter to the verifier and are dropped.
func CheckGenericsBounds(r host.Host, generics host.Generics, owner host.DefID) ([]vir.TypBound, error) {
	var (
		names  []string
		traits = map[string][]vir.Path{}
	)
	for _, gp := range generics.Params {
		switch gp.Kind {
		case host.GenericLifetime:
			continue
		case host.GenericConst:
			return nil, diag.Unsupported(gp.Span, "const generics")
		}
		if _, ok := traits[gp.Name]; ok {
			return nil, diag.Errorf(diag.DuplicateName, gp.Span, "duplicate generic parameter %s", gp.Name)
		}
		names = append(names, gp.Name)
		traits[gp.Name] = []vir.Path{}
	}
	for _, p := range r.PredicatesOf(owner) {
		switch p.Kind {
		case host.PredTypeOutlives, host.PredRegionOutlives:
			continue
		case host.PredProjection:
			return nil, diag.Unsupported(generics.Span, "associated type equality bounds ("+p.String()+")")
		}
		param, ok := p.Self.(host.TyParam)
		if !ok {
			return nil, diag.Unsupported(generics.Span, "where clauses on non-parameter types ("+p.String()+")")
		}
		if _, ok := traits[param.Name]; !ok {
			return nil, diag.Unsupported(generics.Span, "bounds on type parameters of an enclosing scope ("+p.String()+")")
		}
		traits[param.Name] = append(traits[param.Name], r.DefPath(p.Trait))
	}
	bounds := make([]vir.TypBound, 0, len(names))
	for _, name := range names {
		bounds = append(bounds, vir.TypBound{Name: name, Bound: vir.GenericBound{Traits: traits[name]}})
	}
	return bounds, nil
}
