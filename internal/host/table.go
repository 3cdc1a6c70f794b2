package host

import (
	"strings"

	"github.com/pkg/errors"

	"vlower/internal/vir"
)

// Def is everything the Table knows about one host definition.
type Def struct {
	ID     DefID
	Path   vir.Path
	Module vir.Path
	// Vis is "pub", "pub(crate)", "pub(super)", "pub(in a::b)" or "" (private).
	Vis             string
	Generics        []string
	Sig             *FnSig
	Predicates      []Predicate
	Trait           DefID
	Impl            DefID
	ImplTrait       DefID
	DiagnosticItems []string
}

// Table is an in-memory Host. The CLI fills it from a program file and
// tests fill it directly.
type Table struct {
	defs  map[DefID]*Def
	order []DefID
}

var _ Host = (*Table)(nil)

func NewTable() *Table {
	return &Table{defs: make(map[DefID]*Def)}
}

// Add registers def, deriving its path from the id and its module from the
// path when they are not given.
func (t *Table) Add(def *Def) *Def {
	if def.Path.Krate == "" {
		def.Path = vir.ParsePath(string(def.ID))
	}
	if def.Module.Krate == "" {
		def.Module = vir.NewPath(def.Path.Krate)
		if n := len(def.Path.Segments); n > 1 {
			def.Module = vir.NewPath(def.Path.Krate, def.Path.Segments[:n-1]...)
		}
	}
	if _, ok := t.defs[def.ID]; !ok {
		t.order = append(t.order, def.ID)
	}
	t.defs[def.ID] = def
	return def
}

func (t *Table) Def(id DefID) (*Def, bool) {
	def, ok := t.defs[id]
	return def, ok
}

func (t *Table) Defs() []*Def {
	defs := make([]*Def, 0, len(t.order))
	for _, id := range t.order {
		defs = append(defs, t.defs[id])
	}
	return defs
}

func (t *Table) identity(def *Def) []Ty {
	args := make([]Ty, len(def.Generics))
	for i, g := range def.Generics {
		args[i] = TyParam{Name: g}
	}
	return args
}

func (t *Table) subst(def *Def, args []Ty) (Subst, error) {
	if len(args) != len(def.Generics) {
		return nil, errors.Errorf("%s expects %d generic arguments, got %d", def.ID, len(def.Generics), len(args))
	}
	s := make(Subst, len(args))
	for i, g := range def.Generics {
		s[g] = args[i]
	}
	return s, nil
}

func (t *Table) FnDef(id DefID) (FnDef, bool) {
	def, ok := t.defs[id]
	if !ok || def.Sig == nil {
		return FnDef{}, false
	}
	return FnDef{Def: id, Args: t.identity(def)}, true
}

func (t *Table) FnSig(id DefID) (FnSig, error) {
	def, ok := t.defs[id]
	if !ok || def.Sig == nil {
		return FnSig{}, errors.Errorf("no signature for %s", id)
	}
	return *def.Sig, nil
}

func (t *Table) Substitute(id DefID, args []Ty) (FnSig, error) {
	def, ok := t.defs[id]
	if !ok || def.Sig == nil {
		return FnSig{}, errors.Errorf("no signature for %s", id)
	}
	s, err := t.subst(def, args)
	if err != nil {
		return FnSig{}, errors.Wrap(err, "Substitute")
	}
	return def.Sig.Subst(s), nil
}

func (t *Table) PredicatesOf(id DefID) []Predicate {
	if def, ok := t.defs[id]; ok {
		return def.Predicates
	}
	return nil
}

func (t *Table) InstantiatePredicates(id DefID, args []Ty) ([]Predicate, error) {
	def, ok := t.defs[id]
	if !ok {
		return nil, errors.Errorf("unknown definition %s", id)
	}
	s, err := t.subst(def, args)
	if err != nil {
		return nil, errors.Wrap(err, "InstantiatePredicates")
	}
	preds := make([]Predicate, len(def.Predicates))
	for i, p := range def.Predicates {
		preds[i] = p.Subst(s)
	}
	return preds, nil
}

func (t *Table) CanonicalizeSig(sig FnSig) FnSig {
	return CanonicalizeSig(sig)
}

func (t *Table) CanonicalizePredicate(p Predicate) Predicate {
	return CanonicalizePredicate(p)
}

func (t *Table) DefPath(id DefID) vir.Path {
	if def, ok := t.defs[id]; ok {
		return def.Path
	}
	return vir.ParsePath(string(id))
}

func (t *Table) ResolveCallee(callee *Expr) (DefID, bool) {
	if callee == nil || callee.Kind != ExprPath || callee.Res == "" {
		return "", false
	}
	return callee.Res, true
}

func (t *Table) ResolveMethodCall(call *Expr) (DefID, bool) {
	if call == nil || call.Kind != ExprMethodCall || call.Res == "" {
		return "", false
	}
	return call.Res, true
}

func (t *Table) TraitOf(id DefID) (DefID, bool) {
	if def, ok := t.defs[id]; ok && def.Trait != "" {
		return def.Trait, true
	}
	return "", false
}

func (t *Table) ImplOf(id DefID) (DefID, bool) {
	if def, ok := t.defs[id]; ok && def.Impl != "" {
		return def.Impl, true
	}
	return "", false
}

func (t *Table) ImplTraitRef(impl DefID) (DefID, bool) {
	if def, ok := t.defs[impl]; ok && def.ImplTrait != "" {
		return def.ImplTrait, true
	}
	return "", false
}

func (t *Table) Visibility(id DefID) vir.Visibility {
	def, ok := t.defs[id]
	if !ok {
		return vir.Public()
	}
	vis := strings.ReplaceAll(def.Vis, " ", "")
	switch {
	case vis == "pub":
		return vir.Public()
	case vis == "pub(crate)":
		return vir.RestrictedTo(vir.NewPath(def.Path.Krate))
	case vis == "pub(super)":
		if n := len(def.Module.Segments); n > 0 {
			return vir.RestrictedTo(vir.NewPath(def.Module.Krate, def.Module.Segments[:n-1]...))
		}
		return vir.RestrictedTo(def.Module)
	case strings.HasPrefix(vis, "pub(in") && strings.HasSuffix(vis, ")"):
		return vir.RestrictedTo(vir.ParsePath(vis[len("pub(in") : len(vis)-1]))
	}
	return vir.RestrictedTo(def.Module)
}

func (t *Table) IsDiagnosticItem(name string, id DefID) bool {
	def, ok := t.defs[id]
	if !ok {
		return false
	}
	for _, item := range def.DiagnosticItems {
		if item == name {
			return true
		}
	}
	return false
}
