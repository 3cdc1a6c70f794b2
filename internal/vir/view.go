package vir

// Records are printed and fingerprinted through these flat views so that
// every type and expression is rendered by its canonical text.

type paramView struct {
	Name      string `yaml:"name"`
	Typ       string `yaml:"typ"`
	Mode      Mode   `yaml:"mode"`
	IsMut     bool   `yaml:"is_mut,omitempty"`
	Unwrapped string `yaml:"unwrapped,omitempty"`
}

type boundView struct {
	Name   string   `yaml:"name"`
	Traits []string `yaml:"traits,flow"`
}

type functionView struct {
	Name              string      `yaml:"name"`
	Proxy             string      `yaml:"proxy,omitempty"`
	Kind              string      `yaml:"kind"`
	Visibility        string      `yaml:"visibility"`
	Mode              Mode        `yaml:"mode"`
	Fuel              uint32      `yaml:"fuel"`
	TypBounds         []boundView `yaml:"typ_bounds,omitempty"`
	Params            []paramView `yaml:"params,omitempty"`
	Ret               paramView   `yaml:"ret"`
	Require           []string    `yaml:"require,omitempty"`
	Ensure            []string    `yaml:"ensure,omitempty"`
	Recommend         []string    `yaml:"recommend,omitempty"`
	Decrease          []string    `yaml:"decrease,omitempty"`
	DecreaseWhen      string      `yaml:"decrease_when,omitempty"`
	DecreaseBy        string      `yaml:"decrease_by,omitempty"`
	Mask              []string    `yaml:"mask,omitempty"`
	IsConst           bool        `yaml:"is_const,omitempty"`
	Publish           string      `yaml:"publish,omitempty"`
	Autospec          string      `yaml:"autospec,omitempty"`
	Hidden            []string    `yaml:"hidden,omitempty"`
	HasBody           bool        `yaml:"has_body"`
	ExtraDependencies []string    `yaml:"extra_dependencies,omitempty"`
}

func viewParam(p *Param) paramView {
	v := paramView{Name: p.Name, Typ: p.Typ.String(), Mode: p.Mode, IsMut: p.IsMut}
	if p.UnwrappedInfo != nil {
		v.Unwrapped = p.UnwrappedInfo.Mode.String() + " " + p.UnwrappedInfo.OuterName
	}
	return v
}

func exprTexts(exprs []*Expr) []string {
	var texts []string
	for _, e := range exprs {
		texts = append(texts, e.Text)
	}
	return texts
}

func funNames(funs []*Fun) []string {
	var names []string
	for _, f := range funs {
		names = append(names, f.String())
	}
	return names
}

func (f *Function) MarshalYAML() (interface{}, error) {
	v := functionView{
		Name:              f.Name.String(),
		Kind:              f.Kind.String(),
		Visibility:        f.Visibility.String(),
		Mode:              f.Mode,
		Fuel:              f.Fuel,
		Ret:               viewParam(f.Ret),
		Require:           exprTexts(f.Require),
		Ensure:            exprTexts(f.Ensure),
		Recommend:         exprTexts(f.Recommend),
		Decrease:          exprTexts(f.Decrease),
		Mask:              exprTexts(f.MaskSpec.Exprs),
		IsConst:           f.IsConst,
		Hidden:            funNames(f.Attrs.Hidden),
		HasBody:           f.Body != nil,
		ExtraDependencies: funNames(f.ExtraDependencies),
	}
	if f.Proxy != nil {
		v.Proxy = f.Proxy.String()
	}
	for _, b := range f.TypBounds {
		bv := boundView{Name: b.Name, Traits: []string{}}
		for _, t := range b.Bound.Traits {
			bv.Traits = append(bv.Traits, t.String())
		}
		v.TypBounds = append(v.TypBounds, bv)
	}
	for _, p := range f.Params {
		v.Params = append(v.Params, viewParam(p))
	}
	if f.DecreaseWhen != nil {
		v.DecreaseWhen = f.DecreaseWhen.Text
	}
	if f.DecreaseBy != nil {
		v.DecreaseBy = f.DecreaseBy.String()
	}
	if f.Publish != nil {
		v.Publish = [...]string{"private", "opaque", "visible"}[*f.Publish]
	}
	if f.Attrs.Autospec != nil {
		v.Autospec = f.Attrs.Autospec.String()
	}
	return v, nil
}
