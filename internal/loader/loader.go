// Package loader 从程序文件读取宿主定义与待处理的声明
package loader

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

const defaultVstdCrate = "vstd"

type Loader struct {
	table     *host.Table
	items     []*host.Item
	vstdCrate string
}

func NewLoader() *Loader {
	return &Loader{table: host.NewTable(), vstdCrate: defaultVstdCrate}
}

func (l *Loader) Table() *host.Table {
	return l.table
}

func (l *Loader) Items() []*host.Item {
	return l.items
}

func (l *Loader) VstdCrate() string {
	return l.vstdCrate
}

// SetVstdCrate sets the crate name used until a program file names its own.
func (l *Loader) SetVstdCrate(name string) {
	l.vstdCrate = name
}

// LoadFromFiles 依次读取程序文件, 定义合并到同一张表
func (l *Loader) LoadFromFiles(files []string) error {
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrap(err, "ReadFile")
		}
		if err := l.Load(file, data); err != nil {
			return errors.Wrapf(err, "load %s", file)
		}
	}
	return nil
}

func (l *Loader) Load(file string, data []byte) error {
	prog, err := ParseProgram(data)
	if err != nil {
		return err
	}
	if prog.File == "" {
		prog.File = file
	}
	if prog.VstdCrate != "" {
		l.vstdCrate = prog.VstdCrate
	}
	// 先登记全部定义, 声明的转换依赖这些定义
	for _, d := range prog.Defs {
		def, err := convertDef(d)
		if err != nil {
			return err
		}
		l.table.Add(def)
	}
	for i := range prog.Items {
		item, err := l.convertItem(prog.File, &prog.Items[i])
		if err != nil {
			return err
		}
		l.items = append(l.items, item)
	}
	log.Infof("loaded %d defs and %d items from %s", len(prog.Defs), len(prog.Items), file)
	return nil
}

func convertDef(d *DefNode) (*host.Def, error) {
	if d.ID == "" {
		return nil, errors.New("definition without id")
	}
	def := &host.Def{
		ID:              host.DefID(d.ID),
		Vis:             d.Vis,
		Generics:        d.Generics,
		Trait:           host.DefID(d.Trait),
		Impl:            host.DefID(d.Impl),
		ImplTrait:       host.DefID(d.ImplTrait),
		DiagnosticItems: d.DiagnosticItems,
	}
	if d.Path != "" {
		def.Path = vir.ParsePath(d.Path)
	}
	if d.Module != "" {
		def.Module = vir.ParsePath(d.Module)
	}
	if d.Sig != nil {
		sig := &host.FnSig{
			BoundVars: d.Sig.BoundVars,
			Output:    host.Unit(),
			Unsafe:    d.Sig.Unsafe,
			CVariadic: d.Sig.CVariadic,
		}
		for _, src := range d.Sig.Inputs {
			ty, err := host.ParseTy(src, d.Generics)
			if err != nil {
				return nil, errors.Wrapf(err, "input of %s", d.ID)
			}
			sig.Inputs = append(sig.Inputs, ty)
		}
		if d.Sig.Output != "" {
			ty, err := host.ParseTy(d.Sig.Output, d.Generics)
			if err != nil {
				return nil, errors.Wrapf(err, "output of %s", d.ID)
			}
			sig.Output = ty
		}
		def.Sig = sig
	}
	for _, src := range d.Predicates {
		pred, err := host.ParsePredicate(src, d.Generics)
		if err != nil {
			return nil, errors.Wrapf(err, "predicate of %s", d.ID)
		}
		def.Predicates = append(def.Predicates, pred)
	}
	return def, nil
}

func (l *Loader) convertItem(file string, n *ItemNode) (*host.Item, error) {
	id := host.DefID(n.ID)
	def, ok := l.table.Def(id)
	if !ok {
		return nil, errors.Errorf("item %s has no definition", n.ID)
	}
	span := diag.Span{File: file, Line: n.Line}
	attrs := make([]host.Attribute, len(n.Attrs))
	for i, a := range n.Attrs {
		attrs[i] = host.ParseAttribute(span, a)
	}
	vis := l.table.Visibility(id)
	generics := convertGenerics(span, n.Generics)
	if n.Kind != "const" && def.Sig != nil && len(n.Params) != len(def.Sig.Inputs) {
		return nil, errors.Errorf("item %s has %d parameters but its signature has %d inputs", n.ID, len(n.Params), len(def.Sig.Inputs))
	}

	switch n.Kind {
	case "", "fn":
		item, err := l.convertFn(span, n, def)
		if err != nil {
			return nil, err
		}
		item.Visibility, item.Attrs, item.Generics = vis, attrs, generics
		return &host.Item{Kind: host.ItemFn, Fn: item}, nil
	case "const":
		if n.Ty == "" {
			return nil, errors.Errorf("const %s has no type", n.ID)
		}
		ty, err := host.ParseTy(n.Ty, def.Generics)
		if err != nil {
			return nil, errors.Wrapf(err, "type of %s", n.ID)
		}
		item := &host.ConstItem{ID: id, Span: span, Visibility: vis, Attrs: attrs, Ty: ty}
		if n.Body != nil {
			conv := exprConverter{span: span, generics: def.Generics}
			if item.Body, err = conv.body(n.Body, nil); err != nil {
				return nil, errors.Wrapf(err, "body of %s", n.ID)
			}
		}
		return &host.Item{Kind: host.ItemConst, Const: item}, nil
	case "foreign":
		item := &host.ForeignFnItem{ID: id, Span: span, Visibility: vis, Attrs: attrs, Generics: generics}
		item.Decl = fnDecl(def, n)
		for _, p := range n.Params {
			item.Idents = append(item.Idents, host.Ident{Span: span, Name: p.Name})
		}
		return &host.Item{Kind: host.ItemForeignFn, Foreign: item}, nil
	}
	return nil, errors.Errorf("item %s has unknown kind %q", n.ID, n.Kind)
}

func (l *Loader) convertFn(span diag.Span, n *ItemNode, def *host.Def) (*host.FnItem, error) {
	item := &host.FnItem{
		ID: def.ID,
		Sig: host.FnSigDecl{
			Span: span,
			Decl: fnDecl(def, n),
		},
		Kind: vir.StaticKind(),
	}
	if def.Sig != nil {
		item.Sig.Unsafe = def.Sig.Unsafe
	}
	if n.SelfGenerics != nil {
		item.SelfGenerics = &host.ImplGenerics{
			Generics: convertGenerics(span, n.SelfGenerics.Generics),
			Impl:     host.DefID(n.SelfGenerics.Impl),
		}
	}
	switch {
	case def.Trait != "":
		item.Kind = vir.TraitMethodDeclKind(l.table.DefPath(def.Trait))
	case def.Impl != "":
		if trait, ok := l.table.ImplTraitRef(def.Impl); ok {
			if n.Method == "" {
				return nil, errors.Errorf("trait method implementation %s does not name its method", n.ID)
			}
			method := &vir.Fun{Path: l.table.DefPath(host.DefID(n.Method))}
			item.Kind = vir.TraitMethodImplKind(method, l.table.DefPath(trait), l.table.DefPath(def.Impl))
		}
	}
	if n.Body == nil {
		for _, p := range n.Params {
			item.ParamNames = append(item.ParamNames, host.Ident{Span: span, Name: p.Name})
		}
		return item, nil
	}
	params := make([]host.BodyParam, len(n.Params))
	for i, p := range n.Params {
		params[i] = host.BodyParam{Span: span, Name: p.Name, Mut: p.Mut}
		for _, a := range p.Attrs {
			params[i].Attrs = append(params[i].Attrs, host.ParseAttribute(span, a))
		}
	}
	conv := exprConverter{span: span, generics: def.Generics}
	body, err := conv.body(n.Body, params)
	if err != nil {
		return nil, errors.Wrapf(err, "body of %s", n.ID)
	}
	item.Body = body
	return item, nil
}

func fnDecl(def *host.Def, n *ItemNode) host.FnDecl {
	decl := host.FnDecl{ImplicitSelf: implicitSelf(n.ImplicitSelf)}
	if def.Sig != nil {
		decl.HasReturn = def.Sig.Output != nil && !host.IsUnit(def.Sig.Output)
		decl.CVariadic = def.Sig.CVariadic
	}
	return decl
}

func implicitSelf(s string) host.ImplicitSelf {
	switch s {
	case "self":
		return host.SelfImm
	case "&self":
		return host.SelfImmRef
	case "&mut self":
		return host.SelfMutRef
	case "mut self":
		return host.SelfMut
	}
	return host.SelfNone
}

// convertGenerics 以 ' 开头的是生命周期, 以 const 开头的是常量泛型
func convertGenerics(span diag.Span, names []string) host.Generics {
	g := host.Generics{Span: span}
	for _, name := range names {
		param := host.GenericParam{Span: span, Name: name, Kind: host.GenericType}
		switch {
		case strings.HasPrefix(name, "'"):
			param.Kind = host.GenericLifetime
		case strings.HasPrefix(name, "const "):
			param.Kind = host.GenericConst
			param.Name = strings.TrimSpace(strings.TrimPrefix(name, "const "))
		}
		g.Params = append(g.Params, param)
	}
	return g
}

// exprConverter 记录声明的位置与泛型参数, 闭包参数类型按声明的泛型解析
type exprConverter struct {
	span     diag.Span
	generics []string
}

func (c exprConverter) body(n *BodyNode, params []host.BodyParam) (*host.Body, error) {
	block, err := c.block(&n.BlockNode)
	if err != nil {
		return nil, err
	}
	return &host.Body{
		Span:      c.span,
		Params:    params,
		Generator: n.Generator,
		Value:     &host.Expr{Span: c.span, Kind: host.ExprBlock, Block: block},
	}, nil
}

func (c exprConverter) block(n *BlockNode) (*host.Block, error) {
	tail, err := c.expr(n.Tail)
	if err != nil {
		return nil, err
	}
	b := &host.Block{Unsafe: n.Unsafe, Tail: tail}
	for _, s := range n.Stmts {
		stmt, err := c.expr(s)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, stmt)
	}
	return b, nil
}

func (c exprConverter) expr(n *ExprNode) (*host.Expr, error) {
	if n == nil {
		return nil, nil
	}
	e := &host.Expr{Span: c.span, Res: host.DefID(n.Res)}
	for _, a := range n.Args {
		arg, err := c.expr(a)
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, arg)
	}
	var err error
	switch {
	case n.Call != "":
		e.Kind = host.ExprCall
		e.Callee = &host.Expr{Span: c.span, Kind: host.ExprPath, Name: n.Call, Res: e.Res}
		e.Res = ""
	case n.Method != "":
		e.Kind = host.ExprMethodCall
		e.Name = n.Method
		if e.Receiver, err = c.expr(n.Receiver); err != nil {
			return nil, err
		}
	case n.Path != "":
		e.Kind = host.ExprPath
		e.Name = n.Path
	case n.Lit != "":
		e.Kind = host.ExprLit
		e.Name = n.Lit
	case n.Block != nil:
		e.Kind = host.ExprBlock
		if e.Block, err = c.block(n.Block); err != nil {
			return nil, err
		}
	case n.Body != nil:
		e.Kind = host.ExprClosure
		for _, p := range n.Closure {
			ty, err := host.ParseTy(p.Ty, c.generics)
			if err != nil {
				return nil, errors.Wrapf(err, "closure parameter %s", p.Name)
			}
			e.Params = append(e.Params, host.ClosureParam{Name: p.Name, Ty: ty})
		}
		if e.Body, err = c.expr(n.Body); err != nil {
			return nil, err
		}
	default:
		e.Kind = host.ExprOpaque
		e.Name = n.Text
	}
	return e, nil
}
