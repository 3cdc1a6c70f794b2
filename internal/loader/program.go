package loader

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Program is the on-disk form of a whole-program pass: the host definitions
// the queries answer from and the declarations to lower, in source order.
type Program struct {
	File      string     `yaml:"file"`
	VstdCrate string     `yaml:"vstd_crate"`
	Defs      []*DefNode `yaml:"defs"`
	Items     []ItemNode `yaml:"items"`
}

type SigNode struct {
	BoundVars []string `yaml:"bound_vars"`
	Inputs    []string `yaml:"inputs"`
	Output    string   `yaml:"output"`
	Unsafe    bool     `yaml:"unsafe"`
	CVariadic bool     `yaml:"c_variadic"`
}

type DefNode struct {
	ID              string   `yaml:"id"`
	Path            string   `yaml:"path"`
	Module          string   `yaml:"module"`
	Vis             string   `yaml:"vis"`
	Generics        []string `yaml:"generics"`
	Sig             *SigNode `yaml:"sig"`
	Predicates      []string `yaml:"predicates"`
	Trait           string   `yaml:"trait"`
	Impl            string   `yaml:"impl"`
	ImplTrait       string   `yaml:"impl_trait"`
	DiagnosticItems []string `yaml:"diagnostic_items"`
}

type ParamNode struct {
	Name  string   `yaml:"name"`
	Mut   bool     `yaml:"mut"`
	Attrs []string `yaml:"attrs"`
}

type BlockNode struct {
	Stmts  []*ExprNode `yaml:"stmts"`
	Tail   *ExprNode   `yaml:"tail"`
	Unsafe bool        `yaml:"unsafe"`
}

type BodyNode struct {
	BlockNode `yaml:",inline"`
	Generator bool `yaml:"generator"`
}

type SelfGenericsNode struct {
	Impl     string   `yaml:"impl"`
	Generics []string `yaml:"generics"`
}

// ItemNode is one declaration. Kind is fn, const or foreign.
type ItemNode struct {
	Kind         string            `yaml:"kind"`
	ID           string            `yaml:"id"`
	Line         int               `yaml:"line"`
	Attrs        []string          `yaml:"attrs"`
	Generics     []string          `yaml:"generics"`
	SelfGenerics *SelfGenericsNode `yaml:"self_generics"`
	Method       string            `yaml:"method"`
	ImplicitSelf string            `yaml:"self"`
	Params       []ParamNode       `yaml:"params"`
	Body         *BodyNode         `yaml:"body"`
	Ty           string            `yaml:"ty"`
}

type ClosureParamNode struct {
	Name string `yaml:"name"`
	Ty   string `yaml:"ty"`
}

// ExprNode is an expression. A bare scalar is opaque source text.
type ExprNode struct {
	Text     string             `yaml:"text"`
	Path     string             `yaml:"path"`
	Lit      string             `yaml:"lit"`
	Call     string             `yaml:"call"`
	Method   string             `yaml:"method"`
	Receiver *ExprNode          `yaml:"receiver"`
	Res      string             `yaml:"res"`
	Args     []*ExprNode        `yaml:"args"`
	Block    *BlockNode         `yaml:"block"`
	Closure  []ClosureParamNode `yaml:"closure"`
	Body     *ExprNode          `yaml:"body"`
}

func (e *ExprNode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Text = node.Value
		return nil
	}
	type plain ExprNode
	var p plain
	if err := node.Decode(&p); err != nil {
		return errors.Wrapf(err, "expression at line %d", node.Line)
	}
	*e = ExprNode(p)
	return nil
}

func ParseProgram(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "Unmarshal")
	}
	return &p, nil
}
