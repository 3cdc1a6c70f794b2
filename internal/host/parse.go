package host

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

var primNames = map[string]bool{
	"bool": true, "str": true, "char": true, "int": true, "nat": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"f32": true, "f64": true,
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLifetime
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_' || rs[j] == '^') {
				j++
			}
			if j == i+1 {
				return nil, errors.Errorf("bad lifetime at %d in %q", i, src)
			}
			toks = append(toks, token{tokLifetime, string(rs[i:j])})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(rs[i:j])})
			i = j
		default:
			two := ""
			if i+1 < len(rs) {
				two = string(rs[i : i+2])
			}
			switch two {
			case "::", "->", "==":
				toks = append(toks, token{tokPunct, two})
				i += 2
				continue
			}
			if !strings.ContainsRune("&*(),<>:+", r) {
				return nil, errors.Errorf("unexpected %q in %q", r, src)
			}
			toks = append(toks, token{tokPunct, string(r)})
			i++
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

type parser struct {
	src      string
	toks     []token
	pos      int
	generics map[string]bool
}

func newParser(src string, generics []string) (*parser, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, generics: make(map[string]bool)}
	for _, g := range generics {
		p.generics[g] = true
	}
	return p, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(text string) bool {
	if t := p.peek(); t.kind != tokEOF && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return errors.Errorf("expected %q at %q in %q", text, p.peek().text, p.src)
	}
	return nil
}

func (p *parser) done() error {
	if p.peek().kind != tokEOF {
		return errors.Errorf("trailing %q in %q", p.peek().text, p.src)
	}
	return nil
}

// ParseTy parses a host type such as "&'a mut builtin::Tracked<Vec<T>>".
// Single identifiers listed in generics are type parameters.
func ParseTy(src string, generics []string) (Ty, error) {
	p, err := newParser(src, generics)
	if err != nil {
		return nil, err
	}
	ty, err := p.ty()
	if err != nil {
		return nil, err
	}
	return ty, p.done()
}

func (p *parser) ty() (Ty, error) {
	switch {
	case p.accept("&"):
		ref := TyRef{}
		if p.peek().kind == tokLifetime {
			ref.Region = p.next().text
		}
		ref.Mut = p.accept("mut")
		inner, err := p.ty()
		if err != nil {
			return nil, err
		}
		ref.Inner = inner
		return ref, nil
	case p.accept("*"):
		ptr := TyRawPtr{}
		if p.accept("mut") {
			ptr.Mut = true
		} else if err := p.expect("const"); err != nil {
			return nil, err
		}
		inner, err := p.ty()
		if err != nil {
			return nil, err
		}
		ptr.Inner = inner
		return ptr, nil
	case p.accept("("):
		elems, err := p.tyList(")")
		if err != nil {
			return nil, err
		}
		return TyTuple{Elems: elems}, nil
	case p.peek().text == "fn" && p.peek().kind == tokIdent:
		p.next()
		if err := p.expect("("); err != nil {
			return nil, err
		}
		inputs, err := p.tyList(")")
		if err != nil {
			return nil, err
		}
		fp := TyFnPtr{Inputs: inputs, Output: Unit()}
		if p.accept("->") {
			if fp.Output, err = p.ty(); err != nil {
				return nil, err
			}
		}
		return fp, nil
	}
	path, err := p.path()
	if err != nil {
		return nil, err
	}
	var args []Ty
	if p.accept("<") {
		if args, err = p.tyList(">"); err != nil {
			return nil, err
		}
	}
	if !strings.Contains(path, "::") && args == nil {
		if p.generics[path] {
			return TyParam{Name: path}, nil
		}
		if primNames[path] {
			return TyPrim{Name: path}, nil
		}
	}
	return TyAdt{Def: DefID(path), Args: args}, nil
}

func (p *parser) path() (string, error) {
	t := p.next()
	if t.kind != tokIdent {
		return "", errors.Errorf("expected a path at %q in %q", t.text, p.src)
	}
	segs := []string{t.text}
	for p.accept("::") {
		t = p.next()
		if t.kind != tokIdent {
			return "", errors.Errorf("expected a path segment at %q in %q", t.text, p.src)
		}
		segs = append(segs, t.text)
	}
	return strings.Join(segs, "::"), nil
}

// tyList parses "a, b, c" up to and including the closing token.
func (p *parser) tyList(closing string) ([]Ty, error) {
	tys := []Ty{}
	for !p.accept(closing) {
		if len(tys) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
			if p.accept(closing) {
				break
			}
		}
		ty, err := p.ty()
		if err != nil {
			return nil, err
		}
		tys = append(tys, ty)
	}
	return tys, nil
}

// ParsePredicate parses a where-clause:
//
//	T: core::clone::Clone
//	for<'a> F: core::ops::Fn<(&'a u8,)>
//	<T as core::iter::Iterator>::Item == u8
//	T: 'a
//	'a: 'b
func ParsePredicate(src string, generics []string) (Predicate, error) {
	p, err := newParser(src, generics)
	if err != nil {
		return Predicate{}, err
	}
	var pred Predicate
	if p.peek().kind == tokIdent && p.peek().text == "for" {
		p.next()
		if err := p.expect("<"); err != nil {
			return pred, err
		}
		for !p.accept(">") {
			if len(pred.BoundVars) > 0 {
				if err := p.expect(","); err != nil {
					return pred, err
				}
			}
			t := p.next()
			if t.kind != tokLifetime {
				return pred, errors.Errorf("expected a lifetime binder in %q", src)
			}
			pred.BoundVars = append(pred.BoundVars, t.text)
		}
	}
	switch {
	case p.peek().kind == tokLifetime:
		pred.Kind = PredRegionOutlives
		pred.Region = p.next().text
		if err := p.expect(":"); err != nil {
			return pred, err
		}
		t := p.next()
		if t.kind != tokLifetime {
			return pred, errors.Errorf("expected a lifetime in %q", src)
		}
		pred.Bound = t.text
	case p.accept("<"):
		pred.Kind = PredProjection
		if pred.Self, err = p.ty(); err != nil {
			return pred, err
		}
		if err := p.expect("as"); err != nil {
			return pred, err
		}
		if err := p.traitRef(&pred); err != nil {
			return pred, err
		}
		if err := p.expect(">"); err != nil {
			return pred, err
		}
		if err := p.expect("::"); err != nil {
			return pred, err
		}
		t := p.next()
		if t.kind != tokIdent {
			return pred, errors.Errorf("expected an associated item in %q", src)
		}
		pred.Item = t.text
		if err := p.expect("=="); err != nil {
			return pred, err
		}
		if pred.Term, err = p.ty(); err != nil {
			return pred, err
		}
	default:
		if pred.Self, err = p.ty(); err != nil {
			return pred, err
		}
		if err := p.expect(":"); err != nil {
			return pred, err
		}
		if p.peek().kind == tokLifetime {
			pred.Kind = PredTypeOutlives
			pred.Region = p.next().text
		} else {
			pred.Kind = PredTrait
			if err := p.traitRef(&pred); err != nil {
				return pred, err
			}
		}
	}
	return pred, p.done()
}

func (p *parser) traitRef(pred *Predicate) error {
	path, err := p.path()
	if err != nil {
		return err
	}
	pred.Trait = DefID(path)
	if p.accept("<") {
		if pred.Args, err = p.tyList(">"); err != nil {
			return err
		}
	}
	return nil
}
