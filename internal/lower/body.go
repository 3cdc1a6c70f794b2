package lower

import (
	"vlower/internal/diag"
	"vlower/internal/host"
	"vlower/internal/vir"
)

// bodyToVir carries the statements left after the header. Unsafe blocks are
// rejected unless the body is trusted.
func bodyToVir(span diag.Span, block *host.Block, externalBody bool) (*vir.Body, error) {
	body := &vir.Body{Span: span}
	if !externalBody {
		if block.Unsafe {
			return nil, diag.Unsupported(span, "unsafe blocks")
		}
		for _, e := range block.Stmts {
			if err := checkSafe(e); err != nil {
				return nil, err
			}
		}
		if err := checkSafe(block.Tail); err != nil {
			return nil, err
		}
	}
	for _, e := range block.Stmts {
		body.Stmts = append(body.Stmts, &vir.Expr{Span: e.Span, Text: e.String()})
	}
	if block.Tail != nil {
		body.Tail = &vir.Expr{Span: block.Tail.Span, Text: block.Tail.String()}
	}
	return body, nil
}

func checkSafe(e *host.Expr) error {
	if e == nil {
		return nil
	}
	if e.Kind == host.ExprBlock {
		if e.Block.Unsafe {
			return diag.Unsupported(e.Span, "unsafe blocks")
		}
		for _, s := range e.Block.Stmts {
			if err := checkSafe(s); err != nil {
				return err
			}
		}
		return checkSafe(e.Block.Tail)
	}
	for _, sub := range []*host.Expr{e.Callee, e.Receiver, e.Body} {
		if err := checkSafe(sub); err != nil {
			return err
		}
	}
	for _, arg := range e.Args {
		if err := checkSafe(arg); err != nil {
			return err
		}
	}
	return nil
}
