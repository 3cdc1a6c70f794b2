package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Printer writes diagnostics, colouring them only when the sink is a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{w: w, color: color}
}

func (p *Printer) Print(err error) {
	var text string
	if de, ok := AsError(err); ok {
		text = de.String()
	} else {
		text = Colour(31, fmt.Sprintf("error: %v\n", err))
	}
	if !p.color {
		text = pterm.RemoveColorFromString(text)
	}
	fmt.Fprint(p.w, text)
}
