package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// rangeColumn is where node kinds start at depth zero in annotated output.
const rangeColumn = 14

// Palette holds the styles of the annotated renderer.
type Palette struct {
	Line        lipgloss.Style // range of a node that starts a new source row
	Field       lipgloss.Style
	Comment     lipgloss.Style // inline source text
	Nonterminal lipgloss.Style
	Terminal    lipgloss.Style // quoted anonymous kinds
}

// NewPalette builds the palette for a terminal color profile. termenv.Ascii
// yields plain text.
func NewPalette(profile termenv.Profile) Palette {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	style := func(hex string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(hex)).TabWidth(lipgloss.NoTabConversion)
	}
	return Palette{
		Line:        style("#7AD18F"),
		Field:       style("#B1DCFD"),
		Comment:     style("#767676"),
		Nonterminal: style("#75BBFD"),
		Terminal:    style("#DBDBAD"),
	}
}

// Annotated renders one line per node: the node's point range, then the kind
// indented by depth, then for single-row named nodes without named children
// the source text they cover.
type Annotated struct {
	palette        Palette
	source         []byte
	quoteAnonymous bool
	lastRow        int
}

// NewAnnotated returns an annotated renderer. source may be nil, in which case
// no inline text is shown.
func NewAnnotated(palette Palette, source []byte) *Annotated {
	return &Annotated{palette: palette, source: source, lastRow: -1}
}

// QuoteAnonymous renders anonymous kinds as escaped string literals.
func (a *Annotated) QuoteAnonymous(flag bool) *Annotated {
	a.quoteAnonymous = flag
	return a
}

func (a *Annotated) RenderStep(step Step) (string, error) {
	switch step.Kind {
	case StepLineFeed:
		return "\n", nil
	case StepEnter:
		return a.enter(step)
	}
	return "", nil
}

func (a *Annotated) enter(step Step) (string, error) {
	n := step.Node
	start, end := n.StartPoint(), n.EndPoint()

	numRange := fmt.Sprintf("%d:%-2d - %d:%-2d ", start.Row, start.Column, end.Row, end.Column)
	pad := step.Depth*2 + rangeColumn - len(numRange)

	var out string
	if start.Row != a.lastRow {
		out = a.palette.Line.Render(numRange)
	} else {
		out = numRange
	}
	a.lastRow = start.Row
	out += spaces(pad)

	if step.FieldName != "" {
		out += a.palette.Field.Render(step.FieldName + ": ")
	}

	if a.quoteAnonymous && !n.IsNamed() {
		label := strconv.Quote(n.Kind())
		if n.IsMissing() {
			label = "MISSING " + label
		}
		out += a.palette.Terminal.Render(label)
	} else {
		out += a.palette.Nonterminal.Render(kindLabel(n))
	}

	if a.source != nil && n.IsNamed() && n.NamedChildCount() == 0 && start.Row == end.Row {
		text, err := nodeText(a.source, n)
		if err != nil {
			return "", err
		}
		out += " `" + a.palette.Comment.Render(text) + "`"
	}
	return out, nil
}
