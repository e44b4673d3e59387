package render

import (
	"html"
)

// Tags renders named nodes as nested markup. Nodes without named children carry
// their escaped source text. A grammar field goes in the type attribute.
// Anonymous nodes produce nothing.
type Tags struct {
	source []byte
}

// NewTags returns a markup renderer reading leaf text from source.
func NewTags(source []byte) *Tags {
	return &Tags{source: source}
}

func (t *Tags) RenderStep(step Step) (string, error) {
	n := step.Node
	if !n.IsNamed() {
		return "", nil
	}
	leaf := n.NamedChildCount() == 0

	switch step.Kind {
	case StepLineFeed:
		return "\n", nil
	case StepEnter:
		out := indent(step.Depth) + "<" + n.Kind()
		if step.FieldName != "" {
			out += ` type="` + html.EscapeString(step.FieldName) + `"`
		}
		out += ">"
		if leaf {
			text, err := nodeText(t.source, n)
			if err != nil {
				return "", err
			}
			out += html.EscapeString(text)
		}
		return out, nil
	case StepLeave:
		if leaf {
			return "</" + n.Kind() + ">", nil
		}
		return "\n" + indent(step.Depth) + "</" + n.Kind() + ">", nil
	}
	return "", nil
}
