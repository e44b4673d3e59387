package render

import (
	"fmt"

	"treeprobe/internal/syntax"
)

// Ranges renders the tree as an s-expression annotated with point ranges:
//
//	(binary_expression [0, 0] - [0, 2]
//	  left: (number [0, 0] - [0, 1])
//	  right: (MISSING identifier [0, 2] - [0, 2])))
type Ranges struct{}

func (Ranges) RenderStep(step Step) (string, error) {
	switch step.Kind {
	case StepLineFeed:
		return "\n", nil
	case StepEnter:
		n := step.Node
		return fmt.Sprintf("%s%s(%s %s - %s", indent(step.Depth), fieldPrefix(step.FieldName),
			kindLabel(n), n.StartPoint(), n.EndPoint()), nil
	case StepLeave:
		return ")", nil
	}
	return "", nil
}

// kindLabel marks nodes the parser inserted during error recovery.
func kindLabel(n syntax.Node) string {
	if n.IsMissing() {
		return "MISSING " + n.Kind()
	}
	return n.Kind()
}
