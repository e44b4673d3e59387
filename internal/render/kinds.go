package render

// Kinds renders one node kind per line, indented by depth, with its field name
// when it has one. It prints nothing when leaving a node.
type Kinds struct{}

func (Kinds) RenderStep(step Step) (string, error) {
	switch step.Kind {
	case StepLineFeed:
		return "\n", nil
	case StepEnter:
		return indent(step.Depth) + fieldPrefix(step.FieldName) + step.Node.Kind(), nil
	}
	return "", nil
}

func fieldPrefix(name string) string {
	if name == "" {
		return ""
	}
	return name + ": "
}
