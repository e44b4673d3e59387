// Package diagnose locates a representative parse error in a tree.
package diagnose

import (
	"fmt"
	"strings"

	"treeprobe/internal/syntax"
)

// FirstError scans from the cursor's current node for an error or missing node.
//
// While the current node has an error somewhere below it, the scan stops on it if
// it is itself an error or missing node and otherwise moves to its first child.
// A clean node hands over to its next sibling. The scan never returns to a
// parent, so an error that is only reachable through a later sibling of an
// ancestor is not reported. Callers rely on that for stable diagnostics.
func FirstError(cursor syntax.Cursor) syntax.Node {
	for {
		node := cursor.Node()
		if node.HasError() {
			if node.IsError() || node.IsMissing() {
				return node
			}
			if !cursor.GotoFirstChild() {
				return nil
			}
		} else if !cursor.GotoNextSibling() {
			return nil
		}
	}
}

// FindFirstError runs FirstError from the root of tree.
func FindFirstError(tree syntax.Tree) syntax.Node {
	cursor := tree.Walk()
	if c, ok := cursor.(interface{ Close() }); ok {
		defer c.Close()
	}
	return FirstError(cursor)
}

// Describe formats an error node for a summary line, e.g.
// `MISSING identifier [0, 2] - [0, 2]` or `ERROR [3, 0] - [3, 7]`.
func Describe(n syntax.Node) string {
	var label string
	switch {
	case n.IsMissing() && n.IsNamed():
		label = "MISSING " + n.Kind()
	case n.IsMissing():
		label = `MISSING "` + strings.ReplaceAll(n.Kind(), "\n", `\n`) + `"`
	default:
		label = n.Kind()
	}
	return fmt.Sprintf("%s %s - %s", label, n.StartPoint(), n.EndPoint())
}
