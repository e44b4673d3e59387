package render

import (
	"fmt"
	"io"
	"strings"

	"treeprobe/internal/logging"
	"treeprobe/internal/syntax"
)

// Walker drives a Strategy over a tree with an explicit descend/ascend state
// machine, so deep trees cost cursor moves rather than call stack.
type Walker struct {
	out      io.Writer
	strategy Strategy
	showAll  bool
	line     strings.Builder
}

// NewWalker returns a walker writing strategy output to out. Anonymous nodes are
// skipped unless ShowAll is set.
func NewWalker(out io.Writer, strategy Strategy) *Walker {
	return &Walker{out: out, strategy: strategy}
}

// ShowAll makes anonymous nodes emit events too.
func (w *Walker) ShowAll(flag bool) *Walker {
	w.showAll = flag
	return w
}

// Walk traverses from the cursor's current node to the end of its subtree.
// Output is written a line at a time and terminated with a newline.
func (w *Walker) Walk(cursor syntax.Cursor) error {
	depth := 0
	descending := true
	emitted := 0

	for {
		node := cursor.Node()
		step := Step{Node: node, FieldName: cursor.FieldName(), Depth: depth}
		qualifies := node.IsNamed() || w.showAll

		if descending {
			if qualifies {
				if emitted > 0 {
					step.Kind = StepLineFeed
					if err := w.combine(step); err != nil {
						return err
					}
					if err := w.flush(); err != nil {
						return err
					}
				}
				emitted++
				step.Kind = StepEnter
				if err := w.combine(step); err != nil {
					return err
				}
			}
			if cursor.GotoFirstChild() {
				depth++
			} else {
				descending = false
			}
			continue
		}

		if qualifies {
			step.Kind = StepLeave
			if err := w.combine(step); err != nil {
				return err
			}
		}
		if cursor.GotoNextSibling() {
			descending = true
		} else if cursor.GotoParent() {
			depth--
		} else {
			break
		}
	}

	if err := w.flush(); err != nil {
		return err
	}
	if _, err := io.WriteString(w.out, "\n"); err != nil {
		return err
	}
	logging.RenderDebug("walked tree, %d nodes emitted", emitted)
	return nil
}

func (w *Walker) combine(step Step) error {
	fragment, err := w.strategy.RenderStep(step)
	if err != nil {
		return fmt.Errorf("render %s %s: %w", step.Kind, step.Node.Kind(), err)
	}
	w.line.WriteString(fragment)
	return nil
}

func (w *Walker) flush() error {
	if w.line.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(w.out, w.line.String())
	w.line.Reset()
	return err
}

// Render walks tree once with strategy and returns the complete output.
func Render(tree syntax.Tree, strategy Strategy, showAll bool) (string, error) {
	cursor := tree.Walk()
	if c, ok := cursor.(interface{ Close() }); ok {
		defer c.Close()
	}

	var out strings.Builder
	if err := NewWalker(&out, strategy).ShowAll(showAll).Walk(cursor); err != nil {
		return "", err
	}
	return out.String(), nil
}
