package edit

import (
	"errors"
	"fmt"

	"treeprobe/internal/logging"
	"treeprobe/internal/syntax"
)

// ErrEditOutOfRange is returned when an edit addresses bytes past the end of
// the buffer. Neither the buffer nor the tree is touched in that case.
var ErrEditOutOfRange = errors.New("edit out of range")

// Apply splices e into *source and informs tree of the change. Start and old-end
// points are measured before the splice, the new-end point after it. The tree's
// node ranges are stale until the caller re-parses.
func Apply(tree syntax.Tree, source *[]byte, e Edit) (syntax.EditInput, error) {
	buf := *source
	startByte := e.Position
	oldEndByte := e.Position + e.DeletedLength
	newEndByte := e.Position + len(e.InsertedText)
	if startByte < 0 || e.DeletedLength < 0 || oldEndByte > len(buf) {
		return syntax.EditInput{}, fmt.Errorf("%w: %s on %d-byte buffer", ErrEditOutOfRange, e, len(buf))
	}

	input := syntax.EditInput{
		StartByte:   startByte,
		OldEndByte:  oldEndByte,
		NewEndByte:  newEndByte,
		StartPoint:  syntax.PointForOffset(buf, startByte),
		OldEndPoint: syntax.PointForOffset(buf, oldEndByte),
	}

	spliced := make([]byte, 0, len(buf)-e.DeletedLength+len(e.InsertedText))
	spliced = append(spliced, buf[:startByte]...)
	spliced = append(spliced, e.InsertedText...)
	spliced = append(spliced, buf[oldEndByte:]...)
	*source = spliced

	input.NewEndPoint = syntax.PointForOffset(spliced, newEndByte)
	tree.Edit(input)

	logging.EditDebug("applied %s", input)
	return input, nil
}

// ApplySpecs parses and applies each spec in order. Every spec is read against
// the buffer as left by the previous edits. reparse is called after each edit
// and returns the tree the next edit should be applied to.
func ApplySpecs(tree syntax.Tree, source *[]byte, specs []string, reparse func(syntax.Tree) (syntax.Tree, error)) (syntax.Tree, []syntax.EditInput, error) {
	applied := make([]syntax.EditInput, 0, len(specs))
	for i, spec := range specs {
		e, err := Parse(spec, *source)
		if err != nil {
			return tree, applied, err
		}
		input, err := Apply(tree, source, e)
		if err != nil {
			return tree, applied, fmt.Errorf("edit %d: %w", i, err)
		}
		applied = append(applied, input)
		if reparse != nil {
			next, err := reparse(tree)
			if err != nil {
				return tree, applied, fmt.Errorf("re-parse after edit %d: %w", i, err)
			}
			tree = next
		}
	}
	return tree, applied, nil
}
