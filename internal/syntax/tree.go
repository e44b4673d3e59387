package syntax

import "fmt"

// Node is a read-only view of one element of a parse tree.
type Node interface {
	Kind() string
	IsNamed() bool
	IsError() bool
	IsMissing() bool
	// HasError reports whether the node or any descendant is an error or missing node.
	HasError() bool
	StartByte() int
	EndByte() int
	StartPoint() Point
	EndPoint() Point
	ChildCount() int
	NamedChildCount() int
	// Child returns nil when i is out of range.
	Child(i int) Node
}

// Cursor is a movable reference into a tree.
//
// A failed GotoFirstChild leaves the cursor where it was. GotoParent fails only
// at the node the cursor was created or reset on.
type Cursor interface {
	Node() Node
	// FieldName is the grammar field of the current node relative to its parent,
	// or "" when it has none.
	FieldName() string
	GotoFirstChild() bool
	GotoNextSibling() bool
	GotoParent() bool
	Reset(n Node)
}

// Tree is a parse tree whose edit bookkeeping can be advanced in place.
type Tree interface {
	Root() Node
	Walk() Cursor
	// Edit relocates node ranges for a textual edit. It never re-parses.
	Edit(e EditInput)
}

// EditInput describes one textual edit in both byte and point coordinates.
// StartPoint and OldEndPoint are measured before the buffer is mutated,
// NewEndPoint after.
type EditInput struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

func (e EditInput) String() string {
	return fmt.Sprintf("edit bytes %d..%d -> %d..%d, points %s..%s -> %s..%s",
		e.StartByte, e.OldEndByte, e.StartByte, e.NewEndByte,
		e.StartPoint, e.OldEndPoint, e.StartPoint, e.NewEndPoint)
}

