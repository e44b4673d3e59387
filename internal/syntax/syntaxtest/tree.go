// Package syntaxtest provides an in-memory implementation of the syntax tree
// contracts for tests that should not depend on a compiled grammar.
package syntaxtest

import (
	"treeprobe/internal/syntax"
)

// Node is a hand-built tree node. Build trees with Named and Anon, then hand the
// root to NewTree which fills in points, parents and error flags.
type Node struct {
	kind     string
	named    bool
	isError  bool
	missing  bool
	hasError bool
	damaged  bool
	field    string
	start    int
	end      int
	startPt  syntax.Point
	endPt    syntax.Point
	parent   *Node
	index    int
	children []*Node
}

// Named builds a named node spanning source[start:end].
func Named(kind string, start, end int, children ...*Node) *Node {
	return &Node{kind: kind, named: true, start: start, end: end, children: children}
}

// Anon builds an anonymous (punctuation/keyword) leaf spanning source[start:end].
func Anon(kind string, start, end int) *Node {
	return &Node{kind: kind, start: start, end: end}
}

// Error builds an ERROR node.
func Error(start, end int, children ...*Node) *Node {
	n := Named("ERROR", start, end, children...)
	n.isError = true
	return n
}

// Missing builds a zero-width node the engine would insert during recovery.
func Missing(kind string, named bool, at int) *Node {
	return &Node{kind: kind, named: named, missing: true, start: at, end: at}
}

// Damaged makes the node report an error in its subtree without being an error
// or missing node itself and without any child carrying one, the way engine
// nodes whose recovery cost came from discarded input do.
func (n *Node) Damaged() *Node {
	n.damaged = true
	return n
}

// Field sets the grammar field the node occupies in its parent.
func (n *Node) Field(name string) *Node {
	n.field = name
	return n
}

func (n *Node) Kind() string             { return n.kind }
func (n *Node) IsNamed() bool            { return n.named }
func (n *Node) IsError() bool            { return n.isError }
func (n *Node) IsMissing() bool          { return n.missing }
func (n *Node) HasError() bool           { return n.hasError }
func (n *Node) StartByte() int           { return n.start }
func (n *Node) EndByte() int             { return n.end }
func (n *Node) StartPoint() syntax.Point { return n.startPt }
func (n *Node) EndPoint() syntax.Point   { return n.endPt }
func (n *Node) ChildCount() int          { return len(n.children) }
func (n *Node) FieldName() string        { return n.field }
func (n *Node) Children() []*Node        { return n.children }

// NamedChildCount counts the named children.
func (n *Node) NamedChildCount() int {
	count := 0
	for _, c := range n.children {
		if c.named {
			count++
		}
	}
	return count
}

// Child returns nil when i is out of range.
func (n *Node) Child(i int) syntax.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Tree is an in-memory syntax.Tree that records the edits it receives.
type Tree struct {
	root  *Node
	Edits []syntax.EditInput
}

// NewTree links root and computes every node's points against source.
func NewTree(source []byte, root *Node) *Tree {
	link(source, root, nil, 0)
	return &Tree{root: root}
}

func link(source []byte, n, parent *Node, index int) bool {
	n.parent = parent
	n.index = index
	n.startPt = syntax.PointForOffset(source, n.start)
	n.endPt = syntax.PointForOffset(source, n.end)
	n.hasError = n.isError || n.missing || n.damaged
	for i, c := range n.children {
		if link(source, c, n, i) {
			n.hasError = true
		}
	}
	return n.hasError
}

func (t *Tree) Root() syntax.Node   { return t.root }
func (t *Tree) RootNode() *Node     { return t.root }
func (t *Tree) Walk() syntax.Cursor { return NewCursor(t.root) }

// Edit records e. Node ranges are left untouched.
func (t *Tree) Edit(e syntax.EditInput) {
	t.Edits = append(t.Edits, e)
}

// Cursor walks a Node tree without recursion.
type Cursor struct {
	root    *Node
	current *Node
	// Moves counts successful navigation calls.
	Moves int
}

// NewCursor returns a cursor positioned on n. GotoParent never climbs above n.
func NewCursor(n *Node) *Cursor {
	return &Cursor{root: n, current: n}
}

func (c *Cursor) Node() syntax.Node { return c.current }

func (c *Cursor) FieldName() string {
	if c.current == c.root {
		return ""
	}
	return c.current.field
}

func (c *Cursor) GotoFirstChild() bool {
	if len(c.current.children) == 0 {
		return false
	}
	c.current = c.current.children[0]
	c.Moves++
	return true
}

func (c *Cursor) GotoNextSibling() bool {
	if c.current == c.root || c.current.parent == nil {
		return false
	}
	siblings := c.current.parent.children
	if c.current.index+1 >= len(siblings) {
		return false
	}
	c.current = siblings[c.current.index+1]
	c.Moves++
	return true
}

func (c *Cursor) GotoParent() bool {
	if c.current == c.root || c.current.parent == nil {
		return false
	}
	c.current = c.current.parent
	c.Moves++
	return true
}

// Reset moves the cursor onto n, which becomes the new root of the walk.
func (c *Cursor) Reset(n syntax.Node) {
	if node, ok := n.(*Node); ok {
		c.root = node
		c.current = node
	}
}

// Chain builds a left-nested chain of depth binary nodes over a source like
// "1+1+1...", the shape that makes recursive walkers overflow.
func Chain(depth int) (source []byte, root *Node) {
	source = []byte("1")
	expr := Named("number", 0, 1)
	for i := 0; i < depth; i++ {
		end := len(source) + 2
		source = append(source, '+', '1')
		expr = Named("binary_expression", 0, end,
			expr.Field("left"),
			Anon("+", end-2, end-1).Field("operator"),
			Named("number", end-1, end).Field("right"),
		)
	}
	return source, Named("program", 0, len(source), expr)
}
