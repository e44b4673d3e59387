package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// errorKind is the kind tree-sitter gives to nodes it could not fit into the grammar.
const errorKind = "ERROR"

// SitterTree adapts a tree-sitter tree to the Tree contract.
type SitterTree struct {
	tree *sitter.Tree
}

// NewSitterTree wraps t. The caller keeps ownership of t until Close is called.
func NewSitterTree(t *sitter.Tree) *SitterTree {
	return &SitterTree{tree: t}
}

// Raw exposes the engine tree for incremental re-parsing.
func (t *SitterTree) Raw() *sitter.Tree {
	return t.tree
}

// Root returns the root node.
func (t *SitterTree) Root() Node {
	return wrapNode(t.tree.RootNode())
}

// Walk returns a cursor positioned on the root node.
func (t *SitterTree) Walk() Cursor {
	return &sitterCursor{cursor: sitter.NewTreeCursor(t.tree.RootNode())}
}

// Edit forwards the descriptor to the engine's edit tracking.
func (t *SitterTree) Edit(e EditInput) {
	t.tree.Edit(sitter.EditInput{
		StartIndex:  uint32(e.StartByte),
		OldEndIndex: uint32(e.OldEndByte),
		NewEndIndex: uint32(e.NewEndByte),
		StartPoint:  toSitterPoint(e.StartPoint),
		OldEndPoint: toSitterPoint(e.OldEndPoint),
		NewEndPoint: toSitterPoint(e.NewEndPoint),
	})
}

// Close releases the engine tree.
func (t *SitterTree) Close() {
	t.tree.Close()
}

func toSitterPoint(p Point) sitter.Point {
	return sitter.Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

func fromSitterPoint(p sitter.Point) Point {
	return Point{Row: int(p.Row), Column: int(p.Column)}
}

type sitterNode struct {
	node *sitter.Node
}

// wrapNode returns nil for absent nodes so callers can compare against nil.
func wrapNode(n *sitter.Node) Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return sitterNode{node: n}
}

func (n sitterNode) Kind() string         { return n.node.Type() }
func (n sitterNode) IsNamed() bool        { return n.node.IsNamed() }
func (n sitterNode) IsError() bool        { return n.node.Type() == errorKind && !n.node.IsMissing() }
func (n sitterNode) IsMissing() bool      { return n.node.IsMissing() }
func (n sitterNode) HasError() bool       { return n.node.HasError() }
func (n sitterNode) StartByte() int       { return int(n.node.StartByte()) }
func (n sitterNode) EndByte() int         { return int(n.node.EndByte()) }
func (n sitterNode) StartPoint() Point    { return fromSitterPoint(n.node.StartPoint()) }
func (n sitterNode) EndPoint() Point      { return fromSitterPoint(n.node.EndPoint()) }
func (n sitterNode) ChildCount() int      { return int(n.node.ChildCount()) }
func (n sitterNode) NamedChildCount() int { return int(n.node.NamedChildCount()) }

func (n sitterNode) Child(i int) Node {
	if i < 0 || i >= n.ChildCount() {
		return nil
	}
	return wrapNode(n.node.Child(i))
}

type sitterCursor struct {
	cursor *sitter.TreeCursor
}

func (c *sitterCursor) Node() Node            { return wrapNode(c.cursor.CurrentNode()) }
func (c *sitterCursor) FieldName() string     { return c.cursor.CurrentFieldName() }
func (c *sitterCursor) GotoFirstChild() bool  { return c.cursor.GoToFirstChild() }
func (c *sitterCursor) GotoNextSibling() bool { return c.cursor.GoToNextSibling() }
func (c *sitterCursor) GotoParent() bool      { return c.cursor.GoToParent() }
func (c *sitterCursor) Close()                { c.cursor.Close() }

// Reset moves the cursor onto n, which must come from a SitterTree.
func (c *sitterCursor) Reset(n Node) {
	if sn, ok := n.(sitterNode); ok {
		c.cursor.Reset(sn.node)
	}
}
