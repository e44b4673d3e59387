// Package render walks parse trees iteratively and turns the walk into text
// through pluggable strategies.
package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"treeprobe/internal/syntax"
)

// StepKind identifies a traversal event.
type StepKind int

const (
	// StepLineFeed precedes every Enter except the first; its Node is the node
	// about to be entered.
	StepLineFeed StepKind = iota
	StepEnter
	StepLeave
)

func (k StepKind) String() string {
	switch k {
	case StepLineFeed:
		return "linefeed"
	case StepEnter:
		return "enter"
	case StepLeave:
		return "leave"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one traversal event. Depth counts every level below the root,
// including levels whose nodes were not emitted.
type Step struct {
	Kind      StepKind
	Node      syntax.Node
	FieldName string
	Depth     int
}

// Strategy turns traversal events into output fragments.
type Strategy interface {
	RenderStep(step Step) (string, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(step Step) (string, error)

func (f StrategyFunc) RenderStep(step Step) (string, error) { return f(step) }

// ErrInvalidSpan is matched by every *SpanError.
var ErrInvalidSpan = errors.New("invalid source span")

// SpanError reports a node whose byte range cannot be read from the source
// buffer. It means the tree and buffer disagree.
type SpanError struct {
	Kind   string
	Start  int
	End    int
	Len    int
	Reason string
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%s: %s node spans bytes %d..%d of %d-byte source: %s", ErrInvalidSpan, e.Kind, e.Start, e.End, e.Len, e.Reason)
}

func (e *SpanError) Is(target error) bool {
	return target == ErrInvalidSpan
}

// nodeText returns the UTF-8 source text covered by n.
func nodeText(source []byte, n syntax.Node) (string, error) {
	start, end := n.StartByte(), n.EndByte()
	if start < 0 || start > end || end > len(source) {
		return "", &SpanError{Kind: n.Kind(), Start: start, End: end, Len: len(source), Reason: "out of range"}
	}
	text := source[start:end]
	if !utf8.Valid(text) {
		return "", &SpanError{Kind: n.Kind(), Start: start, End: end, Len: len(source), Reason: "not valid UTF-8"}
	}
	return string(text), nil
}

func indent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat("  ", depth)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
