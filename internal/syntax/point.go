// Package syntax defines the tree contracts treeprobe consumes from the parsing
// engine and the canonical conversion between byte offsets and row/column points.
package syntax

import "fmt"

// Point is a zero-based row/column position.
// Row counts newlines; Column counts bytes since the last newline.
type Point struct {
	Row    int
	Column int
}

// String renders the point the way tree ranges are printed: [row, column].
func (p Point) String() string {
	return fmt.Sprintf("[%d, %d]", p.Row, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Row < other.Row:
		return -1
	case p.Row > other.Row:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// advance moves p past one byte of source.
func (p Point) advance(b byte) Point {
	if b == '\n' {
		return Point{Row: p.Row + 1}
	}
	return Point{Row: p.Row, Column: p.Column + 1}
}

// OffsetForPoint returns the offset of the first byte whose resulting position
// lies strictly after target, or len(source) if target is never passed.
func OffsetForPoint(source []byte, target Point) int {
	var current Point
	for i, b := range source {
		current = current.advance(b)
		if current.After(target) {
			return i
		}
	}
	return len(source)
}

// PointForOffset returns the position reached after consuming source[:offset].
// offset must not exceed len(source).
func PointForOffset(source []byte, offset int) Point {
	var result Point
	for _, b := range source[:offset] {
		result = result.advance(b)
	}
	return result
}
