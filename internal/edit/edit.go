// Package edit turns textual edit specs into edits and applies them to a source
// buffer and its parse tree together.
package edit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"treeprobe/internal/logging"
	"treeprobe/internal/syntax"
)

// EndOfBuffer is the position token that addresses the end of the buffer.
const EndOfBuffer = "$"

// ErrMalformedSpec is matched by every *MalformedSpecError.
var ErrMalformedSpec = errors.New("malformed edit spec")

// MalformedSpecError reports an edit spec that does not have the
// "<POSITION> <DELETED_LENGTH> <INSERTED_TEXT>" shape.
type MalformedSpecError struct {
	Spec   string
	Reason string
}

func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf("invalid edit string '%s' (%s). Edit strings must match the pattern '<START_BYTE_OR_POSITION> <REMOVED_LENGTH> <NEW_TEXT>'", e.Spec, e.Reason)
}

func (e *MalformedSpecError) Is(target error) bool {
	return target == ErrMalformedSpec
}

// Edit replaces DeletedLength bytes at Position with InsertedText.
type Edit struct {
	Position      int
	DeletedLength int
	InsertedText  []byte
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.DeletedLength == 0:
		return fmt.Sprintf("Insert(%d, %q)", e.Position, e.InsertedText)
	case len(e.InsertedText) == 0:
		return fmt.Sprintf("Delete(%d, %d)", e.Position, e.DeletedLength)
	}
	return fmt.Sprintf("Replace(%d, %d, %q)", e.Position, e.DeletedLength, e.InsertedText)
}

// Parse reads spec against the current contents of source. Fields are separated
// by single spaces; everything after the second field, rejoined with single
// spaces, is the inserted text. The position is "$", a byte offset, or a
// "row,column" pair. Parse never mutates source.
func Parse(spec string, source []byte) (Edit, error) {
	malformed := func(reason string) error {
		return &MalformedSpecError{Spec: spec, Reason: reason}
	}

	parts := strings.Split(spec, " ")
	if len(parts) < 2 {
		return Edit{}, malformed("expected at least position and deleted length")
	}

	var position int
	switch field := parts[0]; {
	case field == EndOfBuffer:
		position = len(source)
	case strings.Contains(field, ","):
		coords := strings.Split(field, ",")
		row, err := parseCount(coords[0])
		if err != nil {
			return Edit{}, malformed("bad row")
		}
		column, err := parseCount(coords[1])
		if err != nil {
			return Edit{}, malformed("bad column")
		}
		position = syntax.OffsetForPoint(source, syntax.Point{Row: row, Column: column})
	default:
		offset, err := parseCount(field)
		if err != nil {
			return Edit{}, malformed("bad position")
		}
		position = offset
	}

	deleted, err := parseCount(parts[1])
	if err != nil {
		return Edit{}, malformed("bad deleted length")
	}

	e := Edit{
		Position:      position,
		DeletedLength: deleted,
		InsertedText:  []byte(strings.Join(parts[2:], " ")),
	}
	logging.EditDebug("parsed edit spec %q as %s", spec, e)
	return e, nil
}

// parseCount accepts only plain non-negative decimal integers.
func parseCount(s string) (int, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseUint(s, 10, strconv.IntSize-1)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
