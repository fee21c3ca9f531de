package extfn

import (
	"fmt"
	"go/token"

	"github.com/teranos/extfn/errors"
)

// Error taxonomy of a single expansion. Every failure returned by Expand is
// marked with exactly one of these, so errors.Is works through any wrapping
// the caller adds.
var (
	// ErrTargetSpec marks a malformed //extfn:target argument list.
	ErrTargetSpec = errors.New("malformed target specification")

	// ErrFunction marks input that is not a usable function declaration.
	ErrFunction = errors.New("malformed function declaration")
)

// ParseError is a diagnostic anchored at a source position.
type ParseError struct {
	Pos token.Position
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

func targetError(pos token.Position, hint, format string, args ...interface{}) error {
	err := errors.Mark(&ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}, ErrTargetSpec)
	if hint != "" {
		err = errors.WithHint(err, hint)
	}
	return err
}

func functionError(pos token.Position, hint, format string, args ...interface{}) error {
	err := errors.Mark(&ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}, ErrFunction)
	if hint != "" {
		err = errors.WithHint(err, hint)
	}
	return err
}

// advance returns base moved forward by the given byte offset on the same line.
// Directive arguments never span lines, so a column shift is enough.
func advance(base token.Position, offset int) token.Position {
	if !base.IsValid() {
		return base
	}
	base.Offset += offset
	base.Column += offset
	return base
}
