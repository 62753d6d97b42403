package batch

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedType is matched by every *UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported data type")

	// ErrReleased is returned when a descriptor or a batch borrowing it is used
	// after release.
	ErrReleased = errors.New("descriptor already released")

	// ErrShapeMismatch is returned when a column or a foreign array does not
	// match the schema it is bound to.
	ErrShapeMismatch = errors.New("descriptor shape mismatch")
)

// UnsupportedTypeError carries the tag or type that fell outside the supported set.
type UnsupportedTypeError struct {
	Op   string
	Tag  string
	Type SQLType
	// tagged is false when the error was raised for an SQLType rather than a tag.
	tagged bool
}

func (e *UnsupportedTypeError) Error() string {
	if e.tagged {
		return "unsupported data type to " + e.Op + ": " + e.Tag
	}
	return "unsupported to convert type " + e.Type.String() + " to arrow type"
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

func unsupportedTag(op, tag string) error {
	return errors.WithStack(&UnsupportedTypeError{Op: op, Tag: tag, tagged: true})
}

func unsupportedType(op string, t SQLType) error {
	return errors.WithStack(&UnsupportedTypeError{Op: op, Type: t})
}

// assertf panics with an assertion failure. Broken ownership invariants are
// engine bugs, not runtime conditions.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.AssertionFailedf(format, args...))
	}
}
