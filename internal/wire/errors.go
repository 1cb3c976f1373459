package wire

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when the payload is not syntactically valid JSON
// or does not have the expected top-level shape.
var ErrMalformed = errors.New("malformed JSON")

// FieldError reports a schema violation at a specific field. Index is the
// position in the records array, or -1 for top-level request fields.
type FieldError struct {
	Index  int
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("records[%d]: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("records[%d].%s: %s", e.Index, e.Field, e.Reason)
}

func fieldErr(index int, field, reason string) *FieldError {
	return &FieldError{Index: index, Field: field, Reason: reason}
}

// IsBadInput reports whether err was caused by the caller's payload rather
// than by the server.
func IsBadInput(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe) || errors.Is(err, ErrMalformed)
}
