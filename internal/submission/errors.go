package submission

import (
	"errors"
	"fmt"
)

// ErrMissingModel signals that no model object was supplied. It is a
// distinct kind from value-range mistakes so contributor tooling can
// tell the two apart.
var ErrMissingModel = errors.New("you need to provide a model")

// ValidationError is a field-level or cross-field rule violation raised
// at construction time. No partially built entity survives one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
