package model

import (
	"errors"
	"fmt"
)

// ErrStructural is matched by every StructuralError via errors.Is
var ErrStructural = errors.New("structural error")

// StructuralError reports an event stream that cannot form a valid tree.
// Nothing is rendered once a build fails with it.
type StructuralError struct {
	// Op is the event or step that failed (start, end, finish, finalize)
	Op string
	// Tag is the element name carried by the offending event
	Tag string
	// Open is the tag of the innermost open element, if any
	Open string
	// Reason describes the failure
	Reason string
}

// Error returns the error message
func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrStructural.Error(), e.Op)
	if e.Tag != "" {
		msg += fmt.Sprintf(" <%s>", e.Tag)
	}
	if e.Open != "" {
		msg += fmt.Sprintf(" (open <%s>)", e.Open)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrStructural)
func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// ErrContentNotFound is returned when an ODS archive has no content.xml
var ErrContentNotFound = errors.New("content.xml not found in archive")
