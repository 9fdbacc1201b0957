package errortypes

import (
	"fmt"
	"strings"
)

// AggregateErrors reports every problem found while validating a configuration at once.
type AggregateErrors struct {
	Message string
	Errors  []error
}

func NewAggregateErrors(msg string, errs []error) AggregateErrors {
	return AggregateErrors{Message: msg, Errors: errs}
}

// Error lists the wrapped errors one per line, numbered from 1.
func (e AggregateErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	noun := "errors"
	if len(e.Errors) == 1 {
		noun = "error"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d %s):\n", e.Message, len(e.Errors), noun)
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d: %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the wrapped errors to errors.Is and errors.As.
func (e AggregateErrors) Unwrap() []error {
	return e.Errors
}
