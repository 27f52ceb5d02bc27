package core

import "fmt"

// ValidationError reports a structurally or semantically invalid write
// payload. It is always client-caused and maps to HTTP 400 at the boundary.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
