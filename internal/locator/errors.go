package locator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput is wrapped by every ParseError.
var ErrMalformedOutput = errors.New("malformed detector output")

// ExecutionError reports a detector process that could not be started or
// exited abnormally.
type ExecutionError struct {
	ImagePath string
	Stderr    string
	Err       error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("detector failed for %s: %v", e.ImagePath, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "; stderr=" + s
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ParseError reports detector output that matches neither the point list
// grammar nor the no-face marker.
type ParseError struct {
	ImagePath string
	Token     string
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse detector output for %s: %s %q", e.ImagePath, e.Reason, e.Token)
}

func (e *ParseError) Unwrap() error { return ErrMalformedOutput }
