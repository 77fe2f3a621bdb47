package backend

import (
	"fmt"
	"strings"
)

// Error is a failed backend call.
//
// Status is the HTTP status when the backend answered with one. A zero
// Status with a nil Err means the backend answered success:false, which for
// compile and export is a rejected diagram rather than an outage.
type Error struct {
	Op            string
	Status        int
	Message       string
	CompileErrors []string
	Err           error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend: %s", e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.CompileErrors) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.CompileErrors, "; "))
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Rejected reports whether the backend processed the request and refused it.
func (e *Error) Rejected() bool {
	return e.Status == 0 && e.Err == nil
}

func rejected(op string, env envelope, compileErrors []string) *Error {
	msg := env.Error
	if msg == "" {
		msg = env.Detail
	}
	if msg == "" {
		msg = op + " failed"
	}
	return &Error{Op: op, Message: msg, CompileErrors: compileErrors}
}
