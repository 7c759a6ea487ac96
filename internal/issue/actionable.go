// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

type (
	// ActionableError is a classified error with enough context to tell the
	// user what went wrong and, when possible, how to fix it.
	//
	// Use the ErrorContext builder for convenient construction:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("open input").
	//		WithResource("notes.txt").
	//		Wrap(originalErr).
	//		BuildError(issue.KindIO)
	ActionableError struct {
		// Kind classifies the failure.
		Kind Kind

		// Operation describes what was being attempted (e.g., "open input").
		// It is shown when there is no cause to describe the failure.
		Operation string

		// Resource identifies the file involved (optional).
		Resource string

		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string

		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext is a builder for ActionableError values.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

// --- Constructors ---

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Usagef returns a KindUsage error with a formatted message.
func Usagef(format string, args ...any) *ActionableError {
	return &ActionableError{Kind: KindUsage, Cause: fmt.Errorf(format, args...)}
}

// IO wraps err as a KindIO error about resource. It returns nil for a nil err.
func IO(resource string, err error) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Kind: KindIO, Resource: resource, Cause: err}
}

// --- ActionableError Methods ---

// Error renders "<resource>: <message>", or just the message when there is
// no resource. Path errors contribute only their innermost message so the
// file name is not repeated.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	if e.Resource != "" {
		msg.WriteString(e.Resource)
		msg.WriteString(": ")
	}
	msg.WriteString(e.message())

	return msg.String()
}

func (e *ActionableError) message() string {
	if e.Cause == nil {
		if e.Operation == "" {
			return e.Kind.String() + " error"
		}
		return e.Operation + " failed"
	}

	var pathErr *fs.PathError
	if e.Resource != "" && errors.As(e.Cause, &pathErr) {
		return pathErr.Err.Error()
	}
	return e.Cause.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel of e's kind.
func (e *ActionableError) Is(target error) bool {
	sentinel := e.Kind.Sentinel()
	return sentinel != nil && target == sentinel
}

// Format returns the message followed by any suggestions, one per line.
// When verbose is true the operation and full error chain are appended.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())

	for _, suggestion := range e.Suggestions {
		msg.WriteString("\n")
		msg.WriteString(suggestion)
	}

	if verbose && e.Operation != "" && e.Cause != nil {
		fmt.Fprintf(&msg, "\n  while: %s", e.Operation)
	}

	if verbose && e.Cause != nil {
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}

	return msg.String()
}

// --- ErrorContext Methods ---

// WithOperation sets the operation being performed.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the file involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion adds a suggestion for how to fix the issue.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// Wrap sets the underlying error.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build creates an ActionableError of the given kind.
func (c *ErrorContext) Build(kind Kind) *ActionableError {
	return &ActionableError{
		Kind:        kind,
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// BuildError is Build returning the error interface, for direct use in
// return statements.
func (c *ErrorContext) BuildError(kind Kind) error {
	return c.Build(kind)
}
