// Package errorhandler runs a cobra command tree and turns its error stream
// into a single, clean error for main to print.
package errorhandler

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
)

// Executor runs a command while capturing cobra's stderr, so usage errors
// ("unknown command", bad flags) surface once through the returned error
// instead of being printed twice.
type Executor struct{}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs the command. On failure it returns a *CommandError carrying
// the normalized stderr output and the original error, preserving errors.Is
// and errors.As against the cause.
func (e *Executor) Execute(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var errBuf bytes.Buffer

	originalErrWriter := cmd.ErrOrStderr()

	cmd.SetErr(&errBuf)
	defer cmd.SetErr(originalErrWriter)

	err := cmd.Execute()
	if err == nil {
		return nil
	}

	return &CommandError{
		message: normalize(errBuf.String()),
		cause:   err,
	}
}

// CommandError pairs the captured stderr output with the command's error.
type CommandError struct {
	message string
	cause   error
}

// Error prefers the captured message and appends the cause when the message
// does not already contain it.
func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message != "":
		if strings.Contains(e.message, e.cause.Error()) {
			return e.message
		}

		return e.message + ": " + e.cause.Error()
	default:
		return e.cause.Error()
	}
}

// Unwrap exposes the underlying cause.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// normalize trims whitespace and cobra's "Error:" prefix while keeping
// multi-line usage hints intact.
func normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	lines[0] = strings.TrimPrefix(strings.TrimSpace(lines[0]), "Error: ")

	return strings.Join(lines, "\n")
}
