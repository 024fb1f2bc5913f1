package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/syssam/sqlcond/where"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A condition failed to compile or was rejected by the database
	ExitCommandError = 2 // Command error (bad flags, unreadable files, unreachable database)
)

// Error codes reported in JSON output.
const (
	ErrCodeGeneric            = "E001"
	ErrCodeConfig             = "E002"
	ErrCodeInput              = "E003"
	ErrCodeUnknownAttribute   = "E101"
	ErrCodeUndefinedValue     = "E102"
	ErrCodeUnsupported        = "E103"
	ErrCodeOperatorArity      = "E104"
	ErrCodeTypeMismatch       = "E105"
	ErrCodeInvalidOperandKind = "E106"
	ErrCodeRejected           = "E201"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written by an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// compileErrorCode maps a compile error to its JSON error code.
func compileErrorCode(err error) string {
	switch {
	case where.IsUnknownAttribute(err):
		return ErrCodeUnknownAttribute
	case where.IsUndefinedValue(err):
		return ErrCodeUndefinedValue
	case where.IsUnsupportedOperator(err):
		return ErrCodeUnsupported
	case where.IsOperatorArity(err):
		return ErrCodeOperatorArity
	case where.IsTypeMismatch(err):
		return ErrCodeTypeMismatch
	case where.IsInvalidOperandKind(err):
		return ErrCodeInvalidOperandKind
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
