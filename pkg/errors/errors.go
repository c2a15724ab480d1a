package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSchema represents tool catalog schema errors
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeTool represents tool execution errors
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypeModel represents model invocation errors
	ErrorTypeModel ErrorType = "model"
	// ErrorTypeAgent represents conversation orchestration errors
	ErrorTypeAgent ErrorType = "agent"
	// ErrorTypeNotify represents notification delivery errors
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeStore represents lead store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// ErrType returns the error category. Typed errors embedding BaseError
// inherit it, so category checks work without knowing the concrete type.
func (e *BaseError) ErrType() ErrorType {
	return e.Type
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Schema Errors

// SchemaError is returned when the tool catalog fails validation at startup.
// It is fatal: the process must not start with a malformed catalog.
type SchemaError struct {
	*BaseError
	Tool   string
	Reason string
}

func NewSchemaError(tool, reason string) *SchemaError {
	return &SchemaError{
		BaseError: NewBaseError(ErrorTypeSchema, fmt.Sprintf("invalid tool definition %q: %s", tool, reason), nil),
		Tool:      tool,
		Reason:    reason,
	}
}

// Tool Errors

// ArgumentDecodeError is returned when a tool call carries arguments that are
// not valid JSON for the tool's parameter schema. Recoverable: the caller
// converts it into a tool-role error message.
type ArgumentDecodeError struct {
	*BaseError
	Tool string
}

func NewArgumentDecodeError(tool string, err error) *ArgumentDecodeError {
	return &ArgumentDecodeError{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("invalid arguments for tool %q", tool), err),
		Tool:      tool,
	}
}

// UnknownToolError is returned when the model requests a tool that has no
// registered implementation. Recoverable, like ArgumentDecodeError.
type UnknownToolError struct {
	*BaseError
	Tool string
}

func NewUnknownToolError(tool string) *UnknownToolError {
	return &UnknownToolError{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("unknown tool: %s", tool), nil),
		Tool:      tool,
	}
}

// Model Errors

// ModelInvocationError is returned when a model request fails after retries.
// Fatal for the turn: there is no fallback model to consult.
type ModelInvocationError struct {
	*BaseError
	Model    string
	Attempts int
}

func NewModelInvocationError(model string, attempts int, err error) *ModelInvocationError {
	return &ModelInvocationError{
		BaseError: NewBaseError(ErrorTypeModel, fmt.Sprintf("model request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Agent Errors

// TurnBudgetExceededError is returned when a single turn runs more
// tool-dispatch rounds than the configured limit.
type TurnBudgetExceededError struct {
	*BaseError
	Rounds int
}

func NewTurnBudgetExceeded(rounds int) *TurnBudgetExceededError {
	return &TurnBudgetExceededError{
		BaseError: NewBaseError(ErrorTypeAgent, fmt.Sprintf("turn budget exceeded after %d tool rounds", rounds), nil),
		Rounds:    rounds,
	}
}

// Config Errors

// ConfigMissingRequired is returned when a required config value is missing
type ConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ConfigMissingRequired {
	return &ConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error belongs to a specific category
func IsErrorType(err error, errType ErrorType) bool {
	var typed interface{ ErrType() ErrorType }
	if stderrors.As(err, &typed) {
		return typed.ErrType() == errType
	}
	return false
}

// IsRecoverable reports whether an error may be converted into a tool-role
// error message instead of aborting the turn. Only tool execution errors
// qualify; model and agent errors propagate to the caller.
func IsRecoverable(err error) bool {
	switch err.(type) {
	case *ArgumentDecodeError, *UnknownToolError:
		return true
	}
	return IsErrorType(err, ErrorTypeTool)
}
