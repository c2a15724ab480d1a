package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsErrorType(t *testing.T) {
	assert.True(t, IsErrorType(NewSchemaError("t", "bad"), ErrorTypeSchema))
	assert.True(t, IsErrorType(NewUnknownToolError("t"), ErrorTypeTool))
	assert.True(t, IsErrorType(NewArgumentDecodeError("t", stderrors.New("x")), ErrorTypeTool))
	assert.True(t, IsErrorType(NewModelInvocationError("m", 3, stderrors.New("x")), ErrorTypeModel))
	assert.True(t, IsErrorType(NewTurnBudgetExceeded(5), ErrorTypeAgent))

	assert.False(t, IsErrorType(NewUnknownToolError("t"), ErrorTypeModel))
	assert.False(t, IsErrorType(stderrors.New("plain"), ErrorTypeTool))
}

func TestIsErrorType_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("turn failed: %w", NewModelInvocationError("m", 3, nil))
	assert.True(t, IsErrorType(wrapped, ErrorTypeModel))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewUnknownToolError("t")))
	assert.True(t, IsRecoverable(NewArgumentDecodeError("t", nil)))

	assert.False(t, IsRecoverable(NewModelInvocationError("m", 1, nil)))
	assert.False(t, IsRecoverable(NewTurnBudgetExceeded(10)))
	assert.False(t, IsRecoverable(NewSchemaError("t", "bad")))
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := NewModelInvocationError("m", 3, inner)

	require.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "[model]")
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, NewUnknownToolError("delete_everything").Error(), "delete_everything")
	assert.Contains(t, NewSchemaError("x", "empty description").Error(), "empty description")
	assert.Contains(t, NewTurnBudgetExceeded(7).Error(), "7")
}
