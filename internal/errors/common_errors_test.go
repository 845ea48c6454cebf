package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{"io error type", ErrTypeIO, "IO"},
		{"schema error type", ErrTypeSchema, "SCHEMA"},
		{"division by zero error type", ErrTypeDivisionByZero, "DIVISION_BY_ZERO"},
		{"empty partition error type", ErrTypeEmptyPartition, "EMPTY_PARTITION"},
		{"storage error type", ErrTypeStorage, "STORAGE"},
		{"not found error type", ErrTypeNotFound, "NOT_FOUND"},
		{"config error type", ErrTypeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewSchemaError("column Route_Type is missing"),
			wantMessage: "[SCHEMA] column Route_Type is missing",
		},
		{
			name:        "error with cause",
			appError:    NewIOError("open shipments.xlsx", fmt.Errorf("no such file")),
			wantMessage: "[IO] open shipments.xlsx: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestIsType(t *testing.T) {
	cause := errors.New("disk full")
	storageErr := NewStorageError("save model", cause)
	wrapped := fmt.Errorf("fit stage: %w", storageErr)

	assert.True(t, IsType(wrapped, ErrTypeStorage))
	assert.False(t, IsType(wrapped, ErrTypeSchema))
	assert.False(t, IsType(cause, ErrTypeStorage))
	assert.False(t, IsType(nil, ErrTypeStorage))
	assert.True(t, errors.Is(wrapped, cause))

	nested := NewStorageError("outer", NewDivisionByZeroError("inner"))
	assert.True(t, IsType(nested, ErrTypeDivisionByZero))
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("split: %w", NewEmptyPartitionError("class 0 has no rows"))
	assert.True(t, errors.Is(err, &AppError{Type: ErrTypeEmptyPartition}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrTypeIO}))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewDivisionByZeroError("order weight is zero").
		WithContext("row", 12).
		WithContext("column", "Order_Weight_Kg")
	require.Len(t, err.Context, 2)
	assert.Equal(t, 12, err.Context["row"])
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", NewNotFoundError("report/latest"), http.StatusNotFound, "NOT_FOUND"},
		{"schema", fmt.Errorf("load: %w", NewSchemaError("bad")), http.StatusUnprocessableEntity, "SCHEMA"},
		{"storage", NewStorageError("read", errors.New("x")), http.StatusInternalServerError, "STORAGE"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}

func TestWarning(t *testing.T) {
	w := NewWarning(WarnConvergence, "no convergence after %d iterations", 100).With("iterations", 100)
	assert.Equal(t, "ConvergenceWarning: no convergence after 100 iterations", w.String())
	assert.Equal(t, 100, w.Context["iterations"])

	ws := []Warning{w, NewWarning(WarnZeroVariance, "constant column")}
	assert.True(t, HasKind(ws, WarnZeroVariance))
	assert.False(t, HasKind(ws, WarnSeparation))
}
