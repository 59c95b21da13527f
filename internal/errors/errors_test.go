package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppValidationError("year out of range"),
			expected: "[VALIDATION] year out of range",
		},
		{
			name:     "with cause",
			err:      NewParsingError("bad price cell", stderrors.New("strconv failed")),
			expected: "[PARSING] bad price cell: strconv failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStorageError("cannot write results", cause)

	assert.True(t, stderrors.Is(err, cause))

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewNotFoundError("model").
		WithContext("automaker", "Ford").
		WithContext("genmodel", "Fiesta")

	assert.Equal(t, "Ford", err.Context["automaker"])
	assert.Equal(t, "Fiesta", err.Context["genmodel"])
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("price", []string{"Genmodel_ID", "Entry_price"})

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Equal(t, "price", err.Context["table"])
	assert.Equal(t, []string{"Genmodel_ID", "Entry_price"}, err.Context["missing_columns"])
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestNewInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("regression", 4, 10)

	assert.Equal(t, ErrTypeInsufficientData, err.Type)
	assert.Equal(t, 4, err.Context["have"])
	assert.Equal(t, 10, err.Context["need"])
	assert.Contains(t, err.Error(), "at least 10 observations")
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		appErr     *AppError
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found maps to 404",
			appErr:     NewNotFoundError("model"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "validation maps to 400",
			appErr:     NewAppValidationError("bad tier"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "insufficient data maps to 422",
			appErr:     NewInsufficientDataError("t-test", 1, 2),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_DATA",
		},
		{
			name:       "schema maps to 422",
			appErr:     NewSchemaError("sales", []string{"Maker"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "UNPROCESSABLE_ENTITY",
		},
		{
			name:       "config maps to 500",
			appErr:     NewConfigError("missing data dir", nil),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.appErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.Equal(t, tt.appErr.Message, apiErr.Message)
		})
	}
}

func TestErrValidation(t *testing.T) {
	apiErr := ErrValidation("tier", "unknown price tier")

	require.NotNil(t, apiErr.Details)
	detail, ok := apiErr.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "tier", detail.Field)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
