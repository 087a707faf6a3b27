package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductNotFoundError(t *testing.T) {
	t.Run("Error message formatting", func(t *testing.T) {
		err := NewProductNotFoundError("prod-123")
		assert.Equal(t, "product not found: id=prod-123", err.Error())
	})

	t.Run("errors.Is detection", func(t *testing.T) {
		err := fmt.Errorf("load: %w", NewProductNotFoundError("prod-123"))
		assert.ErrorIs(t, err, &ProductNotFoundError{})
		assert.True(t, IsProductNotFoundError(err))
	})

	t.Run("errors.As conversion", func(t *testing.T) {
		var pnf *ProductNotFoundError
		require.ErrorAs(t, NewProductNotFoundError("prod-456"), &pnf)
		assert.Equal(t, "prod-456", pnf.ProductID)
	})
}

func TestDuplicateProductError(t *testing.T) {
	err := NewDuplicateProductError("prod-001")
	assert.Equal(t, "duplicate product: id=prod-001 already exists", err.Error())
	assert.True(t, IsDuplicateProductError(err))
	assert.False(t, IsProductNotFoundError(err))
}

func TestNetworkError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := &NetworkError{Method: "GET", Path: "/products", StatusCode: 500, Message: "boom"}
		assert.Equal(t, "GET /products: status=500 message=boom", err.Error())
	})

	t.Run("transport failure", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &NetworkError{Method: "DELETE", Path: "/products/abc", Message: cause.Error(), Err: cause}
		assert.Equal(t, "DELETE /products/abc: connection refused", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("detected through wrapping", func(t *testing.T) {
		err := fmt.Errorf("save product: %w", &NetworkError{StatusCode: 400})
		assert.True(t, IsNetworkError(err))
		assert.False(t, IsFieldValidationError(err))
	})
}

func TestFieldValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		msg  string
	}{
		{"required", &RequiredError{Field: FieldName}, "name: required"},
		{"min length", &MinLengthError{Field: FieldID, Required: 3, Actual: 2}, "id: length 2 below minimum 3"},
		{"max length", &MaxLengthError{Field: FieldID, Required: 10, Actual: 11}, "id: length 11 above maximum 10"},
		{"id exists", &IDExistsError{ID: "abc"}, "id: abc already exists"},
		{"min date", &MinDateError{Field: FieldDateRelease, Min: "2026-10-15", Actual: "2026-10-14"}, "date_release: 2026-10-14 is before 2026-10-15"},
		{"invalid", &InvalidValueError{Field: FieldDateRelease, Value: "x", Reason: "expected YYYY-MM-DD"}, `date_release: invalid value "x": expected YYYY-MM-DD`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.msg, tc.err.Error())
			assert.True(t, IsFieldValidationError(tc.err))
			assert.False(t, IsNetworkError(tc.err))
		})
	}
}

func TestErrorTypeDiscrimination(t *testing.T) {
	required := &RequiredError{Field: FieldID}
	exists := &IDExistsError{ID: "abc"}

	assert.ErrorIs(t, required, &RequiredError{})
	assert.NotErrorIs(t, required, &IDExistsError{})
	assert.ErrorIs(t, exists, &IDExistsError{})
	assert.NotErrorIs(t, exists, &MinDateError{})
}
