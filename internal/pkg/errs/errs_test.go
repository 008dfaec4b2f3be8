package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"kargo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericErrors(t *testing.T) {
	timeout := errors.New("context deadline exceeded")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "order not found",
			err:      errs.NewObjectNotFoundError("order", "0b7c"),
			sentinel: errs.ErrObjectNotFound,
			message:  "object not found: 0b7c",
		},
		{
			name:     "courier location not found with cause",
			err:      errs.NewObjectNotFoundErrorWithCause("courier", "77aa", timeout),
			sentinel: errs.ErrObjectNotFound,
			message:  "object not found: param is: courier, ID is: 77aa (cause: context deadline exceeded)",
		},
		{
			name:     "invalid phone",
			err:      errs.NewValueIsInvalidError("phone"),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: phone",
		},
		{
			name:     "invalid fee with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("delivery fee", errors.New("-5 is not greater than 0")),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: delivery fee (cause: -5 is not greater than 0)",
		},
		{
			name:     "latitude out of range",
			err:      errs.NewValueIsOutOfRangeError("latitude", 91.0, -90.0, 90.0),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 91 is latitude, min value is -90, max value is 90",
		},
		{
			name:     "accuracy out of range with cause",
			err:      errs.NewValueIsOutOfRangeErrorWithCause("accuracy", -3, 0, "inf", errors.New("negative")),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: -3 is accuracy, min value is 0, max value is inf (cause: negative)",
		},
		{
			name:     "missing description",
			err:      errs.NewValueIsRequiredError("description"),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: description",
		},
		{
			name:     "missing secret with cause",
			err:      errs.NewValueIsRequiredErrorWithCause("JWT_SECRET", errors.New("serve verifies tokens")),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: JWT_SECRET (cause: serve verifies tokens)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.sentinel, errors.Unwrap(tt.err))
		})
	}
}

func TestValueIsOutOfRangeError_KeepsValueOnOneLine(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("address", "Moda Cd.\nKadıköy", 1, 200)

	assert.NotContains(t, err.Error(), "\n")
	assert.Contains(t, err.Error(), "Moda Cd. Kadıköy")
}

func TestErrorsSurviveWrapping(t *testing.T) {
	base := errs.NewValueIsRequiredError("customer_id")
	wrapped := fmt.Errorf("create order: %w", errors.Join(base, errs.NewValueIsInvalidError("phone")))

	var required *errs.ValueIsRequiredError
	require.ErrorAs(t, wrapped, &required)
	assert.Equal(t, "customer_id", required.ParamName)
	assert.ErrorIs(t, wrapped, errs.ErrValueIsInvalid)
	assert.NotErrorIs(t, wrapped, errs.ErrObjectNotFound)
}
