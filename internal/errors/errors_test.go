package errors_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	appErrors "Fluxo/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorUnwrapsAppError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("approving row: %w", appErrors.ErrCardNotFound)

	appErr := appErrors.FromError(wrapped)
	assert.Equal(t, "CARD_NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.True(t, appErrors.HasCode(wrapped, "CARD_NOT_FOUND"))
}

func TestFromErrorContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "REQUEST_CANCELED", appErrors.FromError(context.Canceled).Code)
	assert.Equal(t, "UNKNOWN_ERROR", appErrors.FromError(fmt.Errorf("boom")).Code)
}

func TestWithErrorDoesNotMutateSentinel(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("pq: duplicate key")
	derived := appErrors.ErrInsertFailed.WithError(cause).WithDetails(map[string]interface{}{"row": 1})

	assert.Nil(t, appErrors.ErrInsertFailed.Err)
	assert.Empty(t, appErrors.ErrInsertFailed.Details)
	assert.ErrorIs(t, derived, cause)
	assert.Equal(t, 1, derived.Details["row"])
}

func TestInvalidTransitionDetails(t *testing.T) {
	t.Parallel()

	err := appErrors.NewInvalidTransitionError("OPEN", "PAID")
	assert.Equal(t, "INVALID_TRANSITION", err.Code)
	assert.Equal(t, "OPEN", err.Details["from"])
	assert.Equal(t, "PAID", err.Details["to"])
}
