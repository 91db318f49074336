package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorFindsWrappedDomainError(t *testing.T) {
	inner := NewNotFound("medication", nil)
	wrapped := fmt.Errorf("load: %w", inner)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainErrorHidesUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset by peer")

	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestUnauthenticatedIsForbiddenStatus(t *testing.T) {
	de := ToDomainError(NewUnauthenticated(nil))
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.Equal(t, "you need to login to access this resource", de.Message)
	assert.Nil(t, ToDomainError(nil))
}
