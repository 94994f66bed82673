package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("missing fields", "name", "countryId")
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, []string{"name", "countryId"}, err.Fields)
	assert.Nil(t, ErrValidation.Fields)
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("load survey: %w", Clone(ErrNotFound, "survey not found"))
	assert.True(t, stdErrors.Is(wrapped, ErrNotFound))
	assert.False(t, stdErrors.Is(wrapped, ErrValidation))
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Persistence(cause, "failed to insert letter")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(stdErrors.New("boom"))
	assert.Equal(t, CodeInternal, err.Code)
	assert.Nil(t, FromError(nil))
}
