package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespCodeMessages(t *testing.T) {
	assert.Equal(t, "success", CodeSuccess.Message())
	assert.Equal(t, "existed subject", CodeSubjectExisted.Message())
	assert.Equal(t, "server error", RespCode(-99).Message())
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, CodeServerError, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "boom")
}

func TestFromErrorKeepsTyped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrInvalidOp)
	appErr := FromError(wrapped)
	assert.Equal(t, CodeInvalidOp, appErr.Code)
	assert.Equal(t, http.StatusOK, appErr.Status)
}

func TestCloneAndIs(t *testing.T) {
	clone := Clone(ErrNotFound, "subject not found")
	assert.Equal(t, "subject not found", clone.Message)
	assert.Equal(t, "invalid parameter", ErrNotFound.Message)
	assert.True(t, errors.Is(clone, ErrNotFound))
	assert.False(t, errors.Is(clone, ErrInvalidParameter))
}
