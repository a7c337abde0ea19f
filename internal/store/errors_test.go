package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/continue-watching/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())

	cause := errors.New("disk full")
	wrapped := err.WithCause(cause)
	assert.Equal(t, "not found: disk full", wrapped.Error())
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.Equal(t, http.StatusNotFound, wrapped.HTTPCode())
}

func TestError_WithMessageKeepsCode(t *testing.T) {
	modified := store.ErrInvalidInput.WithMessage(`invalid slot name ".."`)

	assert.Equal(t, http.StatusBadRequest, modified.HTTPCode())
	assert.Equal(t, `invalid slot name ".."`, modified.Message)
	assert.Equal(t, "invalid input", store.ErrInvalidInput.Message, "sentinel must not change")
}

func TestErrSlotNotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, store.ErrSlotNotFound.HTTPCode())

	wrapped := fmt.Errorf("read watched-episodes: %w", store.ErrSlotNotFound)
	assert.ErrorIs(t, wrapped, store.ErrSlotNotFound)

	var storeErr *store.Error
	assert.ErrorAs(t, wrapped, &storeErr)
}
