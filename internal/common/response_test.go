package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrRecipientNotAllowed, http.StatusForbidden},
		{ErrRoleNotPermitted, http.StatusForbidden},
		{ErrNotAParticipant, http.StatusForbidden},
		{ErrAccessDenied, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrUnknownRecipient, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFromError(tt.err), "error: %v", tt.err)
	}
}

func TestStatusFromError_Wrapped(t *testing.T) {
	// services wrap sentinels with context; mapping follows the chain
	err := fmt.Errorf("%w: recipient %s", ErrUnknownRecipient, "ghost")
	assert.Equal(t, http.StatusNotFound, StatusFromError(err))

	err = fmt.Errorf("%w: list threads: %v", ErrStorageUnavailable, errors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFromError(err))
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 50, 101)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 50, meta.PerPage)
	assert.Equal(t, int64(101), meta.Total)
	assert.Equal(t, int64(3), meta.TotalPages)

	meta = NewMeta(1, 50, 100)
	assert.Equal(t, int64(2), meta.TotalPages)

	meta = NewMeta(1, 50, 0)
	assert.Equal(t, int64(0), meta.TotalPages)
}
