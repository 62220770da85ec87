package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFound("user", "42"), http.StatusNotFound},
		{"invalid", NewInvalidInput("bad", nil), http.StatusBadRequest},
		{"conflict", NewConflict("skill", "name", "Go"), http.StatusConflict},
		{"unauthorized", NewUnauthorized("no token", nil), http.StatusUnauthorized},
		{"permission", NewPermissionDenied("nope"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("load: %w", NewNotFound("user", "1")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToHTTPStatus(tc.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "user with email 'a@x.com' already exists", PublicMessage(NewConflict("user", "email", "a@x.com")))
	assert.Equal(t, "An internal server error occurred", PublicMessage(NewInternal("pg down", errors.New("dial tcp"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("raw")))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("tag", "x")))
	assert.False(t, IsNotFound(NewConflict("tag", "name", "x")))
	assert.True(t, IsConflict(fmt.Errorf("wrap: %w", NewConflict("tag", "name", "x"))))
}
