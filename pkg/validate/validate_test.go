package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name     string `json:"name" validate:"required,min=3,max=5"`
	Email    string `json:"email" validate:"omitempty,email"`
	Progress int    `json:"progress" validate:"min=0,max=100"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "abcd", Progress: 10}))

	err := Struct(sample{Name: "ab", Email: "nope", Progress: 101})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "name must be at least 3 characters")
		assert.Contains(t, err.Error(), "email must be a valid email address")
		assert.Contains(t, err.Error(), "progress must be at most 100")
	}

	err = Struct(sample{Progress: 1})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "name is required")
	}
}
