package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"activation_code" validate:"required,otp"`
	Role     string `json:"role" validate:"omitempty,is-user-role"`
	Username string `json:"username" validate:"omitempty,username"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Email: "a@x.com", Code: "1234", Role: "seller", Username: "alice_1"})
	assert.NoError(t, err)
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&sample{Email: "nope", Code: "12a4", Role: "model", Username: "bad name"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Equal(t, "Must be a 4-digit code", vErr.Errors["activation_code"])
	assert.Contains(t, vErr.Errors, "role")
	assert.Contains(t, vErr.Errors, "username")
}

func TestValidate_Required(t *testing.T) {
	v := New()
	err := v.Validate(&sample{})
	require.Error(t, err)

	vErr := err.(*ValidationError)
	assert.Equal(t, "This field is required", vErr.Errors["email"])
}

func TestValidationError_StableMessage(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "validation failed: a: first; b: second", err.Error())
}
