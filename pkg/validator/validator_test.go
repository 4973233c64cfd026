package validator_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smtptester/pkg/validator"
)

type connection struct {
	Host     string   `json:"host" validate:"required,hostname_rfc1123|ip"`
	Mode     string   `json:"mode" validate:"omitempty,oneof=auth anonymous starttls"`
	Secret   string   `json:"-"`
	From     string   `json:"from,omitempty" validate:"omitempty,email"`
	To       []string `json:"to" validate:"omitempty,max=2"`
	Username string   `validate:"omitempty,max=5"`
	Port     int      `json:"port" validate:"required,min=1,max=65535"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		err := validator.Struct(connection{Host: "smtp.example.com", Port: 587, Mode: "auth"})
		require.NoError(t, err)
	})

	t.Run("ip literal host", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, validator.Struct(connection{Host: "127.0.0.1", Port: 25}))
	})

	t.Run("missing required fields use json names", func(t *testing.T) {
		t.Parallel()

		err := validator.Struct(connection{})
		require.Error(t, err)
		require.True(t, validator.IsValidationError(err))

		ve := validator.ExtractValidationErrors(err)
		assert.Equal(t, []string{"host", "port"}, ve.Fields())
		assert.Equal(t, []string{"is required"}, ve.Get("host"))
		assert.Equal(t, "required", ve.GetErrors("port")[0].Rule)
	})

	t.Run("range and format rules", func(t *testing.T) {
		t.Parallel()

		err := validator.Struct(connection{
			Host:     "smtp.example.com",
			Port:     70000,
			Mode:     "ssl",
			From:     "not-an-address",
			To:       []string{"a", "b", "c"},
			Username: "toolongname",
		})
		ve := validator.ExtractValidationErrors(err)
		require.NotNil(t, ve)

		port := ve.GetErrors("port")
		require.Len(t, port, 1)
		assert.Equal(t, "max", port[0].Rule)
		assert.Equal(t, 65535, port[0].Params["max"])
		assert.Equal(t, "must not exceed 65535", port[0].Message)

		assert.Equal(t, []string{"must be one of: auth, anonymous, starttls"}, ve.Get("mode"))
		assert.Equal(t, []string{"must be a valid email address"}, ve.Get("from"))
		assert.Equal(t, []string{"must not contain more than 2 items"}, ve.Get("to"))
		assert.Equal(t, []string{"must not exceed 5 characters"}, ve.Get("Username"))
	})

	t.Run("invalid host", func(t *testing.T) {
		t.Parallel()

		err := validator.Struct(connection{Host: "bad host!", Port: 25})
		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 1)
		assert.Equal(t, "host", ve[0].Rule)
	})

	t.Run("non-struct input", func(t *testing.T) {
		t.Parallel()

		err := validator.Struct("nope")
		require.ErrorIs(t, err, validator.ErrInvalidInput)
		assert.False(t, validator.IsValidationError(err))
	})
}

func TestValidator_RegisterValidation(t *testing.T) {
	t.Parallel()

	v := validator.New()
	require.NoError(t, v.RegisterValidation("lowercase_only", func(s string) bool {
		return s == strings.ToLower(s)
	}))

	type req struct {
		Tag string `json:"tag" validate:"required,lowercase_only"`
	}
	require.NoError(t, v.Struct(req{Tag: "abc"}))

	ve := validator.ExtractValidationErrors(v.Struct(req{Tag: "ABC"}))
	require.Len(t, ve, 1)
	assert.Equal(t, "invalid", ve[0].Rule)
	assert.Equal(t, "lowercase_only", ve[0].Params["rule"])
}

func TestValidationErrors_Helpers(t *testing.T) {
	t.Parallel()

	ve := validator.ValidationErrors{
		{Field: "host", Message: "is required"},
		{Field: "port", Message: "is required"},
		{Field: "port", Message: "must be at least 1"},
	}

	assert.True(t, ve.Has("port"))
	assert.False(t, ve.Has("from"))
	assert.Equal(t, []string{"host", "port"}, ve.Fields())
	assert.Len(t, ve.GetErrors("port"), 2)
	assert.Equal(t, "validation failed: host is required; port is required; port must be at least 1", ve.Error())

	wrapped := fmt.Errorf("bind: %w", ve)
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Len(t, validator.ExtractValidationErrors(wrapped), 3)
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("other")))
}
