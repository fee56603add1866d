package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, Credentials{Username: "ana", Password: "x"}.Validate())
	assert.ErrorIs(t, Credentials{Password: "x"}.Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, Credentials{Username: "ana"}.Validate(), ErrInvalidRequest)
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		valid bool
	}{
		{"complete", RegisterRequest{Username: "ana", Password: "secret", DisplayName: "Ana"}, true},
		{"short username", RegisterRequest{Username: "an", Password: "secret", DisplayName: "Ana"}, false},
		{"short password", RegisterRequest{Username: "ana", Password: "12345", DisplayName: "Ana"}, false},
		{"no display name", RegisterRequest{Username: "ana", Password: "secret"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
