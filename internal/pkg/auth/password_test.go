// internal/pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testPasswordManager() *PasswordManager {
	cfg := &config.Config{}
	cfg.Security.BcryptCost = 4
	return NewPasswordManager(cfg)
}

func TestValidatePassword(t *testing.T) {
	pm := testPasswordManager()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ngPass", false},
		{"too short", "Ab1", true},
		{"no uppercase", "weakpass1", true},
		{"no lowercase", "WEAKPASS1", true},
		{"no number", "WeakPassword", true},
		{"four repeating characters", "Aaaaa1234", true},
		{"three repeats allowed", "Aaa1bcde", false},
		{"common password", "Password123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pm.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	pm := testPasswordManager()

	hash, err := pm.HashPassword("Str0ngPass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngPass", hash)

	assert.NoError(t, pm.VerifyPassword("Str0ngPass", hash))
	assert.Error(t, pm.VerifyPassword("WrongPass1", hash))
}

func TestHashPasswordRejectsWeak(t *testing.T) {
	pm := testPasswordManager()

	_, err := pm.HashPassword("short")
	assert.Error(t, err)
}
