package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		userName string
		want     []string
	}{
		{"acceptable", "Correct-Horse-9", "alice", nil},
		{"too short", "Ab1!", "alice", []string{"This password is too short. It must contain at least 8 characters."}},
		{"too common", "password123", "alice", []string{"This password is too common."}},
		{"entirely numeric", "90817263", "alice", []string{"This password is entirely numeric."}},
		{"numeric and common", "12345678", "alice", []string{"This password is too common.", "This password is entirely numeric."}},
		{"similar to username", "alicewonder", "alice", []string{"The password is too similar to the username."}},
		{"too long", strings.Repeat("x", 73) + "Y1", "alice", []string{"This password is too long. It must contain at most 72 bytes."}},
		{"empty", "", "alice", []string{"This password is too short. It must contain at least 8 characters."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ValidatePassword(tt.password, tt.userName))
		})
	}
}
