package utils

import (
	"testing"

	"learnspace/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	token, err := GenerateJWTToken("user-42", cfg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ParseUserID(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWTToken("user-42", &config.Config{JWTSecret: "secret-a"})
	require.NoError(t, err)

	_, err = ParseUserID(token, &config.Config{JWTSecret: "secret-b"})
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseUserID("not-a-token", &config.Config{JWTSecret: "secret"})
	assert.Error(t, err)
}
