package myjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	opts := Options{Key: "secret", ExpireHours: 1, Issuer: "BotDesk"}
	tok, err := GenerateToken(opts, "admin-1", "root@bn9.local")
	require.NoError(t, err)

	claims, err := ParseToken(opts, tok)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "root@bn9.local", claims.Email)
	assert.Equal(t, "BotDesk", claims.Issuer)
}

func TestParseRejectsOtherKey(t *testing.T) {
	tok, err := GenerateToken(Options{Key: "a"}, "x", "y")
	require.NoError(t, err)
	_, err = ParseToken(Options{Key: "b"}, tok)
	assert.Error(t, err)
}

func TestEmptyKey(t *testing.T) {
	_, err := GenerateToken(Options{}, "x", "y")
	assert.Error(t, err)
	_, err = ParseToken(Options{}, "anything")
	assert.Error(t, err)
}
