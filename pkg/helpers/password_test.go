package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CompareHashAndPassword(hash, "secret1"))
	assert.False(t, CompareHashAndPassword(hash, "secret2"))
	assert.False(t, CompareHashAndPassword("", "secret1"))
}
