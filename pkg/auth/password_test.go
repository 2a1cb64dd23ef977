package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("password1")
	require.NoError(t, err)

	assert.NotEqual(t, "password1", hash)
	assert.NotContains(t, hash, "password1")

	// Salted: hashing the same secret twice yields different hashes
	hash2, err := HashSecret("password1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestCompareSecret(t *testing.T) {
	hash, err := HashSecret("password1")
	require.NoError(t, err)

	assert.NoError(t, CompareSecret(hash, "password1"))

	err = CompareSecret(hash, "password2")
	require.Error(t, err)
	assert.Equal(t, KindInvalidCredentials, KindOf(err))
}
