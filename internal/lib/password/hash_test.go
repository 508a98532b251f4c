package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompareHash(t *testing.T) {
	hash, err := GetHash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	require.NoError(t, CompareHash(hash, "secret"))
	require.Error(t, CompareHash(hash, "wrong"))
}

func TestGetHash_SaltedHashesDiffer(t *testing.T) {
	first, err := GetHash("secret")
	require.NoError(t, err)
	second, err := GetHash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
