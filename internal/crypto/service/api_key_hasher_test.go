package service

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyHasher_Generate(t *testing.T) {
	hasher := NewAPIKeyHasher()

	key1, err := hasher.Generate()
	require.NoError(t, err)
	key2, err := hasher.Generate()
	require.NoError(t, err)

	assert.Len(t, key1, 64)
	assert.NotEqual(t, key1, key2)

	_, err = hex.DecodeString(key1)
	assert.NoError(t, err)
	assert.Equal(t, strings.ToLower(key1), key1)
}

func TestAPIKeyHasher_HashAndVerify(t *testing.T) {
	hasher := NewAPIKeyHasher()
	key, err := hasher.Generate()
	require.NoError(t, err)

	hash, salt, err := hasher.Hash(key)
	require.NoError(t, err)
	assert.Len(t, hash, 128)
	assert.Len(t, salt, 32)

	t.Run("Success_SameKey", func(t *testing.T) {
		assert.True(t, hasher.Verify(key, hash, salt))
	})

	t.Run("Failure_DifferentKey", func(t *testing.T) {
		other, err := hasher.Generate()
		require.NoError(t, err)
		assert.False(t, hasher.Verify(other, hash, salt))
	})

	t.Run("Failure_DifferentSalt", func(t *testing.T) {
		_, otherSalt, err := hasher.Hash(key)
		require.NoError(t, err)
		assert.NotEqual(t, salt, otherSalt)
		assert.False(t, hasher.Verify(key, hash, otherSalt))
	})

	t.Run("Failure_MalformedHash", func(t *testing.T) {
		assert.False(t, hasher.Verify(key, "not-hex", salt))
		assert.False(t, hasher.Verify(key, hash[:64], salt))
	})

	t.Run("Failure_MalformedSalt", func(t *testing.T) {
		assert.False(t, hasher.Verify(key, hash, "zz"))
		assert.False(t, hasher.Verify(key, hash, ""))
	})
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"Long", "abcdef1234", "******1234"},
		{"ExactlyFour", "1234", "1234"},
		{"Five", "x1234", "*1234"},
		{"Short", "abc", "****"},
		{"TwoChars", "ab", "****"},
		{"Empty", "", "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskAPIKey(tt.key))
		})
	}

	t.Run("GeneratedKey", func(t *testing.T) {
		key := strings.Repeat("a", 60) + "beef"
		masked := MaskAPIKey(key)
		assert.Equal(t, strings.Repeat("*", 60)+"beef", masked)
	})
}

func TestAPIKeyPrefix(t *testing.T) {
	assert.Equal(t, "0123456789ab", APIKeyPrefix("0123456789abcdef"))
	assert.Equal(t, "short", APIKeyPrefix("short"))
}
