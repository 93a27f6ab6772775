package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
	cryptoService "github.com/allisson/screening/internal/crypto/service"
)

func TestRunEncryptDecryptField(t *testing.T) {
	fieldCipher, err := cryptoService.NewFieldCipher("cli-test-secret", "cli-test-salt")
	require.NoError(t, err)

	var encrypted bytes.Buffer
	require.NoError(t, RunEncryptField(fieldCipher, "", IOTuple{
		Reader: strings.NewReader("046-454-286\n"),
		Writer: &encrypted,
	}))
	stored := strings.TrimSpace(encrypted.String())
	require.True(t, fieldCipher.IsEncrypted(stored))

	t.Run("plain", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunDecryptField(fieldCipher, stored, false, IOTuple{Writer: &out}))
		require.Equal(t, "046-454-286\n", out.String())
	})

	t.Run("masked", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunDecryptField(fieldCipher, stored, true, IOTuple{Writer: &out}))
		require.Equal(t, "***-***-286\n", out.String())
	})

	t.Run("tampered", func(t *testing.T) {
		var out bytes.Buffer
		err := RunDecryptField(fieldCipher, stored[:len(stored)-2]+"zz", false, IOTuple{Writer: &out})
		require.ErrorIs(t, err, cryptoDomain.ErrDecryption)
		require.Empty(t, out.String())
	})

	t.Run("no-value", func(t *testing.T) {
		err := RunEncryptField(fieldCipher, "", IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}})
		require.Error(t, err)
	})
}
