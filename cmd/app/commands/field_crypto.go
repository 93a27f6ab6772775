package commands

import (
	"fmt"

	cryptoService "github.com/allisson/screening/internal/crypto/service"
)

// RunEncryptField prints the "ivHex:cipherHex" form of value. An empty or "-" value is
// read from the reader.
func RunEncryptField(fieldCipher cryptoService.FieldCipher, value string, tuple IOTuple) error {
	value, err := valueOrStdin(value, "", tuple)
	if err != nil {
		return err
	}

	encrypted, err := fieldCipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt field: %w", err)
	}

	_, _ = fmt.Fprintln(tuple.Writer, encrypted)
	return nil
}

// RunDecryptField prints the plaintext of a stored value, or its masked form when mask is set.
func RunDecryptField(fieldCipher cryptoService.FieldCipher, value string, mask bool, tuple IOTuple) error {
	value, err := valueOrStdin(value, "", tuple)
	if err != nil {
		return err
	}

	plaintext, err := fieldCipher.Decrypt(value)
	if err != nil {
		return fmt.Errorf("failed to decrypt field: %w", err)
	}

	if mask {
		plaintext = cryptoService.MaskSIN(plaintext)
	}
	_, _ = fmt.Fprintln(tuple.Writer, plaintext)
	return nil
}
