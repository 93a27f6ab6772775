package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/screening/internal/crypto/domain"
)

// FieldCipherOption configures a FieldCipher.
type FieldCipherOption func(*fieldCipher)

// WithStrictDecrypt makes Decrypt reject values that lack the iv:cipher separator.
func WithStrictDecrypt(strict bool) FieldCipherOption {
	return func(f *fieldCipher) {
		f.strict = strict
	}
}

// fieldCipher implements FieldCipher with AES-256-CBC and PKCS#7 padding.
type fieldCipher struct {
	block  cipher.Block
	strict bool
}

// NewFieldCipher derives the field key from secret and salt and returns a FieldCipher.
// The derivation is deterministic, so every process sharing the secret decrypts
// values written by the others.
func NewFieldCipher(secret, salt string, opts ...FieldCipherOption) (FieldCipher, error) {
	if secret == "" {
		return nil, cryptoDomain.ErrEmptySecret
	}

	key := pbkdf2.Key(
		[]byte(secret),
		[]byte(salt),
		cryptoDomain.FieldKDFIterations,
		cryptoDomain.FieldKeyBytes,
		sha256.New,
	)
	defer cryptoDomain.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(cryptoDomain.ErrHash, err)
	}

	f := &fieldCipher{block: block}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Encrypt implements FieldCipher.
func (f *fieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	iv := make([]byte, cryptoDomain.FieldIVBytes)
	if _, err := rand.Read(iv); err != nil {
		return "", errors.Join(cryptoDomain.ErrHash, err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(f.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + cryptoDomain.FieldSeparator + hex.EncodeToString(ciphertext), nil
}

// Decrypt implements FieldCipher.
func (f *fieldCipher) Decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	ivHex, cipherHex, found := strings.Cut(value, cryptoDomain.FieldSeparator)
	if !found {
		if f.strict {
			return "", cryptoDomain.ErrDecryption
		}
		return value, nil
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != cryptoDomain.FieldIVBytes {
		return "", cryptoDomain.ErrDecryption
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", cryptoDomain.ErrDecryption
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(f.block, iv).CryptBlocks(padded, ciphertext)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok {
		return "", cryptoDomain.ErrDecryption
	}
	return string(plaintext), nil
}

// IsEncrypted implements FieldCipher.
func (f *fieldCipher) IsEncrypted(value string) bool {
	ivHex, cipherHex, found := strings.Cut(value, cryptoDomain.FieldSeparator)
	if !found || len(ivHex) != cryptoDomain.FieldIVBytes*2 {
		return false
	}
	if cipherHex == "" || len(cipherHex)%(aes.BlockSize*2) != 0 {
		return false
	}
	return isHex(ivHex) && isHex(cipherHex)
}

// MaskSIN hides every digit of a social insurance or security number except the last three.
// Separators are kept so the display keeps its grouping.
func MaskSIN(value string) string {
	digits := 0
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits++
		}
	}

	var b strings.Builder
	b.Grow(len(value))
	seen := 0
	for _, r := range value {
		if unicode.IsDigit(r) {
			seen++
			if seen <= digits-3 {
				b.WriteByte('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}
