package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	keySize   = 32
	ivSize    = 16
	tagSize   = 16
	separator = ":"
)

var (
	ErrDecryptionFailed = errors.New("secret decryption failed")
	ErrKeyMissing       = errors.New("encryption key is not configured")
	ErrInvalidKey       = errors.New("encryption key must be 32 bytes or 64 hex characters")
)

// Box seals tenant secrets as iv_hex:tag_hex:ciphertext_hex using AES-256-GCM.
type Box interface {
	Encrypt(plain string) (string, error)
	// Decrypt returns values that are not in the sealed format unchanged.
	Decrypt(value string) (string, error)
}

type box struct {
	aead cipher.AEAD
}

// NewBox accepts the key either hex encoded or as 32 raw bytes. An empty key
// yields a Box that only passes legacy plaintext through.
func NewBox(key string) (Box, error) {
	if key == "" {
		return &box{}, nil
	}

	raw, err := parseKey(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}

	return &box{aead: aead}, nil
}

func parseKey(key string) ([]byte, error) {
	if len(key) == keySize*2 {
		if raw, err := hex.DecodeString(key); err == nil {
			return raw, nil
		}
	}

	if len(key) == keySize {
		return []byte(key), nil
	}

	return nil, ErrInvalidKey
}

func (b *box) Encrypt(plain string) (string, error) {
	if b.aead == nil {
		return "", ErrKeyMissing
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := b.aead.Seal(nil, iv, []byte(plain), nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{hex.EncodeToString(iv), hex.EncodeToString(tag), hex.EncodeToString(ciphertext)}, separator), nil
}

func (b *box) Decrypt(value string) (string, error) {
	iv, tag, ciphertext, ok := split(value)
	if !ok {
		return value, nil
	}

	if b.aead == nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrKeyMissing)
	}

	plain, err := b.aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return string(plain), nil
}

// IsSealed reports whether value has the iv:tag:ciphertext shape.
func IsSealed(value string) bool {
	_, _, _, ok := split(value)

	return ok
}

func split(value string) (iv, tag, ciphertext []byte, ok bool) {
	parts := strings.Split(value, separator)
	if len(parts) != 3 {
		return nil, nil, nil, false
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivSize {
		return nil, nil, nil, false
	}

	tag, err = hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagSize {
		return nil, nil, nil, false
	}

	ciphertext, err = hex.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, false
	}

	return iv, tag, ciphertext, true
}
