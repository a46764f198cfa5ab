package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	encryptionKeyInfo = "payment-broker/terminal-secret/aes-256-gcm"
	hashKeyInfo       = "payment-broker/terminal-secret/hmac-sha256"
	derivedKeySize    = 32
)

var (
	// ErrInvalidCiphertext is returned when a ciphertext is malformed or fails authentication.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	// ErrEmptyKeyMaterial is returned when no encryption secret is configured.
	ErrEmptyKeyMaterial = errors.New("encryption key material is empty")

	nonceReader io.Reader = rand.Reader
)

// EncryptionService protects terminal secrets at rest.
// Keys are derived from configuration, so every instance built from the same
// configuration can decrypt what any other instance encrypted.
type EncryptionService struct {
	aead    cipher.AEAD
	hashKey []byte
}

// NewEncryptionService derives an AES-256 key and an HMAC key from the
// configured secret and salt using HKDF-SHA256.
func NewEncryptionService(secret, salt string) (*EncryptionService, error) {
	if secret == "" {
		return nil, ErrEmptyKeyMaterial
	}

	encKey, err := deriveKey(secret, salt, encryptionKeyInfo)
	if err != nil {
		return nil, err
	}
	hashKey, err := deriveKey(secret, salt, hashKeyInfo)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("aes cipher init failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("aes-gcm init failed: %w", err)
	}

	return &EncryptionService{aead: gcm, hashKey: hashKey}, nil
}

func deriveKey(secret, salt, info string) ([]byte, error) {
	key := make([]byte, derivedKeySize)
	r := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (s *EncryptionService) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(nonceReader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation failed: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Tampered input is an error.
func (s *EncryptionService) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize+s.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	return string(plaintext), nil
}

// Hash returns the hex HMAC-SHA256 digest of plaintext. It is deterministic
// and safe to use as a unique lookup index.
func (s *EncryptionService) Hash(plaintext string) string {
	mac := hmac.New(sha256.New, s.hashKey)
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}
