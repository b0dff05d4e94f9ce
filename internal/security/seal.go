// Package security seals hasher secrets so keyring files can be stored
// without exposing them in plain text.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// SealPrefix marks the sealed text format version.
const SealPrefix = "v1."

var (
	ErrEmptyPlaintext  = errors.New("plaintext cannot be empty")
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")
	ErrSealedFormat    = errors.New("malformed sealed secret")
	ErrUnsealFailed    = errors.New("unseal failed: wrong passphrase or tampered data")
)

// SealConfig defines the key derivation parameters. Text sealed with one
// configuration can only be opened with the same configuration.
type SealConfig struct {
	// SCRYPT parameters
	SCryptN  int
	SCryptR  int
	SCryptP  int
	SaltSize int
}

// DefaultSealConfig returns the parameters used when none are given.
func DefaultSealConfig() *SealConfig {
	return &SealConfig{
		SCryptN:  32768,
		SCryptR:  8,
		SCryptP:  1,
		SaltSize: 16,
	}
}

// Validate rejects parameters too weak to protect a secret.
func (c *SealConfig) Validate() error {
	if c == nil {
		return errors.New("seal config cannot be nil")
	}
	if c.SCryptN < 1024 || c.SCryptN&(c.SCryptN-1) != 0 {
		return errors.New("SCryptN must be a power of two and at least 1024")
	}
	if c.SCryptR < 1 {
		return errors.New("SCryptR must be at least 1")
	}
	if c.SCryptP < 1 {
		return errors.New("SCryptP must be at least 1")
	}
	if c.SaltSize < 16 {
		return errors.New("SaltSize must be at least 16")
	}
	return nil
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from
// passphrase with scrypt. The result is "v1." followed by the URL-safe
// base64 of salt, nonce and ciphertext.
func Seal(plaintext, passphrase []byte, cfg *SealConfig) (string, error) {
	if len(plaintext) == 0 {
		return "", ErrEmptyPlaintext
	}
	if len(passphrase) == 0 {
		return "", ErrEmptyPassphrase
	}
	if cfg == nil {
		cfg = DefaultSealConfig()
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	salt := make([]byte, cfg.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(passphrase, salt, cfg)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, []byte(SealPrefix))

	return SealPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

// Open reverses Seal. The caller should Wipe the result once it is no
// longer needed.
func Open(sealed string, passphrase []byte, cfg *SealConfig) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if cfg == nil {
		cfg = DefaultSealConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	body, ok := strings.CutPrefix(strings.TrimSpace(sealed), SealPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrSealedFormat, SealPrefix)
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedFormat, err)
	}
	if len(raw) < cfg.SaltSize {
		return nil, fmt.Errorf("%w: too short", ErrSealedFormat)
	}

	salt := raw[:cfg.SaltSize]
	gcm, err := newGCM(passphrase, salt, cfg)
	if err != nil {
		return nil, err
	}

	rest := raw[cfg.SaltSize:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrSealedFormat)
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(SealPrefix))
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plaintext, nil
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func newGCM(passphrase, salt []byte, cfg *SealConfig) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, cfg.SCryptN, cfg.SCryptR, cfg.SCryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer Wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
