package keyhash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/scrypt"

	"licensekey/pkg/licensekey"
)

var (
	// ErrEmptySecret is returned when a keyed hasher is built without a secret.
	ErrEmptySecret = errors.New("keyhash: secret cannot be empty")
	// ErrSecretTooLong is returned when a secret exceeds the BLAKE2b key size.
	ErrSecretTooLong = errors.New("keyhash: secret exceeds 64 bytes")
	// ErrShortSalt is returned when DeriveSecret gets a salt below MinSaltSize.
	ErrShortSalt = errors.New("keyhash: salt too short")
)

// Scrypt parameters used by DeriveSecret.
const (
	ScryptN     = 32768
	ScryptR     = 8
	ScryptP     = 1
	SecretSize  = 32
	MinSaltSize = 16
	inputSize   = 32
)

// XOR returns (seed ^ a ^ b ^ c) & 0xFF. It is trivially invertible and only
// suitable for examples and tests.
var XOR = licensekey.HasherFunc(func(seed, a, b, c uint64) byte {
	return byte((seed ^ a ^ b ^ c) & 0xFF)
})

// Blake2b derives payload bytes from a keyed BLAKE2b-256 digest of the seed
// and IV. It is safe for concurrent use.
type Blake2b struct {
	secret []byte
}

// NewBlake2b creates a BLAKE2b hasher keyed with secret (1 to 64 bytes).
func NewBlake2b(secret []byte) (*Blake2b, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(secret) > blake2b.Size {
		return nil, ErrSecretTooLong
	}

	// Fail now rather than on the first Hash call.
	if _, err := blake2b.New256(secret); err != nil {
		return nil, fmt.Errorf("keyhash: invalid blake2b key: %w", err)
	}

	return &Blake2b{secret: append([]byte(nil), secret...)}, nil
}

// Hash implements licensekey.KeyHasher.
func (h *Blake2b) Hash(seed, a, b, c uint64) byte {
	d, _ := blake2b.New256(h.secret)
	return digestFirstByte(d, seed, a, b, c)
}

// HMAC derives payload bytes from HMAC-SHA256 of the seed and IV.
type HMAC struct {
	secret []byte
}

// NewHMAC creates an HMAC-SHA256 hasher keyed with secret.
func NewHMAC(secret []byte) (*HMAC, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &HMAC{secret: append([]byte(nil), secret...)}, nil
}

// Hash implements licensekey.KeyHasher.
func (h *HMAC) Hash(seed, a, b, c uint64) byte {
	return digestFirstByte(hmac.New(sha256.New, h.secret), seed, a, b, c)
}

// digestFirstByte writes seed, a, b and c big-endian into d and returns the
// first byte of the digest.
func digestFirstByte(d hash.Hash, seed, a, b, c uint64) byte {
	var in [inputSize]byte
	binary.BigEndian.PutUint64(in[0:8], seed)
	binary.BigEndian.PutUint64(in[8:16], a)
	binary.BigEndian.PutUint64(in[16:24], b)
	binary.BigEndian.PutUint64(in[24:32], c)

	d.Write(in[:])
	return d.Sum(nil)[0]
}

// DeriveSecret stretches an operator passphrase into a SecretSize-byte secret
// with scrypt. The same passphrase and salt always yield the same secret.
func DeriveSecret(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptySecret
	}
	if len(salt) < MinSaltSize {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrShortSalt, len(salt), MinSaltSize)
	}

	secret, err := scrypt.Key(passphrase, salt, ScryptN, ScryptR, ScryptP, SecretSize)
	if err != nil {
		return nil, fmt.Errorf("keyhash: scrypt key derivation failed: %w", err)
	}

	return secret, nil
}
