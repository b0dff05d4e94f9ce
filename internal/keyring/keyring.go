// Package keyring loads generator and verifier keyrings from YAML files.
//
// A generator keyring holds every initialization vector and must stay with
// the issuer. A verifier keyring holds a subset of those vectors, tagged with
// their ordinal in the key payload, plus the blocked seeds. Shipping only
// verifier keyrings means a cracked client exposes only part of the scheme.
package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v2"

	"licensekey/internal/security"
	"licensekey/pkg/keyhash"
	"licensekey/pkg/licensekey"
)

var (
	ErrInvalidKeyring = errors.New("invalid keyring")
	ErrUnknownHasher  = errors.New("unknown hasher algorithm")
)

// Hasher algorithms.
const (
	AlgorithmXOR     = "xor"
	AlgorithmBlake2b = "blake2b"
	AlgorithmHMAC    = "hmac"
)

// HasherSpec selects the keyed hash and its secret. Keyed algorithms take
// the secret from exactly one of: Secret (hex), Sealed (unlocked with
// Passphrase) or Passphrase together with Salt (scrypt derivation).
// Passphrase and Secret may reference environment variables as $VAR.
type HasherSpec struct {
	Algorithm  string `yaml:"algorithm" validate:"required,oneof=xor blake2b hmac"`
	Secret     string `yaml:"secret,omitempty" validate:"omitempty,secretref"`
	Sealed     string `yaml:"sealed,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty"`
	Salt       string `yaml:"salt,omitempty"`
}

// GeneratorFile is the on-disk form of a generator keyring.
type GeneratorFile struct {
	Hasher  HasherSpec `yaml:"hasher"`
	Vectors [][]uint64 `yaml:"vectors" validate:"required,min=1,dive,len=3"`
}

// CheckSpec is one verifier check: the payload ordinal and its vector.
type CheckSpec struct {
	Ordinal int      `yaml:"ordinal" validate:"gte=0"`
	IV      []uint64 `yaml:"iv" validate:"len=3"`
}

// VerifierFile is the on-disk form of a verifier keyring.
type VerifierFile struct {
	Hasher  HasherSpec  `yaml:"hasher"`
	Checks  []CheckSpec `yaml:"checks" validate:"dive"`
	Blocked []uint64    `yaml:"blocked,omitempty"`
}

// LoadGenerator reads and validates a generator keyring file.
func LoadGenerator(path string) (*GeneratorFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read generator keyring: %w", err)
	}
	return ParseGenerator(data)
}

// LoadVerifier reads and validates a verifier keyring file.
func LoadVerifier(path string) (*VerifierFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read verifier keyring: %w", err)
	}
	return ParseVerifier(data)
}

// ParseGenerator decodes and validates a generator keyring document.
func ParseGenerator(data []byte) (*GeneratorFile, error) {
	var f GeneratorFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyring, err)
	}
	if err := validate(&f); err != nil {
		return nil, err
	}
	if err := f.Hasher.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseVerifier decodes and validates a verifier keyring document.
func ParseVerifier(data []byte) (*VerifierFile, error) {
	var f VerifierFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyring, err)
	}
	if err := validate(&f); err != nil {
		return nil, err
	}
	if err := f.Hasher.check(); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(f.Checks))
	for _, c := range f.Checks {
		if seen[c.Ordinal] {
			return nil, fmt.Errorf("%w: duplicate check for ordinal %d", ErrInvalidKeyring, c.Ordinal)
		}
		seen[c.Ordinal] = true
	}
	return &f, nil
}

// Build creates the generator described by the file.
func (f *GeneratorFile) Build() (*licensekey.Generator, error) {
	h, err := f.Hasher.Build()
	if err != nil {
		return nil, err
	}

	ivs := make([]licensekey.IV, len(f.Vectors))
	for i, v := range f.Vectors {
		ivs[i] = toIV(v)
	}
	return licensekey.NewGenerator(h, ivs), nil
}

// VerifierFor derives a verifier keyring that checks only the given payload
// ordinals. The hasher spec is carried over unchanged.
func (f *GeneratorFile) VerifierFor(ordinals ...int) (*VerifierFile, error) {
	if len(ordinals) == 0 {
		return nil, fmt.Errorf("%w: no ordinals selected", ErrInvalidKeyring)
	}

	vf := &VerifierFile{Hasher: f.Hasher}
	for _, o := range ordinals {
		if o < 0 || o >= len(f.Vectors) {
			return nil, fmt.Errorf("%w: ordinal %d outside 0..%d", ErrInvalidKeyring, o, len(f.Vectors)-1)
		}
		if slices.ContainsFunc(vf.Checks, func(c CheckSpec) bool { return c.Ordinal == o }) {
			return nil, fmt.Errorf("%w: duplicate ordinal %d", ErrInvalidKeyring, o)
		}
		vf.Checks = append(vf.Checks, CheckSpec{
			Ordinal: o,
			IV:      slices.Clone(f.Vectors[o]),
		})
	}
	return vf, nil
}

// Build creates the verifier described by the file with its blocklist
// preloaded.
func (f *VerifierFile) Build() (*licensekey.Verifier, error) {
	h, err := f.Hasher.Build()
	if err != nil {
		return nil, err
	}

	checks := make([]licensekey.ByteCheck, len(f.Checks))
	for i, c := range f.Checks {
		checks[i] = licensekey.NewByteCheck(c.Ordinal, toIV(c.IV))
	}

	v := licensekey.NewVerifier(h, checks)
	v.BlockAll(f.Blocked...)
	return v, nil
}

// Marshal renders the verifier keyring as YAML.
func (f *VerifierFile) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Save writes the verifier keyring to path.
func (f *VerifierFile) Save(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode verifier keyring: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write verifier keyring: %w", err)
	}
	return nil
}

// Build returns the hasher the spec describes.
func (s HasherSpec) Build() (licensekey.KeyHasher, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if s.Algorithm == AlgorithmXOR {
		return keyhash.XOR, nil
	}

	secret, err := s.secret()
	if err != nil {
		return nil, err
	}
	defer security.Wipe(secret)

	var h licensekey.KeyHasher
	switch s.Algorithm {
	case AlgorithmBlake2b:
		h, err = keyhash.NewBlake2b(secret)
	case AlgorithmHMAC:
		h, err = keyhash.NewHMAC(secret)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, s.Algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyring, err)
	}
	return h, nil
}

func (s HasherSpec) check() error {
	switch s.Algorithm {
	case AlgorithmXOR:
		return nil
	case AlgorithmBlake2b, AlgorithmHMAC:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHasher, s.Algorithm)
	}

	sources := 0
	if s.Secret != "" {
		sources++
	}
	if s.Sealed != "" {
		sources++
		if s.Passphrase == "" {
			return fmt.Errorf("%w: sealed secret needs a passphrase", ErrInvalidKeyring)
		}
	}
	if s.Sealed == "" && s.Passphrase != "" {
		sources++
		if s.Salt == "" {
			return fmt.Errorf("%w: passphrase needs a salt", ErrInvalidKeyring)
		}
	}

	switch sources {
	case 0:
		return fmt.Errorf("%w: %s hasher needs a secret", ErrInvalidKeyring, s.Algorithm)
	case 1:
		return nil
	default:
		return fmt.Errorf("%w: %s hasher has more than one secret source", ErrInvalidKeyring, s.Algorithm)
	}
}

func (s HasherSpec) secret() ([]byte, error) {
	switch {
	case s.Secret != "":
		b, err := hex.DecodeString(expand(s.Secret))
		if err != nil {
			return nil, fmt.Errorf("%w: secret is not hex: %v", ErrInvalidKeyring, err)
		}
		return b, nil
	case s.Sealed != "":
		b, err := security.Open(s.Sealed, []byte(expand(s.Passphrase)), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal hasher secret: %w", err)
		}
		return b, nil
	default:
		b, err := keyhash.DeriveSecret([]byte(expand(s.Passphrase)), []byte(s.Salt))
		if err != nil {
			return nil, fmt.Errorf("failed to derive hasher secret: %w", err)
		}
		return b, nil
	}
}

// expand resolves a value of the form $VAR or ${VAR} from the environment.
// Anything else is returned unchanged.
func expand(v string) string {
	if len(v) > 1 && v[0] == '$' {
		return os.ExpandEnv(v)
	}
	return v
}

func toIV(v []uint64) licensekey.IV {
	return licensekey.IV{A: v[0], B: v[1], C: v[2]}
}
