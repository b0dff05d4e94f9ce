package keyhash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensekey/pkg/licensekey"
)

var testIVs = []licensekey.IV{
	{A: 114, B: 83, C: 170},
	{A: 60, B: 208, C: 27},
	{A: 69, B: 14, C: 202},
	{A: 61, B: 232, C: 54},
}

func TestXOR(t *testing.T) {
	assert.Equal(t, byte(0xB2), XOR.Hash(12345, 114, 83, 170))
	assert.Equal(t, byte(0x00), XOR.Hash(0xFF, 0xFF, 0, 0))
}

func TestNewBlake2b(t *testing.T) {
	tests := []struct {
		name    string
		secret  []byte
		wantErr error
	}{
		{"empty", nil, ErrEmptySecret},
		{"too long", bytes.Repeat([]byte{1}, 65), ErrSecretTooLong},
		{"one byte", []byte{1}, nil},
		{"max size", bytes.Repeat([]byte{1}, 64), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewBlake2b(tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, h)
		})
	}
}

func TestKeyedHashers(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	other := []byte("fedcba9876543210fedcba9876543210")

	build := map[string]func([]byte) (licensekey.KeyHasher, error){
		"blake2b": func(s []byte) (licensekey.KeyHasher, error) { return NewBlake2b(s) },
		"hmac":    func(s []byte) (licensekey.KeyHasher, error) { return NewHMAC(s) },
	}

	for name, newHasher := range build {
		t.Run(name, func(t *testing.T) {
			h, err := newHasher(secret)
			require.NoError(t, err)
			same, err := newHasher(append([]byte(nil), secret...))
			require.NoError(t, err)
			diff, err := newHasher(other)
			require.NoError(t, err)

			gen := licensekey.NewGenerator(h, testIVs)
			ver := licensekey.NewVerifier(same, []licensekey.ByteCheck{
				licensekey.NewByteCheck(1, testIVs[1]),
				licensekey.NewByteCheck(3, testIVs[3]),
			})
			wrong := licensekey.NewVerifier(diff, []licensekey.ByteCheck{
				licensekey.NewByteCheck(0, testIVs[0]),
				licensekey.NewByteCheck(1, testIVs[1]),
				licensekey.NewByteCheck(2, testIVs[2]),
				licensekey.NewByteCheck(3, testIVs[3]),
			})

			forged := 0
			for seed := uint64(0); seed < 64; seed++ {
				key := gen.Generate(seed)
				assert.Equal(t, licensekey.Valid, ver.Verify(key))
				if wrong.Verify(key) == licensekey.Forged {
					forged++
				}
			}

			// A different secret should disagree on almost every key.
			assert.Greater(t, forged, 48)
		})
	}
}

func TestKeyedHasherDeterministic(t *testing.T) {
	h, err := NewBlake2b([]byte("secret"))
	require.NoError(t, err)

	first := h.Hash(1, 2, 3, 4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, h.Hash(1, 2, 3, 4))
	}
}

func TestKeyedHasherCopiesSecret(t *testing.T) {
	secret := []byte("mutable-secret")
	h, err := NewHMAC(secret)
	require.NoError(t, err)
	before := h.Hash(9, 8, 7, 6)

	secret[0] = 'X'
	assert.Equal(t, before, h.Hash(9, 8, 7, 6))
}

func TestDeriveSecret(t *testing.T) {
	salt := []byte("0123456789abcdef")

	t.Run("deterministic", func(t *testing.T) {
		a, err := DeriveSecret([]byte("correct horse"), salt)
		require.NoError(t, err)
		b, err := DeriveSecret([]byte("correct horse"), salt)
		require.NoError(t, err)

		assert.Len(t, a, SecretSize)
		assert.Equal(t, a, b)
	})

	t.Run("salt matters", func(t *testing.T) {
		a, err := DeriveSecret([]byte("correct horse"), salt)
		require.NoError(t, err)
		b, err := DeriveSecret([]byte("correct horse"), []byte("fedcba9876543210"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects short salt", func(t *testing.T) {
		_, err := DeriveSecret([]byte("pw"), []byte("short"))
		assert.ErrorIs(t, err, ErrShortSalt)
	})

	t.Run("rejects empty passphrase", func(t *testing.T) {
		_, err := DeriveSecret(nil, salt)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})
}
