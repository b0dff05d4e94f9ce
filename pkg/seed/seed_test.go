package seed

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromIdentity(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		assert.Equal(t, FromIdentity("alice@example.com"), FromIdentity("  Alice@Example.COM\n"))
	})

	t.Run("different identities differ", func(t *testing.T) {
		assert.NotEqual(t, FromIdentity("alice@example.com"), FromIdentity("bob@example.com"))
	})

	t.Run("matches the name-based UUID", func(t *testing.T) {
		id := uuid.NewSHA1(Namespace, []byte("alice@example.com"))
		assert.Equal(t, FromUUID(id), FromIdentity("alice@example.com"))
	})
}

func TestFromUUID(t *testing.T) {
	id := uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")
	assert.Equal(t, uint64(0x0102030405060708), FromUUID(id))
}

func TestRandom(t *testing.T) {
	seen := make(map[uint64]struct{})
	for i := 0; i < 100; i++ {
		seen[Random()] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "bob@example.com", Normalize(" BOB@example.com "))
	assert.Equal(t, "", Normalize("   "))
}
