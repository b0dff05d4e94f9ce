// Package seed derives 64-bit license key seeds from owner identities.
//
// A seed identifies the owner of a key and is the value that ends up on the
// blocklist when a key leaks, so it must be reproducible from whatever the
// vendor stores about the customer (usually an e-mail address).
package seed

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// Namespace is the UUID namespace identity-based seeds are derived in.
// Changing it changes every identity seed.
var Namespace = uuid.MustParse("6f1c8a52-4d0b-5b7e-9a43-2c1e7d5f3b90")

// FromIdentity returns the seed for an owner identity. Identities are
// compared case-insensitively and without surrounding whitespace.
func FromIdentity(identity string) uint64 {
	return FromUUID(uuid.NewSHA1(Namespace, []byte(Normalize(identity))))
}

// FromUUID returns the first 8 bytes of id as a big-endian seed.
func FromUUID(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[:8])
}

// Random returns a seed taken from a fresh random UUID.
func Random() uint64 {
	return FromUUID(uuid.New())
}

// Normalize trims and lowercases identity.
func Normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
