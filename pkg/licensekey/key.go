package licensekey

import (
	"encoding/binary"
	"fmt"
)

// Layout of a license key.
const (
	SeedSize     = 8
	ChecksumSize = 2
	// MinKeyLength is the length of a key with an empty payload.
	MinKeyLength = SeedSize + ChecksumSize
)

// LicenseKey is a generated or parsed license key. It is read-only: every
// accessor returning bytes returns a copy.
type LicenseKey struct {
	bytes []byte
}

// newLicenseKey takes ownership of b. Callers guarantee len(b) >= MinKeyLength.
func newLicenseKey(b []byte) LicenseKey {
	return LicenseKey{bytes: b}
}

// FromBytes builds a key from raw bytes. The input is copied.
func FromBytes(b []byte) (LicenseKey, error) {
	if len(b) < MinKeyLength {
		return LicenseKey{}, fmt.Errorf("%w: got %d bytes, need at least %d", ErrKeyTooShort, len(b), MinKeyLength)
	}

	owned := make([]byte, len(b))
	copy(owned, b)

	return newLicenseKey(owned), nil
}

// Parse decodes text with the given codec and builds a key from the result.
// Decoding failures are returned as errors and never surface as a Status.
func Parse(text string, codec Codec) (LicenseKey, error) {
	if codec == nil {
		codec = HexCodec{}
	}

	raw, err := codec.Decode(text)
	if err != nil {
		return LicenseKey{}, err
	}

	if len(raw) < MinKeyLength {
		return LicenseKey{}, fmt.Errorf("%w: got %d bytes, need at least %d", ErrKeyTooShort, len(raw), MinKeyLength)
	}

	return newLicenseKey(raw), nil
}

// Format encodes the key with the given codec.
func (k LicenseKey) Format(codec Codec) string {
	if codec == nil {
		codec = HexCodec{}
	}
	return codec.Encode(k.bytes)
}

// String returns the lowercase hex form of the key.
func (k LicenseKey) String() string {
	return HexCodec{}.Encode(k.bytes)
}

// Bytes returns a copy of the raw key bytes.
func (k LicenseKey) Bytes() []byte {
	out := make([]byte, len(k.bytes))
	copy(out, k.bytes)
	return out
}

// Len returns the total key length in bytes.
func (k LicenseKey) Len() int {
	return len(k.bytes)
}

// IsZero reports whether the key holds no bytes at all.
func (k LicenseKey) IsZero() bool {
	return len(k.bytes) == 0
}

// PayloadLen returns the number of payload bytes.
func (k LicenseKey) PayloadLen() int {
	if len(k.bytes) < MinKeyLength {
		return 0
	}
	return len(k.bytes) - MinKeyLength
}

// Seed returns the big-endian seed stored in the first 8 bytes.
func (k LicenseKey) Seed() uint64 {
	if len(k.bytes) < SeedSize {
		return 0
	}
	return binary.BigEndian.Uint64(k.bytes[:SeedSize])
}

// Payload returns a copy of the payload region.
func (k LicenseKey) Payload() []byte {
	n := k.PayloadLen()
	out := make([]byte, n)
	copy(out, k.bytes[SeedSize:SeedSize+n])
	return out
}

// PayloadByte returns the payload byte at ordinal. The second return value is
// false when the ordinal points into the checksum or past the end of the key.
func (k LicenseKey) PayloadByte(ordinal int) (byte, bool) {
	if ordinal < 0 {
		return 0, false
	}

	index := SeedSize + ordinal
	if index >= len(k.bytes)-ChecksumSize || index >= len(k.bytes) {
		return 0, false
	}

	return k.bytes[index], true
}

// Checksum returns the checksum stored in the last two bytes.
func (k LicenseKey) Checksum() [ChecksumSize]byte {
	var sum [ChecksumSize]byte
	if len(k.bytes) < ChecksumSize {
		return sum
	}
	copy(sum[:], k.bytes[len(k.bytes)-ChecksumSize:])
	return sum
}

// ComputeChecksum recomputes the checksum over seed and payload.
func (k LicenseKey) ComputeChecksum() [ChecksumSize]byte {
	if len(k.bytes) < ChecksumSize {
		return Checksum(nil)
	}
	return Checksum(k.bytes[:len(k.bytes)-ChecksumSize])
}

// ChecksumValid reports whether the stored checksum matches the recomputed one.
func (k LicenseKey) ChecksumValid() bool {
	return len(k.bytes) >= MinKeyLength && k.Checksum() == k.ComputeChecksum()
}
