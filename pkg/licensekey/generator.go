package licensekey

import "encoding/binary"

// IV is one initialization-vector triplet. Each IV held by a Generator
// derives one payload byte.
type IV struct {
	A, B, C uint64
}

// Generator creates license keys. It holds the complete IV table and must
// never ship inside the software that verifies keys.
type Generator struct {
	hasher KeyHasher
	ivs    []IV
}

// NewGenerator creates a generator. The IV slice is copied; the position of
// an IV in the slice is the ordinal of the payload byte it derives.
func NewGenerator(hasher KeyHasher, ivs []IV) *Generator {
	table := make([]IV, len(ivs))
	copy(table, ivs)

	return &Generator{
		hasher: hasher,
		ivs:    table,
	}
}

// Len returns the payload length of keys produced by this generator.
func (g *Generator) Len() int {
	return len(g.ivs)
}

// Generate creates the key for seed.
func (g *Generator) Generate(seed uint64) LicenseKey {
	buf := make([]byte, SeedSize, SeedSize+len(g.ivs)+ChecksumSize)
	binary.BigEndian.PutUint64(buf, seed)

	for _, iv := range g.ivs {
		buf = append(buf, g.hasher.Hash(seed, iv.A, iv.B, iv.C))
	}

	sum := Checksum(buf)
	buf = append(buf, sum[:]...)

	return newLicenseKey(buf)
}
