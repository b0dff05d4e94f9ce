package licensekey

// KeyHasher turns a seed and one initialization vector into a payload byte.
// Implementations must be deterministic, and the generator and every verifier
// checking a given ordinal must use the same one.
type KeyHasher interface {
	Hash(seed, a, b, c uint64) byte
}

// HasherFunc adapts an ordinary function to the KeyHasher interface.
type HasherFunc func(seed, a, b, c uint64) byte

// Hash calls f(seed, a, b, c).
func (f HasherFunc) Hash(seed, a, b, c uint64) byte {
	return f(seed, a, b, c)
}
