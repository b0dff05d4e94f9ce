package licensekey

// xorHasher is the demonstration hasher used throughout the tests. Never use
// it for real keys.
var xorHasher = HasherFunc(func(seed, a, b, c uint64) byte {
	return byte((seed ^ a ^ b ^ c) & 0xFF)
})

var testIVs = []IV{
	{A: 114, B: 83, C: 170},
	{A: 60, B: 208, C: 27},
	{A: 69, B: 14, C: 202},
	{A: 61, B: 232, C: 54},
}

func newTestGenerator() *Generator {
	return NewGenerator(xorHasher, testIVs)
}

func newTestVerifier() *Verifier {
	return NewVerifier(xorHasher, []ByteCheck{
		NewByteCheck(0, testIVs[0]),
		NewByteCheck(2, testIVs[2]),
	})
}

// withChecksum returns b with its last two bytes replaced by a fresh checksum.
func withChecksum(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	sum := Checksum(out[:len(out)-ChecksumSize])
	copy(out[len(out)-ChecksumSize:], sum[:])
	return out
}

func mustFromBytes(b []byte) LicenseKey {
	key, err := FromBytes(b)
	if err != nil {
		panic(err)
	}
	return key
}
