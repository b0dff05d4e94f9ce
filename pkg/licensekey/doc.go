// Package licensekey implements offline license key generation and partial
// verification. A key is derived from a 64-bit seed and a secret table of
// initialization vectors, and can later be verified without knowledge of the
// full table.
//
// # Anatomy of a License Key
//
// Every key has the same fixed layout:
//
//	| seed (8 bytes, big-endian) | payload (N bytes) | checksum (2 bytes) |
//
// The payload holds one byte per initialization vector used at generation.
// The checksum covers seed and payload and is used to reject mistyped keys
// before any further work is done.
//
// # Generating Keys
//
//	gen := licensekey.NewGenerator(hasher, []licensekey.IV{
//		{A: 114, B: 83, C: 170},
//		{A: 60, B: 208, C: 27},
//	})
//	key := gen.Generate(seed)
//	text := licensekey.HexCodec{}.Encode(key.Bytes())
//
// # Verifying Keys
//
// A Verifier only re-derives the payload bytes it was configured with. If a
// third-party key generator appears, ship a release that checks a different
// ordinal and the forged keys stop working:
//
//	ver := licensekey.NewVerifier(hasher, []licensekey.ByteCheck{
//		licensekey.NewByteCheck(0, licensekey.IV{A: 114, B: 83, C: 170}),
//	})
//	ver.Block(leakedSeed)
//
//	key, err := licensekey.Parse(text, licensekey.HexCodec{})
//	if err != nil {
//		return err // malformed input, not a verification outcome
//	}
//	switch ver.Verify(key) {
//	case licensekey.Valid:
//	case licensekey.Blocked:
//	}
//
// # Verification Order
//
// Verify evaluates, in order: checksum, blocklist, configured byte checks.
// The first failing step decides the Status. A check whose ordinal lies
// outside the key's payload yields Invalid.
//
// # Security
//
// This package is not a cryptographic primitive. It raises the cost of
// writing a key generator from a disassembled verifier, nothing more.
package licensekey
