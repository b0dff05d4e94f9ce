package licensekey

// ByteCheck tells a Verifier to re-derive the payload byte at Ordinal using IV.
type ByteCheck struct {
	Ordinal int
	IV      IV
}

// NewByteCheck creates a check for the payload byte at ordinal.
func NewByteCheck(ordinal int, iv IV) ByteCheck {
	return ByteCheck{Ordinal: ordinal, IV: iv}
}

// Verifier decides the Status of license keys. It knows only the IVs of the
// ordinals it checks, so recovering its logic is not enough to build a
// working generator.
type Verifier struct {
	hasher    KeyHasher
	checks    []ByteCheck
	blocklist *Blocklist
}

// NewVerifier creates a verifier with an empty blocklist. The checks are
// copied and evaluated in the given order.
func NewVerifier(hasher KeyHasher, checks []ByteCheck) *Verifier {
	own := make([]ByteCheck, len(checks))
	copy(own, checks)

	return &Verifier{
		hasher:    hasher,
		checks:    own,
		blocklist: NewBlocklist(),
	}
}

// Block revokes seed.
func (v *Verifier) Block(seed uint64) {
	v.blocklist.Add(seed)
}

// BlockAll revokes every seed in seeds.
func (v *Verifier) BlockAll(seeds ...uint64) {
	v.blocklist.Add(seeds...)
}

// Unblock reinstates seed. It reports whether the seed was blocked.
func (v *Verifier) Unblock(seed uint64) bool {
	return v.blocklist.Remove(seed)
}

// IsBlocked reports whether seed is revoked.
func (v *Verifier) IsBlocked(seed uint64) bool {
	return v.blocklist.Contains(seed)
}

// Blocked returns the revoked seeds in ascending order, for callers that
// persist the blocklist between runs.
func (v *Verifier) Blocked() []uint64 {
	return v.blocklist.Seeds()
}

// Checks returns a copy of the configured byte checks.
func (v *Verifier) Checks() []ByteCheck {
	out := make([]ByteCheck, len(v.checks))
	copy(out, v.checks)
	return out
}

// Verify classifies key. Steps run in a fixed order and the first failing
// step decides the result: checksum, blocklist, then each byte check.
func (v *Verifier) Verify(key LicenseKey) Status {
	if !key.ChecksumValid() {
		return Invalid
	}

	seed := key.Seed()
	if v.blocklist.Contains(seed) {
		return Blocked
	}

	for _, check := range v.checks {
		value, ok := key.PayloadByte(check.Ordinal)
		if !ok {
			return Invalid
		}
		if value != v.hasher.Hash(seed, check.IV.A, check.IV.B, check.IV.C) {
			return Forged
		}
	}

	return Valid
}
