package licensekey

// Status is the outcome of verifying a key. It is a result, not an error.
type Status int

const (
	// Valid means every configured check passed.
	Valid Status = iota
	// Invalid means the checksum did not match or a check pointed outside the payload.
	Invalid
	// Blocked means the key's seed is on the blocklist.
	Blocked
	// Forged means the checksum matched but a re-derived payload byte did not.
	Forged
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Blocked:
		return "blocked"
	case Forged:
		return "forged"
	default:
		return "unknown"
	}
}
