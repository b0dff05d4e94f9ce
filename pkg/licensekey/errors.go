package licensekey

import "errors"

var (
	// ErrMalformedKey is returned when boundary text cannot be decoded into bytes.
	ErrMalformedKey = errors.New("malformed license key")
	// ErrKeyTooShort is returned when decoded bytes cannot hold a seed and a checksum.
	ErrKeyTooShort = errors.New("license key too short")
)
