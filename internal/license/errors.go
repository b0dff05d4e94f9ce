package license

import "errors"

var (
	ErrNoGenerator   = errors.New("license service has no generator")
	ErrNoVerifier    = errors.New("license service has no verifier")
	ErrNotConfigured = errors.New("license service needs a generator or a verifier")
	ErrEmptyIdentity = errors.New("identity cannot be empty")
)
