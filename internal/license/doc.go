// Package license issues and checks license keys for an application.
//
// A Service wraps a licensekey.Generator, a licensekey.Verifier or both,
// and adds what the core package leaves out: text decoding through a codec,
// structured logging with masked keys, OpenTelemetry metrics and spans, and
// optional throttling of verification attempts.
//
// # Issuing
//
// The issuer holds the generator keyring and calls Issue, IssueIdentity or
// IssueBatch. Seeds for identities are derived with pkg/seed, so the same
// customer identity always receives the same key.
//
// # Checking
//
// The shipped application holds only a verifier keyring and calls Check with
// the text the user typed. Decoding problems are returned as errors; every
// decodable key yields exactly one Status:
//
//	status, err := svc.Check(ctx, input)
//	switch {
//	case err != nil:
//		// not a key at all
//	case status == licensekey.Valid:
//		// unlock
//	}
//
// Revoke adds seeds to the verifier blocklist at runtime.
//
// # Metrics
//
// The service records:
//
//	- license_keys_issued_total
//	- license_verifications_total{status}
//	- license_decode_failures_total
//	- license_verification_duration_seconds
//	- license_revocations_total
//	- license_throttled_total
package license
