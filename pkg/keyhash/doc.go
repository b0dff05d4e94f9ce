// Package keyhash provides reference keyed hash functions for license key
// generation and verification.
//
// The keyed hash is the secret part of a key scheme. These implementations
// are a reasonable starting point, but integrators are encouraged to mix in
// something of their own; anything satisfying licensekey.KeyHasher works.
//
//	secret, err := keyhash.DeriveSecret([]byte(passphrase), salt)
//	if err != nil {
//		return err
//	}
//	hasher, err := keyhash.NewBlake2b(secret)
//
// XOR exists only for examples and tests.
package keyhash
