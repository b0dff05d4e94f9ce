package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"licensekey/internal/security"
	"licensekey/pkg/keyhash"
)

type secretOptions struct {
	passphrase string
	salt       string
	sealWith   string
}

func newSecretCmd() *cobra.Command {
	opts := &secretOptions{}

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Create a hasher secret for a keyring",
		Long: `Create a secret for the blake2b or hmac hasher. Without --passphrase a
random secret is generated; with --passphrase and --salt the secret is
derived with scrypt and can be recreated from the same inputs.

The secret is printed as hex for the keyring "secret" field. With
--seal-with it is printed sealed instead, for the "sealed" field.`,
		Example: `  licensekey secret
  licensekey secret --passphrase "$PASS" --salt 0123456789abcdef
  licensekey secret --seal-with "$KEYRING_PASS"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := makeSecret(opts)
			if err != nil {
				return err
			}
			defer security.Wipe(secret)

			if opts.sealWith == "" {
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(secret))
				return nil
			}

			sealed, err := security.Seal(secret, []byte(opts.sealWith), nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.passphrase, "passphrase", "", "derive the secret from this passphrase")
	cmd.Flags().StringVar(&opts.salt, "salt", "", "salt for --passphrase (at least 16 bytes)")
	cmd.Flags().StringVar(&opts.sealWith, "seal-with", "", "print the secret sealed with this passphrase")

	return cmd
}

func makeSecret(opts *secretOptions) ([]byte, error) {
	if opts.passphrase == "" {
		if opts.salt != "" {
			return nil, errors.New("--salt needs --passphrase")
		}
		secret := make([]byte, keyhash.SecretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		return secret, nil
	}

	return keyhash.DeriveSecret([]byte(opts.passphrase), []byte(opts.salt))
}
