package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"licensekey/internal/app"
	"licensekey/internal/license"
	"licensekey/pkg/licensekey"
	"licensekey/pkg/seed"
)

type generateOptions struct {
	seed      uint64
	identity  string
	random    bool
	format    string
	generator string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the key for one seed or identity",
		Example: `  licensekey generate --seed 12345
  licensekey generate --identity customer@example.com --format grouped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := 0
			for _, name := range []string{"seed", "identity", "random"} {
				if cmd.Flags().Changed(name) {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --seed, --identity or --random is required")
			}

			return withApp(cmd, root, func(ctx context.Context, a *app.Application) error {
				return runGenerate(ctx, cmd, a, opts)
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed to issue the key for")
	cmd.Flags().StringVar(&opts.identity, "identity", "", "derive the seed from a customer identity")
	cmd.Flags().BoolVar(&opts.random, "random", false, "use a random seed")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: hex or grouped (default from config)")
	cmd.Flags().StringVar(&opts.generator, "generator", "", "generator keyring (default from config)")

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, a *app.Application, opts *generateOptions) error {
	svc, err := a.IssuerService(opts.generator)
	if err != nil {
		return err
	}

	var issued license.Issued
	switch {
	case opts.identity != "":
		issued, err = svc.IssueIdentity(ctx, opts.identity)
	case opts.random:
		issued, err = svc.Issue(ctx, seed.Random(), "")
	default:
		issued, err = svc.Issue(ctx, opts.seed, "")
	}
	if err != nil {
		return err
	}

	text := issued.Text
	if opts.format != "" {
		codec, err := licensekey.CodecByName(opts.format)
		if err != nil {
			return err
		}
		text = issued.Key.Format(codec)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
