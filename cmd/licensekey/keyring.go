package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"licensekey/internal/app"
	"licensekey/internal/keyring"
)

type deriveOptions struct {
	generator string
	ordinals  []int
	block     []string
	out       string
}

func newDeriveVerifierCmd(root *rootOptions) *cobra.Command {
	opts := &deriveOptions{}

	cmd := &cobra.Command{
		Use:   "derive-verifier",
		Short: "Write a verifier keyring that checks a subset of payload bytes",
		Long: `Derive a verifier keyring from the generator keyring. Only the vectors
for the selected payload ordinals are copied, so a client shipping the
verifier keyring cannot generate keys that pass the unchecked bytes.

Ship different subsets over time; a keygen built from one release fails
against the next.`,
		Example: `  licensekey derive-verifier --ordinals 0,2 --out verifier.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.ordinals) == 0 {
				return errors.New("--ordinals is required")
			}

			return withApp(cmd, root, func(ctx context.Context, a *app.Application) error {
				return runDeriveVerifier(ctx, cmd, a, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.generator, "generator", "", "generator keyring (default from config)")
	cmd.Flags().IntSliceVar(&opts.ordinals, "ordinals", nil, "payload ordinals to check, e.g. 0,2")
	cmd.Flags().StringSliceVar(&opts.block, "block", nil, "seeds to block in the new keyring")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file; prints to stdout when empty")

	return cmd
}

func runDeriveVerifier(ctx context.Context, cmd *cobra.Command, a *app.Application, opts *deriveOptions) error {
	blocked, err := parseSeeds(opts.block)
	if err != nil {
		return err
	}

	path := a.GeneratorPath(opts.generator)
	gf, err := keyring.LoadGenerator(path)
	if err != nil {
		return err
	}
	vf, err := gf.VerifierFor(opts.ordinals...)
	if err != nil {
		return err
	}
	vf.Blocked = blocked

	a.Logger.InfoContext(ctx, "verifier keyring derived",
		slog.String("generator", path),
		slog.Any("ordinals", opts.ordinals),
		slog.Int("blocked", len(blocked)))

	if opts.out == "" {
		data, err := vf.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := vf.Save(opts.out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote verifier keyring with %d checks to %s\n", len(vf.Checks), opts.out)
	return nil
}
