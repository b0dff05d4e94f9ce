package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"licensekey/internal/app"
	"licensekey/internal/infrastructure"
	"licensekey/pkg/licensekey"
)

// errRejected makes the process exit non-zero without printing an error;
// the per-key report already explains the outcome.
var errRejected = errors.New("one or more keys were not valid")

type verifyOptions struct {
	verifier string
	block    []string
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [KEY...]",
		Short: "Verify keys and print one status per key",
		Long: `Verify keys against the verifier keyring. Keys are read from the
arguments, or one per line from stdin when none are given.

The exit code is 0 only when every key is valid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args
			if len(keys) == 0 {
				var err error
				if keys, err = readKeys(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if len(keys) == 0 {
				return errors.New("no keys to verify")
			}

			return withApp(cmd, root, func(ctx context.Context, a *app.Application) error {
				return runVerify(ctx, cmd, a, opts, keys)
			})
		},
	}

	cmd.Flags().StringVar(&opts.verifier, "verifier", "", "verifier keyring (default from config)")
	cmd.Flags().StringSliceVar(&opts.block, "block", nil, "additional seeds to treat as blocked")

	return cmd
}

func runVerify(ctx context.Context, cmd *cobra.Command, a *app.Application, opts *verifyOptions, keys []string) error {
	extra, err := parseSeeds(opts.block)
	if err != nil {
		return err
	}

	svc, err := a.VerifierService(opts.verifier)
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		if err := svc.Revoke(ctx, extra...); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSTATUS")

	rejected := 0
	for _, key := range keys {
		status, err := svc.Check(ctx, key)
		switch {
		case err != nil:
			rejected++
			fmt.Fprintf(w, "%s\terror: %v\n", infrastructure.MaskKey(key), err)
		case status != licensekey.Valid:
			rejected++
			fmt.Fprintf(w, "%s\t%s\n", key, status)
		default:
			fmt.Fprintf(w, "%s\t%s\n", key, status)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if rejected > 0 {
		return errRejected
	}
	return nil
}

func readKeys(r io.Reader) ([]string, error) {
	var keys []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			keys = append(keys, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keys: %w", err)
	}
	return keys, nil
}
