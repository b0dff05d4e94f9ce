// Command licensekey issues, verifies and inspects partial-verification
// license keys.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"licensekey/internal/app"
	"licensekey/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:     "licensekey",
		Short:   "Issue and verify offline license keys",
		Version: infrastructure.ServiceVersion,

		// main prints the error; usage is only useful for flag mistakes.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (default $LICENSEKEY_CONFIG or ./licensekey.yaml)")

	root.AddCommand(
		newGenerateCmd(opts),
		newBatchCmd(opts),
		newVerifyCmd(opts),
		newInspectCmd(opts),
		newDeriveVerifierCmd(opts),
		newSecretCmd(),
	)
	return root
}

// withApp runs fn with an Application built for cmd and stops it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.Application) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	a, err := app.NewApplication(ctx, opts.configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := a.Stop(context.WithoutCancel(ctx)); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	return fn(ctx, a)
}

// parseSeeds parses decimal seeds, or hex seeds with a 0x prefix.
func parseSeeds(values []string) ([]uint64, error) {
	seeds := make([]uint64, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", v, err)
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}
