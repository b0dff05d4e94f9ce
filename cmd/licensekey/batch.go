package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"licensekey/internal/app"
	"licensekey/internal/batch"
	"licensekey/internal/exporter"
	"licensekey/pkg/seed"
)

type batchOptions struct {
	from       uint64
	count      int
	identities string
	out        string
	appendOut  bool
	generator  string
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate many keys and export them",
		Example: `  licensekey batch --from 1000 --count 500 --out keys.xlsx
  licensekey batch --identities customers.csv --out keys.csv --append`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (opts.identities == "") == (opts.count == 0) {
				return errors.New("exactly one of --count or --identities is required")
			}
			if opts.count < 0 {
				return fmt.Errorf("--count must be positive, got %d", opts.count)
			}

			return withApp(cmd, root, func(ctx context.Context, a *app.Application) error {
				return runBatch(ctx, cmd, a, opts)
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.from, "from", 0, "first seed of a consecutive range")
	cmd.Flags().IntVar(&opts.count, "count", 0, "number of consecutive seeds")
	cmd.Flags().StringVar(&opts.identities, "identities", "", "file of identities (.csv, .xlsx or one per line)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "export file (.csv or .xlsx); prints a table when empty")
	cmd.Flags().BoolVar(&opts.appendOut, "append", false, "append to an existing .csv export")
	cmd.Flags().StringVar(&opts.generator, "generator", "", "generator keyring (default from config)")

	return cmd
}

func runBatch(ctx context.Context, cmd *cobra.Command, a *app.Application, opts *batchOptions) error {
	reqs, err := batchRequests(opts)
	if err != nil {
		return err
	}

	svc, err := a.IssuerService(opts.generator)
	if err != nil {
		return err
	}

	issued, err := svc.IssueBatch(ctx, reqs)
	if err != nil {
		return err
	}

	switch {
	case opts.out == "":
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SEED\tIDENTITY\tKEY")
		for _, is := range issued {
			fmt.Fprintf(w, "%d\t%s\t%s\n", is.Seed, is.Identity, is.Text)
		}
		return w.Flush()
	case opts.appendOut:
		err = exporter.AppendCSV(opts.out, issued)
	default:
		err = exporter.Export(opts.out, issued)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d keys to %s\n", len(issued), opts.out)
	return nil
}

func batchRequests(opts *batchOptions) ([]batch.Request, error) {
	if opts.identities == "" {
		return batch.Range(opts.from, opts.count), nil
	}

	ids, err := exporter.ReadIdentities(opts.identities)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no identities found in %s", opts.identities)
	}

	reqs := make([]batch.Request, len(ids))
	for i, id := range ids {
		reqs[i] = batch.Request{Seed: seed.FromIdentity(id), Identity: id}
	}
	return reqs, nil
}
