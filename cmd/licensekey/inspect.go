package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"licensekey/internal/app"
	"licensekey/pkg/licensekey"
)

func newInspectCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect KEY",
		Short: "Show the seed, payload and checksum of a key",
		Long: `Decode a key and print its layout. No keyring is needed, so inspect
cannot tell whether the payload is genuine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(_ context.Context, a *app.Application) error {
				codec := a.Codec()
				if format != "" {
					var err error
					if codec, err = licensekey.CodecByName(format); err != nil {
						return err
					}
				}

				key, err := licensekey.Parse(args[0], codec)
				if err != nil {
					return err
				}
				return printLayout(cmd, key)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "input format: hex or grouped (default from config)")

	return cmd
}

func printLayout(cmd *cobra.Command, key licensekey.LicenseKey) error {
	stored := key.Checksum()
	computed := key.ComputeChecksum()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "length\t%d bytes\n", key.Len())
	fmt.Fprintf(w, "seed\t%d (0x%016x)\n", key.Seed(), key.Seed())
	fmt.Fprintf(w, "payload\t%d bytes\n", key.PayloadLen())
	for i := 0; i < key.PayloadLen(); i++ {
		b, _ := key.PayloadByte(i)
		fmt.Fprintf(w, "  [%d]\t0x%02x\n", i, b)
	}
	fmt.Fprintf(w, "checksum\t%s\n", hex.EncodeToString(stored[:]))
	fmt.Fprintf(w, "computed\t%s\n", hex.EncodeToString(computed[:]))
	fmt.Fprintf(w, "checksum ok\t%t\n", key.ChecksumValid())
	return w.Flush()
}
