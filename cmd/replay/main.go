// Command replay routes JSONL fixture messages through the keyword engine and
// optionally exports the hashed audit trail as CSV. It is a simulation tool:
// no real messaging and no patient data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "replay",
		Short:         "Route fixture messages and export the privacy-preserving audit log",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return replay(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.fixtures, "fixtures", "", "path to JSONL fixtures")
	cmd.Flags().StringVar(&opts.exportAudit, "export-audit", "", "write the audit log to this CSV path")
	cmd.Flags().StringVar(&opts.hashSalt, "hash-salt", os.Getenv("NAIJACARE_HASH_SALT"), "HMAC salt for sender hashes (empty keeps the unsalted digest)")
	_ = cmd.MarkFlagRequired("fixtures")
	return cmd
}
