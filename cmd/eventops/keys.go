package main

import (
	"fmt"
	"io"

	"github.com/nkkko/eventops/pkg/querykey"
	"github.com/spf13/cobra"
)

var (
	keysOrg   string
	keysEvent string
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the invalidation keys for an organization",
	Long: `Print every canonical invalidation key for an organization and,
optionally, an event. Each line shows the bracketed key followed by the
slash form accepted by POST /invalidate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if keysOrg == "" {
			return fmt.Errorf("--org is required")
		}
		return printKeys(cmd.OutOrStdout(), keysOrg, keysEvent)
	},
}

func init() {
	keysCmd.Flags().StringVar(&keysOrg, "org", "", "organization id")
	keysCmd.Flags().StringVar(&keysEvent, "event", "", "event id")
}

func printKeys(w io.Writer, orgID, eventID string) error {
	for _, k := range querykey.Vocabulary(orgID, eventID) {
		if _, err := fmt.Fprintf(w, "%-48s %s\n", k.String(), k.Path()); err != nil {
			return err
		}
	}
	return nil
}
