package main

import (
	"fmt"
	"time"

	"github.com/nkkko/eventops/pkg/client"
	"github.com/spf13/cobra"
)

var (
	serverURL     string
	clientTimeout time.Duration
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate KEY...",
	Short: "Publish invalidation keys to a running server",
	Long: `Publish one or more keys, in slash form, to a running server. Every view
subscribed to a related key reloads on its next read.

  eventops invalidate tasks/org-1 dashboard/org-1/ev-1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL, client.WithTimeout(clientTimeout))
		published, err := c.Invalidate(cmd.Context(), args...)
		if err != nil {
			return err
		}
		for _, k := range published {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	invalidateCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "eventops server URL")
	invalidateCmd.Flags().DurationVar(&clientTimeout, "timeout", 10*time.Second, "request timeout")
}
