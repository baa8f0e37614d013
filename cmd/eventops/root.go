package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventops",
	Short: "Event operations service with live, invalidation-driven views",
	Long: `eventops keeps the state of an event organization (events, zones, tasks,
work orders, inventory, checklists, staff and credentials) and serves views
over it that reload whenever a mutation touches the data they show.

  - serve     Run the HTTP API
  - keys      Print the invalidation keys for an organization
  - invalidate  Publish keys to a running server
  - version   Print version information`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(invalidateCmd)
	rootCmd.AddCommand(versionCmd)
}
