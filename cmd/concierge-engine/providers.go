// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concierge-engine/internal/provider"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show configured data providers and their health",
	Long: `Providers lists every registered data provider with its healthcheck
status. A provider reporting not-ok is skipped by the pipeline, so this is
the first thing to check when insights come back without market or news
citations.`,
	RunE: runProviders,
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	registry := provider.NewRegistry(cfg.Provider)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tOK\tCONFIGURED\tMESSAGE")
	for _, p := range registry.Resolve(registry.Names()) {
		status := p.Healthcheck()
		fmt.Fprintf(w, "%s\t%t\t%t\t%s\n", p.Name(), status.OK, status.Configured, status.Message)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
