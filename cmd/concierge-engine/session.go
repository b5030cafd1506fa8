// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concierge-engine/internal/session"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored insight sessions",
	RunE:  runSession,
}

func runSession(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("id")
	customerID, _ := cmd.Flags().GetString("customer")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if sessionID == "" && customerID == "" {
		return fmt.Errorf("--id or --customer is required")
	}

	cfg := pipelineConfig()
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}
	defer store.Close()

	var result types.InsightSession
	if sessionID != "" {
		result, err = store.Get(context.Background(), sessionID)
	} else {
		result, err = store.Latest(context.Background(), customerID)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("session %s  customer %s  created %s\n",
		result.SessionID, result.CustomerID, result.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("model %s  trace %s  providers %v\n\n",
		result.Audit.Model, result.Audit.TraceID, result.Audit.ProvidersUsed)
	for _, ins := range result.Insights {
		fmt.Printf("[%d] %s (%s, %d citations)\n",
			ins.Priority+1, ins.Headline, ins.Type, len(ins.Citations))
	}
	return nil
}

func init() {
	sessionCmd.Flags().String("id", "", "session ID to show")
	sessionCmd.Flags().String("customer", "", "show the latest session for a customer")
	sessionCmd.Flags().Bool("json", false, "output the session as JSON")

	rootCmd.AddCommand(sessionCmd)
}
