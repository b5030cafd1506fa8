// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/concierge-engine/internal/insight"
	"github.com/pdiddy/concierge-engine/internal/profile"
	"github.com/pdiddy/concierge-engine/internal/provider"
	"github.com/pdiddy/concierge-engine/internal/session"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate insights for a customer profile",
	Long: `Insights runs the full generation pipeline for one profile: normalize,
plan signal bundles from provider data, realize and judge each bundle, and
persist the resulting session. The session ID printed at the end is the
handle for follow-up questions via the qa command.`,
	RunE: runInsights,
}

func runInsights(cmd *cobra.Command, args []string) error {
	profilePath, _ := cmd.Flags().GetString("profile")
	if profilePath == "" {
		return fmt.Errorf("--profile is required")
	}
	placement, _ := cmd.Flags().GetString("placement")
	trigger, _ := cmd.Flags().GetString("trigger")
	ticker, _ := cmd.Flags().GetString("ticker")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	prof, err := profile.ReadFile(profilePath)
	if err != nil {
		return err
	}

	cfg := pipelineConfig()
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := insight.New(
		newModelClient(cfg, logger),
		provider.NewRegistry(cfg.Provider),
		store,
		cfg,
		logger,
	)

	result, err := pipeline.Generate(context.Background(), insight.Request{
		Profile:     prof,
		Placement:   types.Placement(placement),
		Trigger:     types.Trigger(trigger),
		FocusTicker: ticker,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("session %s (%d insights)\n\n", result.SessionID, len(result.Insights))
	for _, ins := range result.Insights {
		fmt.Printf("[%d] %s (%s)\n", ins.Priority+1, ins.Headline, ins.Type)
		fmt.Printf("    %s\n", ins.Explanation)
		fmt.Printf("    %s\n", ins.PersonalRelevance)
		for _, c := range ins.Citations {
			fmt.Printf("    source: %s %s\n", c.Provider, c.URL)
		}
		fmt.Println()
	}
	return nil
}

func init() {
	insightsCmd.Flags().String("profile", "", "path to the customer profile (YAML or JSON)")
	insightsCmd.Flags().String("placement", string(types.PlacementDashboard), "UI surface: INVESTMENT_DASHBOARD, POSITIONS, or PERFORMANCE")
	insightsCmd.Flags().String("trigger", string(types.TriggerAppOpen), "request trigger: APP_OPEN, TAB_VIEW, HOVER_TICKER, DWELL_NO_ACTION, REPEAT_VIEW")
	insightsCmd.Flags().String("ticker", "", "focus ticker for the POSITIONS placement")
	insightsCmd.Flags().Bool("json", false, "output the full session as JSON")

	rootCmd.AddCommand(insightsCmd)
}
