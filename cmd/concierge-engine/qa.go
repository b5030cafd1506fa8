// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/concierge-engine/internal/profile"
	"github.com/pdiddy/concierge-engine/internal/provider"
	"github.com/pdiddy/concierge-engine/internal/qa"
	"github.com/pdiddy/concierge-engine/internal/session"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Answer a follow-up question about an insight session",
	Long: `QA answers a question in the context of a prior insights run: it loads
the session, routes the question to decide what to retrieve, synthesizes an
answer, and validates that factual claims are backed by citations.

Conversation history can be supplied as a YAML file of role/content pairs.`,
	RunE: runQA,
}

func runQA(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	question, _ := cmd.Flags().GetString("question")
	if sessionID == "" || question == "" {
		return fmt.Errorf("--session and --question are required")
	}
	conversationPath, _ := cmd.Flags().GetString("conversation")
	profilesDir, _ := cmd.Flags().GetString("profiles-dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var conversation []types.Message
	if conversationPath != "" {
		data, err := os.ReadFile(conversationPath)
		if err != nil {
			return fmt.Errorf("reading conversation %s: %w", conversationPath, err)
		}
		if err := yaml.Unmarshal(data, &conversation); err != nil {
			return fmt.Errorf("parsing conversation %s: %w", conversationPath, err)
		}
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

	pipeline := qa.New(
		newModelClient(cfg, logger),
		provider.NewRegistry(cfg.Provider),
		store,
		profile.NewFileSource(profilesDir),
		cfg,
		logger,
	)

	answer, err := pipeline.Answer(context.Background(), qa.Request{
		SessionID:    sessionID,
		Question:     question,
		Conversation: conversation,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Println(answer.AnswerText)
	if answer.DirectPortfolioRelation != "" {
		fmt.Printf("\nPortfolio relevance: %s\n", answer.DirectPortfolioRelation)
	}
	if len(answer.Risks) > 0 {
		fmt.Println("\nRisks and considerations:")
		for _, r := range answer.Risks {
			fmt.Printf("  - %s\n", r)
		}
	}
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range answer.Citations {
			fmt.Printf("  - %s: %s (%s)\n", c.Provider, c.Title, c.URL)
		}
	}
	if answer.Disclaimer != "" {
		fmt.Printf("\n%s\n", answer.Disclaimer)
	}
	fmt.Printf("\nconfidence: %s\n", answer.Confidence)
	return nil
}

func init() {
	qaCmd.Flags().String("session", "", "insight session ID to answer against")
	qaCmd.Flags().String("question", "", "the follow-up question")
	qaCmd.Flags().String("conversation", "", "path to a YAML file of prior messages")
	qaCmd.Flags().String("profiles-dir", "profiles", "directory of customer profile files")
	qaCmd.Flags().Bool("json", false, "output the answer as JSON")

	rootCmd.AddCommand(qaCmd)
}
