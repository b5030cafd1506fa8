// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the concierge-engine CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/concierge-engine/internal/llm"
	"github.com/pdiddy/concierge-engine/internal/secrets"
	"github.com/pdiddy/concierge-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the concierge-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "concierge-engine",
	Short: "Personalized insight and QA pipeline for a wealth app",
	Long: `concierge-engine generates educational, non-advisory investment insights
from a customer profile and answers follow-up questions about them.

The insights path normalizes the profile, plans themed signal bundles from
provider data, and runs each bundle through a generate-judge loop with local
guardrails and citation validation. The qa path routes a question, retrieves
what the plan asks for, and synthesizes a cited answer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./concierge-engine.yaml or ~/.config/concierge-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("concierge-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "concierge-engine"))
		}
	}

	viper.SetEnvPrefix("CONCIERGE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig builds the effective configuration: defaults, overridden by
// the config file and environment, then backfilled from loaded secrets.
func pipelineConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := viper.GetInt("llm.max_retries"); v > 0 {
		cfg.LLM.MaxRetries = v
	}
	if v := viper.GetDuration("provider.timeout"); v > 0 {
		cfg.Provider.Timeout = v
	}
	if v := viper.GetStringSlice("provider.providers"); len(v) > 0 {
		cfg.Provider.Providers = v
	}
	if v := viper.GetString("provider.market_data_api_key"); v != "" {
		cfg.Provider.MarketDataAPIKey = v
	}
	if v := viper.GetString("provider.news_api_key"); v != "" {
		cfg.Provider.NewsAPIKey = v
	}
	if v := viper.GetString("provider.analyst_api_key"); v != "" {
		cfg.Provider.AnalystAPIKey = v
	}
	if v := viper.GetString("provider.internal_content_base_url"); v != "" {
		cfg.Provider.InternalContentBaseURL = v
	}
	if v := viper.GetInt("insight.insight_count"); v > 0 {
		cfg.Insight.InsightCount = v
	}
	if viper.IsSet("insight.require_citations") {
		cfg.Insight.RequireCitations = viper.GetBool("insight.require_citations")
	}
	if v := viper.GetString("session.data_dir"); v != "" {
		cfg.Session.DataDir = v
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

func newLogger() (*zap.Logger, error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func newModelClient(cfg types.PipelineConfig, logger *zap.Logger) *llm.Client {
	backend := &llm.ClaudeBackend{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
		Client: &http.Client{Timeout: timeoutOrDefault(cfg.LLM.Timeout)},
	}
	return llm.NewClient(backend, cfg.LLM, logger)
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return 30 * time.Second
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
