// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grounding-engine CLI.
// Implements: prd001-verification, prd004-judging (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grounding-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets *secrets.Store

// rootCmd is the base command for the grounding-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "grounding-engine",
	Short: "Citation-grounded summary verification",
	Long: `grounding-engine verifies a draft summary against its source document.
It chunks and embeds the document into a per-run vector index, arbitrates the
draft against an evidence-constrained regeneration, attaches citations to
every supported sentence, flags the rest as unsupported, and iterates a
bounded improve loop on weak summaries.

Each operation is a subcommand: verify runs the full pipeline, evaluate
compares two summary candidates pairwise.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./grounding-engine.yaml or ~/.config/grounding-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grounding-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grounding-engine"))
		}
	}

	viper.SetEnvPrefix("GROUNDING_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
