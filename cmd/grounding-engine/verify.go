// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/internal/verify"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [document-file]",
	Short: "Verify a draft summary against its source document",
	Long: `Verify builds a vector index over the document, arbitrates the draft
against an evidence-grounded regeneration, attaches citations sentence by
sentence, and runs the bounded improve loop. Without --draft the engine
synthesizes an unconstrained draft first.

The verification result is written to stdout as YAML or JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	document, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	deps := depsFromFlags(cmd)
	cfg := verifyConfigFromFlags(cmd)

	draft, err := loadOrSynthesizeDraft(cmd, deps, string(document))
	if err != nil {
		return err
	}

	result, err := verify.Verify(context.Background(), deps, string(document), draft, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "run %s: winner=%s score=%d improves=%d unsupported=%d\n",
		result.RunID, result.Winner, result.JudgeScore, result.ImproveCount, len(result.UnsupportedSentences))

	format, _ := cmd.Flags().GetString("format")
	return writeResult(result, format)
}

func loadOrSynthesizeDraft(cmd *cobra.Command, deps verify.Deps, document string) (string, error) {
	draftFile, _ := cmd.Flags().GetString("draft")
	if draftFile != "" {
		b, err := os.ReadFile(draftFile)
		if err != nil {
			return "", fmt.Errorf("reading draft: %w", err)
		}
		return string(b), nil
	}

	fmt.Fprintln(os.Stderr, "No draft given, synthesizing one")
	return verify.Synthesize(context.Background(), deps.Completer, document)
}

// depsFromFlags wires the model clients and logger for one run.
func depsFromFlags(cmd *cobra.Command) verify.Deps {
	model, _ := cmd.Flags().GetString("model")
	embeddingURL, _ := cmd.Flags().GetString("embedding-url")
	embeddingModel, _ := cmd.Flags().GetString("embedding-model")
	verbose, _ := cmd.Flags().GetBool("verbose")

	deps := verify.Deps{
		Completer: llm.NewClaudeClient(types.AIConfig{
			Model:  model,
			APIKey: loadedSecrets.Get("anthropic-api-key", "ANTHROPIC_API_KEY"),
		}),
		Embedder: llm.NewEmbeddingClient(types.EmbeddingConfig{
			BaseURL: embeddingURL,
			Model:   embeddingModel,
			APIKey:  loadedSecrets.Get("embeddings-api-key", "OPENAI_API_KEY"),
		}),
	}
	if verbose {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return deps
}

func verifyConfigFromFlags(cmd *cobra.Command) types.VerifyConfig {
	intFlag := func(name string) int {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	floatFlag := func(name string) float64 {
		v, _ := cmd.Flags().GetFloat64(name)
		return v
	}
	return types.VerifyConfig{
		TopK:               intFlag("top-k"),
		RerankTop:          intFlag("rerank-top"),
		PerSentenceK:       intFlag("per-sentence-k"),
		RelevanceThreshold: floatFlag("threshold"),
		SentenceThreshold:  floatFlag("sentence-threshold"),
		MaxContextChars:    intFlag("max-context-chars"),
		MaxRetry:           intFlag("max-retry"),
		MaxImprove:         intFlag("max-improve"),
		ChunkSize:          intFlag("chunk-size"),
		ChunkOverlap:       intFlag("chunk-overlap"),
	}
}

// writeResult encodes v to stdout as YAML (default) or JSON.
func writeResult(v any, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "claude-sonnet-4-5", "AI model identifier for completion calls")
	cmd.Flags().String("embedding-url", "", "embeddings API base URL (default: OpenAI)")
	cmd.Flags().String("embedding-model", "", "embedding model identifier")
	cmd.Flags().String("format", "yaml", "output format: yaml or json")
	cmd.Flags().Bool("verbose", false, "log run diagnostics to stderr")
}

func init() {
	addModelFlags(verifyCmd)
	verifyCmd.Flags().String("draft", "", "path to a draft summary file (default: synthesize one)")
	verifyCmd.Flags().Int("top-k", 0, "whole-document retrieval breadth (default 8)")
	verifyCmd.Flags().Int("rerank-top", 0, "reranked passages feeding the packed context (default 4)")
	verifyCmd.Flags().Int("per-sentence-k", 0, "evidence passages per sentence (default 3)")
	verifyCmd.Flags().Float64("threshold", 0, "whole-document relevance threshold (default 0.20)")
	verifyCmd.Flags().Float64("sentence-threshold", 0, "per-sentence relevance threshold (default 0.12)")
	verifyCmd.Flags().Int("max-context-chars", 0, "packed context budget in characters (default 2800)")
	verifyCmd.Flags().Int("max-retry", 0, "escalation attempts beyond the first (default 2)")
	verifyCmd.Flags().Int("max-improve", 0, "improve loop ceiling (default 2)")
	verifyCmd.Flags().Int("chunk-size", 0, "passage size in characters (default 500)")
	verifyCmd.Flags().Int("chunk-overlap", 0, "passage overlap in characters (default 50)")

	rootCmd.AddCommand(verifyCmd)
}
