// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grounding-engine/internal/verify"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [document-file] [candidate-a-file] [candidate-b-file]",
	Short: "Judge two summary candidates pairwise",
	Long: `Evaluate compares two summaries of the same document: candidate A is
treated as the unconstrained draft, candidate B as the verified summary
(its citation markers are stripped before judging). The structured verdict
is written to stdout as YAML or JSON.`,
	Args: cobra.ExactArgs(3),
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	files := make([]string, 3)
	for i, arg := range args {
		b, err := os.ReadFile(arg)
		if err != nil {
			return fmt.Errorf("reading %s: %w", arg, err)
		}
		files[i] = string(b)
	}

	deps := depsFromFlags(cmd)
	verdict, err := verify.Evaluate(context.Background(), deps.Completer, files[0], files[1], files[2])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return writeResult(verdict, format)
}

func init() {
	addModelFlags(evaluateCmd)
	rootCmd.AddCommand(evaluateCmd)
}
