// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify is the engine's top-level pipeline: it arbitrates an
// unconstrained draft against an evidence-grounded regeneration, grounds the
// winner sentence-by-sentence, and iterates a bounded quality loop until the
// summary is faithful or the improve budget runs out.
// Implements: prd001-verification;
//
//	docs/ARCHITECTURE § Verification Pipeline.
package verify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pdiddy/grounding-engine/internal/chunk"
	"github.com/pdiddy/grounding-engine/internal/judge"
	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/internal/retrieve"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Deps holds the external services one verification run depends on. All
// handles are injected; the package keeps no globals.
type Deps struct {
	Completer llm.Completer
	Embedder  llm.Embedder

	// Logger receives run diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Verify checks draft against document: it builds a per-run vector index
// over the document's chunks, formulates a retrieval query, and runs the
// arbitration-plus-grounding quality loop. Each call is self-contained and
// synchronous; no state is shared between runs. Embedding and completion
// transport failures are returned to the caller.
func Verify(ctx context.Context, deps Deps, document, draft string, cfg types.VerifyConfig) (*types.VerificationResult, error) {
	if document == "" {
		return nil, fmt.Errorf("document is empty")
	}
	if draft == "" {
		return nil, fmt.Errorf("draft is empty: synthesize one first")
	}
	cfg = cfg.WithDefaults()

	runID := uuid.NewString()
	logger := deps.logger().With("run_id", runID)
	logger.Debug("verification started", "document_chars", len(document))

	index, err := chunk.BuildIndex(ctx, deps.Embedder, document, cfg)
	if err != nil {
		return nil, fmt.Errorf("indexing document: %w", err)
	}
	defer index.Close()
	logger.Debug("document indexed", "chunks", index.Len())

	query := retrieve.FormulateQuery(ctx, deps.Completer, document)
	logger.Debug("query formulated", "query", query)

	result, err := runLoop(ctx, deps.Completer, index, logger, document, draft, query, cfg)
	if err != nil {
		return nil, err
	}
	result.RunID = runID

	logger.Debug("verification finished",
		"winner", result.Winner, "judge_score", result.JudgeScore,
		"improve_count", result.ImproveCount, "unsupported", len(result.UnsupportedSentences))
	return result, nil
}

// Evaluate compares two summary candidates of the same document and returns
// the judge's structured verdict. Candidate b is evaluated with citation
// markers stripped.
func Evaluate(ctx context.Context, completer llm.Completer, document, a, b string) (*types.JudgeVerdict, error) {
	return judge.Evaluate(ctx, completer, document, a, b)
}
