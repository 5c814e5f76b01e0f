// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pdiddy/grounding-engine/internal/ground"
	"github.com/pdiddy/grounding-engine/internal/judge"
	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/internal/retrieve"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// arbitration is the outcome of the draft-vs-grounded contest. On the
// grounded path Summary still carries its inline citation markers and
// Citations seed the sentence-grounding registry, which re-derives the
// context and used-citation set; on the draft path Citations are empty,
// never the grounded leftovers.
type arbitration struct {
	Winner    string
	Summary   string
	Citations []types.Citation

	// Verdict is the judge's verdict for the adopted attempt, nil when no
	// attempt produced a parseable verdict.
	Verdict *types.JudgeVerdict
}

// attempt is one escalation rung's grounded candidate and its verdict.
type attempt struct {
	summary   string
	citations []types.Citation
	verdict   *types.JudgeVerdict
}

// arbitrate runs the escalation ladder: each rung retrieves against the
// global query, packs a context, generates a grounded candidate B, and
// judges it pairwise against the draft (candidate A). The best attempt by
// the judge's overall B score is adopted on a B or TIE verdict; an A verdict
// or a ladder where no verdict ever parsed adopts the draft and discards all
// retrieval artifacts. Retrieval errors propagate; generation and judging
// failures burn the rung and escalation continues.
func arbitrate(ctx context.Context, completer llm.Completer, index ground.Searcher, logger *slog.Logger, document, draft, query string, cfg types.VerifyConfig) (*arbitration, error) {
	cfg = cfg.WithDefaults()

	var best *attempt
	var lastErr error

	for i, rung := range cfg.EscalationLadder() {
		cands, err := index.Search(ctx, query, rung.TopK)
		if err != nil {
			return nil, err
		}

		filtered := retrieve.Filter(cands, rung.RelevanceThreshold)
		if len(filtered) == 0 {
			logger.Debug("arbitration attempt found no evidence", "attempt", i+1, "top_k", rung.TopK)
			continue
		}

		ranked := retrieve.Rerank(ctx, completer, query, filtered, rung.RerankTop)
		packedContext, citations := retrieve.Pack(ranked, cfg.MaxContextChars)
		if packedContext == "" {
			continue
		}

		summary, used, err := generateGrounded(ctx, completer, packedContext)
		if err != nil {
			logger.Debug("grounded generation failed", "attempt", i+1, "error", err)
			lastErr = err
			continue
		}

		verdict, err := judge.Evaluate(ctx, completer, document, draft, summary)
		if err != nil {
			if !errors.Is(err, judge.ErrNoVerdict) {
				lastErr = err
			}
			logger.Debug("pairwise judging failed", "attempt", i+1, "error", err)
			continue
		}

		logger.Debug("arbitration attempt judged",
			"attempt", i+1, "winner", verdict.Overall.Winner, "score_b", verdict.Overall.B,
			"cited", len(used))

		if best == nil || verdict.Overall.B > best.verdict.Overall.B {
			best = &attempt{
				summary:   summary,
				citations: citations,
				verdict:   verdict,
			}
		}
		if verdict.Overall.Winner == types.WinnerB {
			break
		}
	}

	if best == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		// No rung produced a parseable verdict: fail-safe to the draft.
		return draftOutcome(draft, nil), nil
	}

	switch best.verdict.Overall.Winner {
	case types.WinnerB, types.WinnerTie:
		return &arbitration{
			Winner:    types.SourceGrounded,
			Summary:   best.summary,
			Citations: best.citations,
			Verdict:   best.verdict,
		}, nil
	default:
		return draftOutcome(draft, best.verdict), nil
	}
}

// draftOutcome adopts the unconstrained draft. Citation artifacts from
// losing grounded attempts are discarded, never exposed.
func draftOutcome(draft string, verdict *types.JudgeVerdict) *arbitration {
	return &arbitration{
		Winner:  types.SourceDraft,
		Summary: draft,
		Verdict: verdict,
	}
}
