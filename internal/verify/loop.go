// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/ground"
	"github.com/pdiddy/grounding-engine/internal/judge"
	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// State is a quality-loop state.
type State int

// Quality loop states. The loop starts in StateVerify and always terminates
// in StateDone within MaxImprove iterations.
const (
	StateVerify State = iota
	StateJudge
	StateImprove
	StateDone
)

func (s State) String() string {
	switch s {
	case StateVerify:
		return "verify"
	case StateJudge:
		return "judge"
	case StateImprove:
		return "improve"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var improvePromptTmpl = template.Must(template.New("improve").Parse(`Rewrite the SUMMARY to maximize faithfulness to CONTEXT.
Rules:
- Use ONLY CONTEXT.
- Drop or replace claims that CONTEXT does not support.
- Keep 3-5 sentences in the summary's language. Keep citation markers [C#] where they apply.

Return ONLY the rewritten summary text. No extra text.

[CONTEXT]
{{.Context}}

[SUMMARY]
{{.Summary}}
`))

// runLoop drives the {Verify, Judge, Improve, Done} state machine over one
// document. Each Verify pass re-runs arbitration and sentence grounding on
// the current draft; Judge scores the adopted summary's faithfulness;
// Improve regenerates the draft from the evidence context. MaxImprove is a
// hard iteration ceiling, not a quality guarantee.
func runLoop(ctx context.Context, completer llm.Completer, index ground.Searcher, logger *slog.Logger, document, draft, query string, cfg types.VerifyConfig) (*types.VerificationResult, error) {
	cfg = cfg.WithDefaults()

	current := draft
	improveCount := 0
	var result *types.VerificationResult

	for state := StateVerify; state != StateDone; {
		switch state {
		case StateVerify:
			var err error
			result, err = verifyOnce(ctx, completer, index, logger, document, current, query, cfg)
			if err != nil {
				return nil, err
			}
			state = StateJudge

		case StateJudge:
			verdict := judge.ScoreFaithfulness(ctx, completer, result.Context, result.VerifiedSummary)
			if len(result.UnsupportedSentences) > 0 {
				verdict.NeedsImprove = true
				if verdict.Score > 6 {
					verdict.Score = 6
				}
			}
			result.JudgeScore = verdict.Score
			logger.Debug("faithfulness judged",
				"score", verdict.Score, "needs_improve", verdict.NeedsImprove, "improve_count", improveCount)

			if verdict.NeedsImprove && improveCount < cfg.MaxImprove {
				state = StateImprove
			} else {
				state = StateDone
			}

		case StateImprove:
			improved, err := improveDraft(ctx, completer, result.Context, result.VerifiedSummary)
			if err != nil {
				logger.Debug("improve pass failed, keeping current result", "error", err)
				state = StateDone
				break
			}
			current = improved
			improveCount++
			state = StateVerify
		}
	}

	result.ImproveCount = improveCount
	return result, nil
}

// verifyOnce runs arbitration and, on the grounded path, sentence grounding
// of the winning candidate. On the draft path every sentence is unsupported:
// the draft was never validated against evidence.
func verifyOnce(ctx context.Context, completer llm.Completer, index ground.Searcher, logger *slog.Logger, document, draft, query string, cfg types.VerifyConfig) (*types.VerificationResult, error) {
	arb, err := arbitrate(ctx, completer, index, logger, document, draft, query, cfg)
	if err != nil {
		return nil, err
	}

	if arb.Winner == types.SourceDraft {
		if arb.Verdict != nil {
			logger.Debug("arbitration adopted the draft",
				"score_a", arb.Verdict.Overall.A, "score_b", arb.Verdict.Overall.B)
		} else {
			logger.Debug("arbitration adopted the draft, no attempt was judged")
		}
		return &types.VerificationResult{
			Query:                query,
			VerifiedSummary:      arb.Summary,
			UnsupportedSentences: ground.SplitSentences(arb.Summary),
			Winner:               types.SourceDraft,
		}, nil
	}

	registry := ground.NewRegistry()
	registry.Seed(arb.Citations)
	engine := &ground.Engine{Index: index, Completer: completer, Config: cfg, Registry: registry}

	grounded, err := engine.Ground(ctx, judge.StripCitations(arb.Summary))
	if err != nil {
		return nil, err
	}
	logger.Debug("winner grounded",
		"verdict", arb.Verdict.Overall.Winner,
		"citations", len(grounded.Citations), "unsupported", len(grounded.UnsupportedSentences))

	return &types.VerificationResult{
		Query:                query,
		VerifiedSummary:      grounded.VerifiedSummary,
		Context:              grounded.Context,
		Citations:            grounded.Citations,
		UsedCitations:        grounded.UsedCitations,
		UnsupportedSentences: grounded.UnsupportedSentences,
		Winner:               types.SourceGrounded,
	}, nil
}

// improveDraft regenerates the draft from the evidence context, dropping or
// replacing unsupported claims.
func improveDraft(ctx context.Context, completer llm.Completer, evidence, summary string) (string, error) {
	var buf bytes.Buffer
	if err := improvePromptTmpl.Execute(&buf, struct{ Context, Summary string }{evidence, summary}); err != nil {
		return "", fmt.Errorf("rendering improve prompt: %w", err)
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return "", fmt.Errorf("improving draft: %w", err)
	}
	improved := strings.TrimSpace(out)
	if improved == "" {
		return "", fmt.Errorf("improve pass returned empty output")
	}
	return improved, nil
}
