// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ground

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

type searchFunc func(ctx context.Context, query string, k int) ([]types.Candidate, error)

func (f searchFunc) Search(ctx context.Context, query string, k int) ([]types.Candidate, error) {
	return f(ctx, query, k)
}

// echoReranker scripts the reranker to pick every offered candidate.
var echoReranker = llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("force deterministic fallback")
})

func TestGroundTagsSupportedAndUnsupportedSentences(t *testing.T) {
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		if strings.Contains(query, "X는") {
			return []types.Candidate{{ID: "C1", Text: "X가 Y라는 근거 구절", Score: 0.3, Relevance: 0.77}}, nil
		}
		return []types.Candidate{{ID: "C1", Text: "무관한 구절", Score: 20, Relevance: 0.05}}, nil
	})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{}}
	got, err := e.Ground(context.Background(), "X는 Y다. Z는 W다.")
	if err != nil {
		t.Fatalf("Ground: %v", err)
	}

	lines := strings.Split(got.VerifiedSummary, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got.VerifiedSummary)
	}
	if lines[0] != "X는 Y다. [C1]" {
		t.Errorf("supported line = %q, want %q", lines[0], "X는 Y다. [C1]")
	}
	if lines[1] != "Z는 W다." {
		t.Errorf("unsupported line = %q, want unchanged sentence", lines[1])
	}
	if !reflect.DeepEqual(got.UnsupportedSentences, []string{"Z는 W다."}) {
		t.Errorf("UnsupportedSentences = %v", got.UnsupportedSentences)
	}
	if len(got.Citations) != 1 || got.Citations[0].ID != "C1" {
		t.Errorf("Citations = %v", got.Citations)
	}
	if !reflect.DeepEqual(got.UsedCitations, []string{"C1"}) {
		t.Errorf("UsedCitations = %v", got.UsedCitations)
	}
}

func TestGroundEverySentenceSupportedOrUnsupported(t *testing.T) {
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		if strings.Contains(query, "nothing") {
			return nil, nil
		}
		return []types.Candidate{{ID: "C1", Text: "evidence for " + query, Relevance: 0.9}}, nil
	})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{}}
	draft := "Alpha holds. Beta holds. Gamma proves nothing."
	got, err := e.Ground(context.Background(), draft)
	if err != nil {
		t.Fatalf("Ground: %v", err)
	}

	unsupported := make(map[string]bool)
	for _, s := range got.UnsupportedSentences {
		unsupported[s] = true
	}
	for _, line := range strings.Split(got.VerifiedSummary, "\n") {
		cited := strings.Contains(line, "[C")
		if cited == unsupported[line] {
			t.Errorf("line %q must be exactly one of cited or unsupported", line)
		}
	}
}

func TestGroundReusesCitationForIdenticalText(t *testing.T) {
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		return []types.Candidate{{ID: "C1", Text: "the one shared passage", Relevance: 0.8}}, nil
	})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{}}
	got, err := e.Ground(context.Background(), "First claim. Second claim.")
	if err != nil {
		t.Fatalf("Ground: %v", err)
	}

	if len(got.Citations) != 1 {
		t.Fatalf("got %d citations, want 1: %v", len(got.Citations), got.Citations)
	}
	if strings.Count(got.VerifiedSummary, "[C1]") != 2 {
		t.Errorf("both sentences should cite C1: %q", got.VerifiedSummary)
	}
}

func TestGroundRelaxedBackfill(t *testing.T) {
	// One candidate clears the per-sentence threshold; a second clears only
	// the one-shot relaxed threshold (0.12 * 0.6 = 0.072) and backfills.
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		return []types.Candidate{
			{ID: "C1", Text: "strong evidence", Relevance: 0.50},
			{ID: "C2", Text: "weak evidence", Relevance: 0.08},
			{ID: "C3", Text: "noise", Relevance: 0.02},
		}, nil
	})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{PerSentenceK: 2}}
	got, err := e.Ground(context.Background(), "A claim needing two citations.")
	if err != nil {
		t.Fatalf("Ground: %v", err)
	}

	if len(got.Citations) != 2 {
		t.Fatalf("got %d citations, want 2: %v", len(got.Citations), got.Citations)
	}
	if got.Citations[1].Text != "weak evidence" {
		t.Errorf("backfilled citation = %+v, want the relaxed-threshold candidate", got.Citations[1])
	}
	if strings.Contains(got.VerifiedSummary+got.Context, "noise") {
		t.Error("candidate below the relaxed threshold leaked in")
	}
}

func TestGroundNoFabricatedCitations(t *testing.T) {
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		return nil, nil
	})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{}}
	got, err := e.Ground(context.Background(), "Unverifiable claim one. Unverifiable claim two.")
	if err != nil {
		t.Fatalf("Ground: %v", err)
	}

	if len(got.Citations) != 0 || len(got.UsedCitations) != 0 {
		t.Errorf("citations fabricated: %v / %v", got.Citations, got.UsedCitations)
	}
	if len(got.UnsupportedSentences) != 2 {
		t.Errorf("UnsupportedSentences = %v, want both sentences", got.UnsupportedSentences)
	}
	if got.Context != "" {
		t.Errorf("context = %q, want empty", got.Context)
	}
}

func TestGroundPropagatesRetrievalError(t *testing.T) {
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		return nil, errors.New("embedding service down")
	})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{}}
	if _, err := e.Ground(context.Background(), "A claim."); err == nil {
		t.Fatal("expected retrieval error to propagate")
	}
}

func TestGroundSeededRegistry(t *testing.T) {
	index := searchFunc(func(ctx context.Context, query string, k int) ([]types.Candidate, error) {
		return []types.Candidate{{ID: "C1", Text: "packed passage", Relevance: 0.9}}, nil
	})

	registry := NewRegistry()
	registry.Seed([]types.Citation{{ID: "C1", Text: "packed passage"}, {ID: "C2", Text: "other packed passage"}})

	e := &Engine{Index: index, Completer: echoReranker, Config: types.VerifyConfig{}, Registry: registry}
	got, err := e.Ground(context.Background(), "A claim about the packed passage.")
	if err != nil {
		t.Fatalf("Ground: %v", err)
	}

	if !strings.Contains(got.VerifiedSummary, "[C1]") {
		t.Errorf("sentence should reuse the seeded id: %q", got.VerifiedSummary)
	}
	// Seeded citations stay in the emitted evidence even when unused.
	if len(got.Citations) != 2 {
		t.Errorf("Citations = %v, want both seeded entries", got.Citations)
	}
}

func TestRenderContextBudget(t *testing.T) {
	citations := []types.Citation{
		{ID: "C1", Text: strings.Repeat("a", 40)},
		{ID: "C2", Text: strings.Repeat("b", 40)},
		{ID: "C3", Text: strings.Repeat("c", 40)},
	}
	got := renderContext(citations, 100)

	if n := len([]rune(got)); n > 100 {
		t.Errorf("context is %d chars, want <= 100", n)
	}
	if !strings.Contains(got, "[C1]") || !strings.Contains(got, "[C2]") {
		t.Errorf("head blocks dropped: %q", got)
	}
	if strings.Contains(got, "[C3]") {
		t.Errorf("tail block not dropped: %q", got)
	}
}
