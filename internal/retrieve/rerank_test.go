// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

func rerankFixture() []types.Candidate {
	return []types.Candidate{
		{ID: "C1", Text: "passage one", Score: 0.5, Relevance: 0.67},
		{ID: "C2", Text: "passage two", Score: 0.2, Relevance: 0.83},
		{ID: "C3", Text: "passage three", Score: 1.0, Relevance: 0.50},
		{ID: "C4", Text: "passage four", Score: 0.1, Relevance: 0.91},
	}
}

func TestFilterByThreshold(t *testing.T) {
	got := Filter(rerankFixture(), 0.60)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	for _, c := range got {
		if c.Relevance < 0.60 {
			t.Errorf("candidate %s relevance %v below threshold", c.ID, c.Relevance)
		}
	}
	// Rank order preserved, not re-sorted.
	if got[0].ID != "C1" || got[1].ID != "C2" {
		t.Errorf("filter reordered candidates: %v", got)
	}
}

func TestFilterAllBelowThreshold(t *testing.T) {
	if got := Filter(rerankFixture(), 0.99); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestRerankFollowsModelSelection(t *testing.T) {
	c := scriptedCompleter(`["C3","C1"]`, nil)
	got := Rerank(context.Background(), c, "q", rerankFixture(), 2)
	if len(got) != 2 || got[0].ID != "C3" || got[1].ID != "C1" {
		t.Errorf("got %v, want [C3 C1]", got)
	}
}

func TestRerankIgnoresUnknownIDs(t *testing.T) {
	c := scriptedCompleter(`["C9","C2","C7"]`, nil)
	got := Rerank(context.Background(), c, "q", rerankFixture(), 3)
	if len(got) != 1 || got[0].ID != "C2" {
		t.Errorf("got %v, want [C2]", got)
	}
}

func TestRerankFallbackOnMalformedResponse(t *testing.T) {
	// Model returned prose instead of a JSON id list: deterministic
	// fallback sorts by relevance descending.
	c := scriptedCompleter("The most relevant passages are C4 and C2.", nil)
	got := Rerank(context.Background(), c, "q", rerankFixture(), 2)
	if len(got) != 2 || got[0].ID != "C4" || got[1].ID != "C2" {
		t.Errorf("got %v, want [C4 C2]", got)
	}
}

func TestRerankFallbackOnModelError(t *testing.T) {
	c := scriptedCompleter("", errors.New("api down"))
	got := Rerank(context.Background(), c, "q", rerankFixture(), 3)
	if len(got) != 3 || got[0].ID != "C4" || got[1].ID != "C2" || got[2].ID != "C1" {
		t.Errorf("got %v, want [C4 C2 C1]", got)
	}
}

func TestRerankFallbackOnUnknownOnlyIDs(t *testing.T) {
	c := scriptedCompleter(`["C8","C9"]`, nil)
	got := Rerank(context.Background(), c, "q", rerankFixture(), 2)
	if len(got) != 2 || got[0].ID != "C4" || got[1].ID != "C2" {
		t.Errorf("got %v, want fallback [C4 C2]", got)
	}
}

func TestRerankTruncatesPayloadText(t *testing.T) {
	var gotPrompt string
	c := llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return `["C1"]`, nil
	})
	long := []types.Candidate{{ID: "C1", Text: strings.Repeat("x", 1000), Relevance: 0.9}}
	Rerank(context.Background(), c, "q", long, 1)
	if strings.Contains(gotPrompt, strings.Repeat("x", 401)) {
		t.Error("payload contains more than 400 chars of candidate text")
	}
}

func TestRerankEmptyCandidates(t *testing.T) {
	c := scriptedCompleter(`["C1"]`, nil)
	if got := Rerank(context.Background(), c, "q", nil, 4); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
