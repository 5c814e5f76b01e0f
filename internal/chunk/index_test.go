// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// markerEmbedder maps known marker words onto orthogonal axes so tests can
// force exact nearest-neighbour ordering.
func markerEmbedder() llm.Embedder {
	return llm.EmbedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		vec := []float32{0, 0, 0}
		switch {
		case strings.Contains(text, "volcano"):
			vec[0] = 1
		case strings.Contains(text, "glacier"):
			vec[1] = 1
		default:
			vec[2] = 1
		}
		return vec, nil
	})
}

const indexDoc = "The volcano erupted in 1883.\n\nThe glacier retreated for decades.\n\nUnrelated filler text about nothing."

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := BuildIndex(context.Background(), markerEmbedder(), indexDoc, types.VerifyConfig{ChunkSize: 40, ChunkOverlap: 0})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestBuildIndexChunksDocument(t *testing.T) {
	ix := buildTestIndex(t)
	if ix.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ix.Len())
	}
}

func TestBuildIndexEmptyDocument(t *testing.T) {
	if _, err := BuildIndex(context.Background(), markerEmbedder(), "", types.VerifyConfig{}); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestSearchRanksByDistance(t *testing.T) {
	ix := buildTestIndex(t)

	got, err := ix.Search(context.Background(), "when did the volcano erupt", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if !strings.Contains(got[0].Text, "volcano") {
		t.Errorf("top candidate = %q, want the volcano chunk", got[0].Text)
	}
	if got[0].Relevance <= got[1].Relevance {
		t.Errorf("relevance not descending: %v then %v", got[0].Relevance, got[1].Relevance)
	}
}

func TestSearchAssignsSequentialIDs(t *testing.T) {
	ix := buildTestIndex(t)

	got, err := ix.Search(context.Background(), "glacier", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, c := range got {
		want := fmt.Sprintf("C%d", i+1)
		if c.ID != want {
			t.Errorf("candidate %d has ID %q, want %q", i, c.ID, want)
		}
	}
}

func TestSearchRelevanceBounds(t *testing.T) {
	ix := buildTestIndex(t)

	got, err := ix.Search(context.Background(), "the volcano", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, c := range got {
		if c.Relevance <= 0 || c.Relevance > 1 {
			t.Errorf("relevance %v for %q outside (0,1]", c.Relevance, c.ID)
		}
	}
	// An exact axis match has squared distance 0 and relevance 1.
	if got[0].Relevance != 1 {
		t.Errorf("exact match relevance = %v, want 1", got[0].Relevance)
	}
}

func TestSearchCapsKAtIndexSize(t *testing.T) {
	ix := buildTestIndex(t)

	got, err := ix.Search(context.Background(), "anything", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != ix.Len() {
		t.Errorf("got %d candidates, want %d", len(got), ix.Len())
	}
}

func TestSearchZeroK(t *testing.T) {
	ix := buildTestIndex(t)

	got, err := ix.Search(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
