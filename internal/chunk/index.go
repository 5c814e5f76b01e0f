// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"context"
	"fmt"

	"github.com/hupe1980/vecgo"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Index is an in-memory vector index over the chunks of a single document.
// It lives for one verification run and must be closed when the run ends.
type Index struct {
	db       *vecgo.Vecgo[string]
	embedder llm.Embedder
	size     int
}

// BuildIndex chunks the document, embeds every chunk, and loads them into a
// flat exact-search index. The embedding dimension is taken from the first
// chunk's vector.
func BuildIndex(ctx context.Context, embedder llm.Embedder, document string, cfg types.VerifyConfig) (*Index, error) {
	chunks := Split(document, cfg.ChunkSize, cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document produced no chunks")
	}

	first, err := embedder.Embed(ctx, chunks[0])
	if err != nil {
		return nil, fmt.Errorf("embedding chunk 1/%d: %w", len(chunks), err)
	}

	db, err := vecgo.Flat[string](len(first)).SquaredL2().Build()
	if err != nil {
		return nil, fmt.Errorf("building vector index: %w", err)
	}

	if _, err := db.Insert(ctx, vecgo.VectorWithData[string]{Vector: first, Data: chunks[0]}); err != nil {
		db.Close()
		return nil, fmt.Errorf("inserting chunk 1/%d: %w", len(chunks), err)
	}
	for i, c := range chunks[1:] {
		vec, err := embedder.Embed(ctx, c)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("embedding chunk %d/%d: %w", i+2, len(chunks), err)
		}
		if _, err := db.Insert(ctx, vecgo.VectorWithData[string]{Vector: vec, Data: c}); err != nil {
			db.Close()
			return nil, fmt.Errorf("inserting chunk %d/%d: %w", i+2, len(chunks), err)
		}
	}

	return &Index{db: db, embedder: embedder, size: len(chunks)}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return ix.size }

// Close releases the index.
func (ix *Index) Close() error { return ix.db.Close() }

// Search embeds the query and returns up to k candidates in rank order.
// Candidate IDs are assigned C1..Ck per search; relevance is 1/(1+distance),
// so it falls in (0,1] and a zero-distance match scores 1.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]types.Candidate, error) {
	if k > ix.size {
		k = ix.size
	}
	if k <= 0 {
		return nil, nil
	}

	vec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := ix.db.KNNSearch(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(results))
	for i, r := range results {
		d := float64(r.Distance)
		candidates = append(candidates, types.Candidate{
			ID:        fmt.Sprintf("C%d", i+1),
			Text:      r.Data,
			Score:     d,
			Relevance: 1 / (1 + d),
		})
	}
	return candidates, nil
}
