// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ground

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/internal/retrieve"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// relaxFactor is the one-shot threshold relaxation applied when reranking
// yields fewer citations than wanted. It is not iterated further.
const relaxFactor = 0.6

// Searcher is the retrieval surface the engine needs from a chunk index.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]types.Candidate, error)
}

// Engine grounds a draft sentence-by-sentence against an indexed document.
type Engine struct {
	Index     Searcher
	Completer llm.Completer
	Config    types.VerifyConfig

	// Registry holds the shared citation ids for the run. Nil means the
	// engine starts its own empty registry.
	Registry *Registry
}

// Result carries the grounded summary and its evidence. The arbiter merges
// it into the run-level verification result.
type Result struct {
	VerifiedSummary      string
	Context              string
	Citations            []types.Citation
	UsedCitations        []string
	UnsupportedSentences []string
}

// Ground splits the draft into sentences and attaches citations to each:
// retrieve with the sentence verbatim as query, filter under the looser
// per-sentence threshold, rerank, and backfill once under a relaxed
// threshold when evidence runs short. Sentences with no surviving evidence
// are appended unchanged to both the output and the unsupported list; a
// citation is never fabricated. Retrieval errors propagate.
func (e *Engine) Ground(ctx context.Context, draft string) (*Result, error) {
	cfg := e.Config.WithDefaults()
	registry := e.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	k := cfg.TopK
	if cfg.PerSentenceK > k {
		k = cfg.PerSentenceK
	}

	var lines []string
	var unsupported []string
	var used []string
	usedSeen := make(map[string]bool)

	for _, sentence := range SplitSentences(draft) {
		cands, err := e.Index.Search(ctx, sentence, k)
		if err != nil {
			return nil, fmt.Errorf("retrieving evidence for sentence: %w", err)
		}

		filtered := retrieve.Filter(cands, cfg.SentenceThreshold)
		if len(filtered) == 0 {
			lines = append(lines, sentence)
			unsupported = append(unsupported, sentence)
			continue
		}

		ranked := retrieve.Rerank(ctx, e.Completer, sentence, filtered, cfg.PerSentenceK)

		var ids []string
		idSeen := make(map[string]bool)
		add := func(text string) {
			c := registry.Register(text)
			if !idSeen[c.ID] {
				idSeen[c.ID] = true
				ids = append(ids, c.ID)
			}
		}
		for _, c := range ranked {
			add(c.Text)
		}
		if len(ids) < cfg.PerSentenceK {
			for _, c := range relaxedPool(cands, cfg.SentenceThreshold*relaxFactor) {
				if len(ids) >= cfg.PerSentenceK {
					break
				}
				add(c.Text)
			}
		}

		if len(ids) == 0 {
			lines = append(lines, sentence)
			unsupported = append(unsupported, sentence)
			continue
		}

		markers := make([]string, len(ids))
		for i, id := range ids {
			markers[i] = "[" + id + "]"
		}
		lines = append(lines, sentence+" "+strings.Join(markers, " "))
		for _, id := range ids {
			if !usedSeen[id] {
				usedSeen[id] = true
				used = append(used, id)
			}
		}
	}

	citations := registry.Citations()
	return &Result{
		VerifiedSummary:      strings.Join(lines, "\n"),
		Context:              renderContext(citations, cfg.MaxContextChars),
		Citations:            citations,
		UsedCitations:        used,
		UnsupportedSentences: unsupported,
	}, nil
}

// relaxedPool returns candidates clearing the relaxed threshold, sorted by
// relevance descending, stable.
func relaxedPool(cands []types.Candidate, threshold float64) []types.Candidate {
	pool := retrieve.Filter(cands, threshold)
	sorted := make([]types.Candidate, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relevance > sorted[j].Relevance
	})
	return sorted
}

// renderContext emits "[id] text" blocks for the registry, dropping blocks
// greedily from the tail once the character budget is exceeded.
func renderContext(citations []types.Citation, maxChars int) string {
	const sep = "\n\n"

	blocks := make([]string, len(citations))
	total := 0
	for i, c := range citations {
		blocks[i] = fmt.Sprintf("[%s] %s", c.ID, c.Text)
		total += utf8.RuneCountInString(blocks[i])
		if i > 0 {
			total += len(sep)
		}
	}
	for len(blocks) > 0 && total > maxChars {
		total -= utf8.RuneCountInString(blocks[len(blocks)-1])
		if len(blocks) > 1 {
			total -= len(sep)
		}
		blocks = blocks[:len(blocks)-1]
	}
	return strings.Join(blocks, sep)
}
