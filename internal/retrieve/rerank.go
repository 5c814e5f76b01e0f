// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// rerankCandidateChars caps per-candidate text in the rerank payload.
const rerankCandidateChars = 400

// ErrRerankParse reports that the model's rerank response was not a usable
// id list. Rerank consumes it internally via the deterministic fallback.
var ErrRerankParse = errors.New("rerank response is not a JSON id list")

// rerankPromptTmpl asks the model to select the most useful passages for an
// accurate summary and return only their ids.
var rerankPromptTmpl = template.Must(template.New("rerank").Parse(`You will be given a query and candidate passages.
Select the TOP {{.Take}} passages that are most helpful to produce an accurate summary.
Return ONLY a JSON list of selected passage IDs, like: ["C1","C3","C4","C6"].
No extra text.

{{.Payload}}
`))

// rerankPayload is the JSON body appended to the rerank prompt.
type rerankPayload struct {
	Query      string            `json:"query"`
	Candidates []rerankCandidate `json:"candidates"`
}

type rerankCandidate struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Rerank reorders candidates by asking the model which ones best serve the
// query, keeping at most take. It never returns an error: any model failure,
// unparseable response, or unknown-only id list falls back to the
// deterministic relevance-descending order.
func Rerank(ctx context.Context, completer llm.Completer, query string, cands []types.Candidate, take int) []types.Candidate {
	if len(cands) == 0 || take <= 0 {
		return nil
	}

	picked, err := rerankIDs(ctx, completer, query, cands, take)
	if err != nil {
		picked = fallbackIDs(cands, take)
	}

	byID := make(map[string]types.Candidate, len(cands))
	for _, c := range cands {
		byID[c.ID] = c
	}
	var ranked []types.Candidate
	for _, id := range picked {
		if c, ok := byID[id]; ok {
			ranked = append(ranked, c)
		}
	}
	if len(ranked) == 0 {
		for _, id := range fallbackIDs(cands, take) {
			ranked = append(ranked, byID[id])
		}
	}
	if len(ranked) > take {
		ranked = ranked[:take]
	}
	return ranked
}

// rerankIDs performs the model call and strict parse of the id list.
func rerankIDs(ctx context.Context, completer llm.Completer, query string, cands []types.Candidate, take int) ([]string, error) {
	payload := rerankPayload{Query: query}
	for _, c := range cands {
		text := c.Text
		if runes := []rune(text); len(runes) > rerankCandidateChars {
			text = string(runes[:rerankCandidateChars])
		}
		payload.Candidates = append(payload.Candidates, rerankCandidate{ID: c.ID, Text: text})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := rerankPromptTmpl.Execute(&buf, struct {
		Take    int
		Payload string
	}{take, string(body)}); err != nil {
		return nil, err
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(out), &ids); err != nil {
		return nil, ErrRerankParse
	}
	if len(ids) == 0 {
		return nil, ErrRerankParse
	}
	return ids, nil
}

// fallbackIDs orders candidate ids by relevance descending, stable.
func fallbackIDs(cands []types.Candidate, take int) []string {
	sorted := make([]types.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Relevance > sorted[j].Relevance
	})
	if len(sorted) > take {
		sorted = sorted[:take]
	}
	ids := make([]string, 0, len(sorted))
	for _, c := range sorted {
		ids = append(ids, c.ID)
	}
	return ids
}
