// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/llm"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

// similarityAdvisory is the Jaccard level at which a TIE verdict is likely
// an artifact of near-identical inputs.
const similarityAdvisory = 0.85

// ErrNoVerdict reports that the judge's output carried no parseable
// structure at all.
var ErrNoVerdict = errors.New("judge returned no parseable verdict")

var pairwisePromptTmpl = template.Must(template.New("pairwise").Parse(`You are an expert evaluator for summary quality.

You will compare two summaries of the SAME article:

- A = unconstrained draft summary
- B = retrieval-verified summary (citations removed for fair readability/coverage)

Score each on a 0-10 scale for:
1) faithfulness (supported by the article)
2) coverage (captures major points)
3) readability (clarity, conciseness)

Then provide an overall winner.

Return STRICT JSON:
{
  "faithfulness": {"a": <0-10>, "b": <0-10>, "winner": "A"|"B"|"TIE", "reason": "<short>"},
  "coverage":     {"a": <0-10>, "b": <0-10>, "winner": "A"|"B"|"TIE", "reason": "<short>"},
  "readability":  {"a": <0-10>, "b": <0-10>, "winner": "A"|"B"|"TIE", "reason": "<short>"},
  "overall":      {"a": <0-10>, "b": <0-10>, "winner": "A"|"B"|"TIE", "reason": "<short>"},
  "notes": ["<actionable note>", "<actionable note>"]
}

ARTICLE:
{{.Article}}

SUMMARY A (draft):
{{.A}}

SUMMARY B (verified, citations removed):
{{.B}}
`))

var braceBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// Evaluate runs a pairwise comparison of candidates a and b against the
// source document. Both candidates are normalized first; b additionally has
// citation markers stripped. Returns ErrNoVerdict (wrapped) when the model
// output has no parseable structure.
func Evaluate(ctx context.Context, completer llm.Completer, document, a, b string) (*types.JudgeVerdict, error) {
	aText := normalizeCandidate(a)
	bText := StripCitations(normalizeCandidate(b))

	var buf bytes.Buffer
	if err := pairwisePromptTmpl.Execute(&buf, struct{ Article, A, B string }{document, aText, bText}); err != nil {
		return nil, fmt.Errorf("rendering judge prompt: %w", err)
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return nil, fmt.Errorf("calling judge: %w", err)
	}

	verdict, err := parseVerdict(out)
	if err != nil {
		return nil, err
	}

	verdict.Similarity = jaccard(aText, bText)
	if verdict.Similarity >= similarityAdvisory {
		verdict.Notes = append(verdict.Notes, fmt.Sprintf(
			"A and B are very similar (token Jaccard ~ %.2f); a TIE verdict is likely spurious.", verdict.Similarity))
	}
	return verdict, nil
}

// parseVerdict tries a strict JSON parse, then falls back to the first
// brace-delimited block in the output.
func parseVerdict(out string) (*types.JudgeVerdict, error) {
	var v types.JudgeVerdict
	if err := json.Unmarshal([]byte(out), &v); err == nil {
		return &v, nil
	}
	block := braceBlockRe.FindString(out)
	if block == "" {
		return nil, fmt.Errorf("%w: %.200s", ErrNoVerdict, out)
	}
	if err := json.Unmarshal([]byte(block), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoVerdict, err)
	}
	return &v, nil
}
