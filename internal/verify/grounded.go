// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/llm"
)

var groundedPromptTmpl = template.Must(template.New("grounded").Parse(`You are a summarizer constrained to provided evidence.

You MUST follow these rules:
1) Write the summary STRICTLY using ONLY the provided CONTEXT passages.
2) If a needed detail is not in CONTEXT, leave it out (do not guess).
3) Summary is 3-5 sentences, in the article's language.
4) Add citation markers like [C1], [C2] inline next to the claims you use. Every claim needs a marker.

Return ONLY valid JSON with this schema:
{
  "Summary": "....",
  "UsedCitations": ["C1","C2"]
}
No markdown. No extra text.

[CONTEXT]
{{.Context}}
`))

var (
	groundedBraceRe  = regexp.MustCompile(`(?s)\{.*\}`)
	citationInTextRe = regexp.MustCompile(`\[(C\d+)\]`)
)

// generateGrounded asks the model for a summary constrained to the packed
// context, with mandatory inline citation markers. Output is expected as
// JSON; unstructured output is tolerated by treating the whole text as the
// summary. Used citations are taken from the inline markers actually
// present, merged with the model's declared list.
func generateGrounded(ctx context.Context, completer llm.Completer, packedContext string) (string, []string, error) {
	var buf bytes.Buffer
	if err := groundedPromptTmpl.Execute(&buf, struct{ Context string }{packedContext}); err != nil {
		return "", nil, fmt.Errorf("rendering grounded prompt: %w", err)
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return "", nil, fmt.Errorf("generating grounded candidate: %w", err)
	}

	summary, declared := parseGroundedOutput(out)
	if strings.TrimSpace(summary) == "" {
		return "", nil, fmt.Errorf("grounded candidate is empty")
	}
	return summary, usedCitations(summary, declared), nil
}

// parseGroundedOutput extracts the summary and declared citation list from
// the model output, falling back to the raw text.
func parseGroundedOutput(out string) (string, []string) {
	var parsed struct {
		Summary       string   `json:"Summary"`
		UsedCitations []string `json:"UsedCitations"`
	}
	s := strings.TrimSpace(out)
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		block := groundedBraceRe.FindString(s)
		if block == "" || json.Unmarshal([]byte(block), &parsed) != nil {
			return s, nil
		}
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return s, parsed.UsedCitations
	}
	return strings.TrimSpace(parsed.Summary), parsed.UsedCitations
}

// usedCitations merges the ids marked inline with the declared list,
// inline-first, deduplicated.
func usedCitations(summary string, declared []string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range citationInTextRe.FindAllStringSubmatch(summary, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	for _, id := range declared {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
