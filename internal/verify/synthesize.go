// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/llm"
)

var synthesizePromptTmpl = template.Must(template.New("synthesize").Parse(`Summarize the following article in 3 sentences.
Write in the article's language. Do not add information that is not in the article.
Return ONLY the summary text, no preamble and no markup.

ARTICLE:
{{.Article}}
`))

// Synthesize generates an unconstrained draft summary of the document for
// callers that have none. The draft is candidate A in arbitration; it
// carries no citations.
func Synthesize(ctx context.Context, completer llm.Completer, document string) (string, error) {
	var buf bytes.Buffer
	if err := synthesizePromptTmpl.Execute(&buf, struct{ Article string }{document}); err != nil {
		return "", fmt.Errorf("rendering draft prompt: %w", err)
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return "", fmt.Errorf("generating draft: %w", err)
	}

	draft := strings.TrimSpace(out)
	if draft == "" {
		return "", fmt.Errorf("draft generation returned empty output")
	}
	return draft, nil
}
