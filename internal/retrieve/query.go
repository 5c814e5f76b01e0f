// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve turns a document into a retrieval query and a packed,
// citation-marked evidence context: query formulation, relevance filtering,
// model-assisted reranking, and context packing.
// Implements: prd002-retrieval (R2, R4, R5, R6);
//
//	docs/ARCHITECTURE § Retrieval.
package retrieve

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/grounding-engine/internal/llm"
)

// querySnippetChars bounds how much of the document feeds query rewriting.
const querySnippetChars = 1800

// maxQueryRunes caps the sanitized query length.
const maxQueryRunes = 160

// fallbackQuery is used whenever rewriting fails or degenerates. Retrieval
// must always run with some query.
const fallbackQuery = "key findings, statistics, and comparisons in the article"

// queryPromptTmpl instructs the model to rewrite the document opening into a
// single retrieval query.
var queryPromptTmpl = template.Must(template.New("query").Parse(`You rewrite a retrieval query for summarizing an article.
Focus on:
- key statistics (numbers, percentages)
- comparisons (age groups, segments)
- main findings
- usage categories/actions
Return ONLY one concise query sentence in the article's language (no quotes, no extra text).

{{.Snippet}}
`))

var (
	queryLabelRe = regexp.MustCompile(`(?i)^(query|search query|질문|검색어)\s*[::]\s*`)
	// A trailing quoted alternative the model sometimes appends after the
	// query proper, e.g. `... usage "or: smartphone stats"`.
	trailingAltRe = regexp.MustCompile(`\s+(?:or|또는)[::]?\s*["“'].*$`)
)

// scaffold markers that signal the model kept generating past the query.
var queryCutMarkers = []string{"citations:", "final answer", "====="}

// FormulateQuery asks the model to rewrite the document opening into one
// retrieval query. It never fails: model errors and degenerate output fall
// back to a fixed generic query.
func FormulateQuery(ctx context.Context, completer llm.Completer, document string) string {
	snippet := document
	if runes := []rune(snippet); len(runes) > querySnippetChars {
		snippet = string(runes[:querySnippetChars])
	}

	var buf bytes.Buffer
	if err := queryPromptTmpl.Execute(&buf, struct{ Snippet string }{snippet}); err != nil {
		return fallbackQuery
	}

	out, err := completer.Complete(ctx, buf.String())
	if err != nil {
		return fallbackQuery
	}

	if q := sanitizeQuery(out); q != "" {
		return q
	}
	return fallbackQuery
}

// sanitizeQuery reduces raw model output to a single clean query line.
// Returns "" when nothing usable remains.
func sanitizeQuery(raw string) string {
	q := strings.TrimSpace(raw)
	q = queryLabelRe.ReplaceAllString(q, "")

	if i := strings.IndexAny(q, "\r\n"); i >= 0 {
		q = q[:i]
	}
	lower := strings.ToLower(q)
	for _, marker := range queryCutMarkers {
		if i := strings.Index(lower, marker); i >= 0 {
			q = q[:i]
			lower = lower[:i]
		}
	}

	q = trailingAltRe.ReplaceAllString(q, "")
	q = strings.Trim(q, `"“”'`)
	q = strings.Join(strings.Fields(q), " ")

	if runes := []rune(q); len(runes) > maxQueryRunes {
		q = strings.TrimSpace(string(runes[:maxQueryRunes]))
	}
	return q
}
