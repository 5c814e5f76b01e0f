// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/grounding-engine/internal/llm"
)

func scriptedCompleter(response string, err error) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return response, err
	})
}

func TestFormulateQueryUsesModelOutput(t *testing.T) {
	c := scriptedCompleter("smartphone usage statistics by age group", nil)
	got := FormulateQuery(context.Background(), c, "some article text")
	if got != "smartphone usage statistics by age group" {
		t.Errorf("got %q", got)
	}
}

func TestFormulateQueryTruncatesDocument(t *testing.T) {
	var gotPrompt string
	c := llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "q", nil
	})
	doc := strings.Repeat("a", 5000)
	FormulateQuery(context.Background(), c, doc)
	if strings.Contains(gotPrompt, strings.Repeat("a", 1801)) {
		t.Error("prompt contains more than 1800 document chars")
	}
	if !strings.Contains(gotPrompt, strings.Repeat("a", 1800)) {
		t.Error("prompt missing the 1800-char snippet")
	}
}

func TestFormulateQueryFallsBackOnModelError(t *testing.T) {
	c := scriptedCompleter("", errors.New("boom"))
	got := FormulateQuery(context.Background(), c, "doc")
	if got != fallbackQuery {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestFormulateQueryFallsBackOnEmptyOutput(t *testing.T) {
	c := scriptedCompleter("  \n  ", nil)
	got := FormulateQuery(context.Background(), c, "doc")
	if got != fallbackQuery {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips label",
			in:   "Query: mobile usage stats",
			want: "mobile usage stats",
		},
		{
			name: "cuts at newline",
			in:   "first line query\nsecond line commentary",
			want: "first line query",
		},
		{
			name: "cuts at scaffold marker",
			in:   "usage trends citations: [C1]",
			want: "usage trends",
		},
		{
			name: "cuts at rule line",
			in:   "usage trends ===== explanation",
			want: "usage trends",
		},
		{
			name: "drops trailing quoted alternative",
			in:   `main findings or: "alternative phrasing here"`,
			want: "main findings",
		},
		{
			name: "unwraps surrounding quotes",
			in:   `"quoted query"`,
			want: "quoted query",
		},
		{
			name: "collapses whitespace",
			in:   "too    many\tspaces",
			want: "too many spaces",
		},
		{
			name: "empty after sanitizing",
			in:   "Query:   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.in); got != tt.want {
				t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeQueryCapsLength(t *testing.T) {
	got := sanitizeQuery(strings.Repeat("가 ", 300))
	if n := len([]rune(got)); n > 160 {
		t.Errorf("query has %d runes, want <= 160", n)
	}
}
