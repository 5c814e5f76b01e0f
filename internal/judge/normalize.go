// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package judge compares summary candidates: pairwise arbitration verdicts
// and single-candidate faithfulness scoring against an evidence context.
// Implements: prd004-judging;
//
//	docs/ARCHITECTURE § Judging.
package judge

import (
	"encoding/json"
	"regexp"
	"strings"
)

// maxCandidateRunes bounds normalized candidate length for evaluation
// stability.
const maxCandidateRunes = 900

var citationMarkerRe = regexp.MustCompile(`\[C\d+\]`)

// cutMarkers are scaffold/meta blocks a model sometimes appends after the
// summary proper. Everything from the first marker on is dropped.
var cutMarkers = []string{
	"[수정 후]",
	"[최종]",
	"[검 증]",
	"[검증]",
	"[최종 출력]",
	"최종 출력",
	"Rules:",
	"RULES:",
	"==========",
}

// summaryFields are the labeled fields a structured candidate may carry,
// in extraction priority order.
var summaryFields = []string{"Summary", "summary", "요약", "result"}

// StripCitations removes inline [C#] markers.
func StripCitations(text string) string {
	return strings.TrimSpace(citationMarkerRe.ReplaceAllString(text, ""))
}

// normalizeCandidate reduces a raw candidate to the bare summary text: a
// labeled summary field is extracted when the input is JSON, scaffold blocks
// are cut, citation markers stripped, whitespace collapsed, and the result
// truncated for evaluation stability.
func normalizeCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	s = extractSummaryField(s)

	for _, m := range cutMarkers {
		if i := strings.Index(s, m); i >= 0 {
			s = s[:i]
		}
	}

	s = StripCitations(s)
	s = strings.Join(strings.Fields(s), " ")

	if runes := []rune(s); len(runes) > maxCandidateRunes {
		s = strings.TrimSpace(string(runes[:maxCandidateRunes]))
	}
	return s
}

// extractSummaryField pulls the summary text out of a JSON candidate.
// Non-JSON input and JSON without a known field pass through unchanged.
func extractSummaryField(s string) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		for _, field := range summaryFields {
			if v, ok := obj[field].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return s
	}
	var str string
	if err := json.Unmarshal([]byte(s), &str); err == nil {
		return strings.TrimSpace(str)
	}
	return s
}

var tokenRe = regexp.MustCompile(`[가-힣A-Za-z0-9]+`)

// jaccard computes token-level Jaccard similarity between two texts.
// Both empty counts as identical; exactly one empty counts as disjoint.
func jaccard(a, b string) float64 {
	aTokens := tokenSet(a)
	bTokens := tokenSet(b)
	if len(aTokens) == 0 && len(bTokens) == 0 {
		return 1.0
	}
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0.0
	}
	inter := 0
	for t := range aTokens {
		if bTokens[t] {
			inter++
		}
	}
	union := len(aTokens) + len(bTokens) - inter
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenRe.FindAllString(strings.ToLower(s), -1) {
		set[t] = true
	}
	return set
}
