// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ground attaches citations to the individual sentences of a draft
// summary, or flags them as unsupported when no indexed passage backs them.
// Implements: prd003-grounding;
//
//	docs/ARCHITECTURE § Sentence Grounding.
package ground

import "strings"

// sentenceEnd marks sentence-ending punctuation, including fullwidth and
// CJK forms.
var sentenceEnd = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '…': true,
}

// SplitSentences cuts text into sentences on ending punctuation or line
// breaks. It is a rough, tolerant splitter, not a full boundary detector:
// terminal punctuation stays with its sentence, runs of enders stay
// together, and blank results are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		b.WriteRune(r)
		if sentenceEnd[r] {
			for i+1 < len(runes) && sentenceEnd[runes[i+1]] {
				i++
				b.WriteRune(runes[i])
			}
			flush()
		}
	}
	flush()
	return sentences
}
