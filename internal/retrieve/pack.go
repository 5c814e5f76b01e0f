// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Pack assembles ranked candidates into a citation-marked context string and
// the citation list backing it. Empty and duplicate texts (NFC-normalized
// exact match) are skipped; surviving passages get fresh sequential ids in
// first-appearance order. Packing stops before the first block that would
// push the context past maxChars, separators included; blocks are never
// truncated.
func Pack(ranked []types.Candidate, maxChars int) (string, []types.Citation) {
	const sep = "\n\n"

	var blocks []string
	var citations []types.Citation
	seen := make(map[string]bool)
	total := 0

	for _, c := range ranked {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		key := norm.NFC.String(text)
		if seen[key] {
			continue
		}

		id := fmt.Sprintf("C%d", len(citations)+1)
		block := fmt.Sprintf("[%s] %s", id, text)

		cost := utf8.RuneCountInString(block)
		if len(blocks) > 0 {
			cost += len(sep)
		}
		if total+cost > maxChars {
			break
		}

		seen[key] = true
		blocks = append(blocks, block)
		citations = append(citations, types.Citation{ID: id, Text: text})
		total += cost
	}

	return strings.Join(blocks, sep), citations
}
