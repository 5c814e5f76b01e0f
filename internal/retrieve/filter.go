// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import "github.com/pdiddy/grounding-engine/pkg/types"

// Filter keeps candidates whose relevance meets the threshold, preserving
// rank order. An empty result is a valid outcome the caller must handle.
func Filter(cands []types.Candidate, threshold float64) []types.Candidate {
	var kept []types.Candidate
	for _, c := range cands {
		if c.Relevance >= threshold {
			kept = append(kept, c)
		}
	}
	return kept
}
