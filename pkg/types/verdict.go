// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Winner values for pairwise verdicts.
const (
	WinnerA   = "A"
	WinnerB   = "B"
	WinnerTie = "TIE"
)

// CriterionScore holds the per-candidate scores and winner for a single
// evaluation criterion. Scores are on a 0-10 scale.
type CriterionScore struct {
	A      int    `json:"a" yaml:"a"`
	B      int    `json:"b" yaml:"b"`
	Winner string `json:"winner" yaml:"winner"`
	Reason string `json:"reason" yaml:"reason"`
}

// JudgeVerdict is the structured outcome of a pairwise comparison between
// two summary candidates. Per prd002-arbitration R4.
type JudgeVerdict struct {
	Faithfulness CriterionScore `json:"faithfulness" yaml:"faithfulness"`
	Coverage     CriterionScore `json:"coverage" yaml:"coverage"`
	Readability  CriterionScore `json:"readability" yaml:"readability"`
	Overall      CriterionScore `json:"overall" yaml:"overall"`

	Notes []string `json:"notes" yaml:"notes"`

	// Similarity is the token-level Jaccard similarity of the two normalized
	// candidates, computed locally as a diagnostic. A TIE verdict over
	// near-identical inputs (similarity >= 0.85) is flagged in Notes.
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// FaithfulnessVerdict is the quality loop's score of an adopted summary
// against its evidence context.
type FaithfulnessVerdict struct {
	// Score is 0-10; any unsupported claim caps it at 6.
	Score int `json:"score" yaml:"score"`

	NeedsImprove bool `json:"needs_improve" yaml:"needs_improve"`

	Notes string `json:"notes" yaml:"notes"`
}
