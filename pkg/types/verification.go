// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the grounding engine.
// Implements: prd001-verification (data model);
//
//	docs/ARCHITECTURE § Data Model.
package types

// Passage is a chunk of source text produced by splitting a document for
// embedding and retrieval. Passages are owned by a single verification run.
type Passage struct {
	Text string `json:"text" yaml:"text"`
}

// Candidate is a retrieval hit for one query. IDs are assigned in
// descending-score order at retrieval time ("C1".."Ck") and are run-local;
// they are not stable until the text is promoted to a Citation.
type Candidate struct {
	ID string `json:"id" yaml:"id"`

	Text string `json:"text" yaml:"text"`

	// Score is the raw distance reported by the vector index.
	Score float64 `json:"score" yaml:"score"`

	// Relevance is the normalized score 1/(1+Score), always in (0, 1].
	Relevance float64 `json:"relevance" yaml:"relevance"`
}

// Citation is a deduplicated, stably-identified passage referenced by a
// verified summary. Identical passage text always resolves to the same ID
// within one verification run.
type Citation struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Candidate sources for arbitration.
const (
	SourceDraft    = "draft"
	SourceGrounded = "grounded"
)

// SummaryCandidate is one of the two summaries the arbiter chooses between:
// the unconstrained draft or an evidence-constrained regeneration.
type SummaryCandidate struct {
	// Source is SourceDraft or SourceGrounded.
	Source string `json:"source" yaml:"source"`

	Text string `json:"text" yaml:"text"`

	// CitationsUsed lists the citation IDs referenced inline by Text.
	CitationsUsed []string `json:"citations_used" yaml:"citations_used"`
}

// RetrievalAttempt is one rung of the arbiter's escalation ladder. Successive
// attempts are monotonically broader (larger TopK/RerankTop) and looser
// (lower RelevanceThreshold).
type RetrievalAttempt struct {
	TopK               int     `json:"top_k" yaml:"top_k"`
	RerankTop          int     `json:"rerank_top" yaml:"rerank_top"`
	RelevanceThreshold float64 `json:"relevance_threshold" yaml:"relevance_threshold"`
}

// VerificationResult is the outcome of one verification run. Every sentence
// of VerifiedSummary either carries at least one citation marker whose ID
// appears in Citations, or appears verbatim in UnsupportedSentences — never
// both, never neither.
type VerificationResult struct {
	// RunID identifies this verification run in logs.
	RunID string `json:"run_id" yaml:"run_id"`

	// Query is the retrieval query used for whole-document retrieval.
	Query string `json:"query" yaml:"query"`

	// VerifiedSummary is the adopted summary with inline citation markers.
	VerifiedSummary string `json:"verified_summary" yaml:"verified_summary"`

	// Context is the packed evidence the summary was verified against,
	// bounded to the configured character budget.
	Context string `json:"context" yaml:"context"`

	Citations []Citation `json:"citations" yaml:"citations"`

	// UsedCitations lists citation IDs actually referenced by the summary,
	// in first-use order.
	UsedCitations []string `json:"used_citations" yaml:"used_citations"`

	// UnsupportedSentences holds, verbatim, every sentence for which no
	// evidence cleared the threshold. A citation is never fabricated for
	// an unsupported sentence.
	UnsupportedSentences []string `json:"unsupported_sentences" yaml:"unsupported_sentences"`

	// Winner is SourceDraft or SourceGrounded.
	Winner string `json:"winner" yaml:"winner"`

	// JudgeScore is the faithfulness score (0-10) of the final summary.
	JudgeScore int `json:"judge_score" yaml:"judge_score"`

	// ImproveCount is how many improve-and-reverify iterations ran.
	ImproveCount int `json:"improve_count" yaml:"improve_count"`
}
