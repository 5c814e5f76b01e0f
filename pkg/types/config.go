package types

import "time"

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EmbeddingConfig holds settings for the embedding service used to build the
// per-document vector index. The endpoint speaks the OpenAI embeddings wire
// format; Ollama-style responses are also accepted.
type EmbeddingConfig struct {
	// BaseURL is the API base (default "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier (default "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the embeddings API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-request HTTP timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// VerifyConfig holds the knobs recognized by the grounding engine.
// Per prd001-verification R5.
type VerifyConfig struct {
	// TopK is the whole-document retrieval breadth (default 8).
	TopK int `json:"top_k" yaml:"top_k"`

	// RerankTop is how many reranked passages feed the packed context (default 4).
	RerankTop int `json:"rerank_top" yaml:"rerank_top"`

	// PerSentenceK is the evidence count attached per sentence (default 3).
	PerSentenceK int `json:"per_sentence_k" yaml:"per_sentence_k"`

	// RelevanceThreshold filters whole-document retrieval hits (default 0.20).
	RelevanceThreshold float64 `json:"relevance_threshold" yaml:"relevance_threshold"`

	// SentenceThreshold filters per-sentence retrieval hits (default 0.12).
	// It is looser than RelevanceThreshold: per-sentence recall must be
	// higher to avoid over-flagging sentences as unsupported.
	SentenceThreshold float64 `json:"sentence_threshold" yaml:"sentence_threshold"`

	// MaxContextChars bounds the packed evidence context (default 2800).
	MaxContextChars int `json:"max_context_chars" yaml:"max_context_chars"`

	// MaxRetry is the number of escalation attempts beyond the first
	// retrieval configuration (default 2).
	MaxRetry int `json:"max_retry" yaml:"max_retry"`

	// MaxImprove caps the quality-loop improve iterations (default 2).
	MaxImprove int `json:"max_improve" yaml:"max_improve"`

	// ChunkSize is the target passage size in characters (default 500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkOverlap is the passage overlap in characters (default 50).
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// WithDefaults returns a copy of the config with zero fields replaced by
// their documented defaults.
func (c VerifyConfig) WithDefaults() VerifyConfig {
	if c.TopK <= 0 {
		c.TopK = 8
	}
	if c.RerankTop <= 0 {
		c.RerankTop = 4
	}
	if c.PerSentenceK <= 0 {
		c.PerSentenceK = 3
	}
	if c.RelevanceThreshold <= 0 {
		c.RelevanceThreshold = 0.20
	}
	if c.SentenceThreshold <= 0 {
		c.SentenceThreshold = 0.12
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = 2800
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 2
	}
	if c.MaxImprove <= 0 {
		c.MaxImprove = 2
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 500
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = 50
	}
	return c
}

// EscalationLadder returns the ordered retrieval configurations the arbiter
// tries: the configured baseline first, then MaxRetry escalations, each
// broader (TopK+4, RerankTop+2) and looser (threshold scaled by 0.6) than
// the previous. With defaults this yields {8,4,0.20}, {12,6,0.12},
// {16,8,0.072}.
func (c VerifyConfig) EscalationLadder() []RetrievalAttempt {
	c = c.WithDefaults()

	rung := RetrievalAttempt{
		TopK:               c.TopK,
		RerankTop:          c.RerankTop,
		RelevanceThreshold: c.RelevanceThreshold,
	}

	ladder := make([]RetrievalAttempt, 0, c.MaxRetry+1)
	for i := 0; i <= c.MaxRetry; i++ {
		ladder = append(ladder, rung)
		rung.TopK += 4
		rung.RerankTop += 2
		rung.RelevanceThreshold *= 0.6
	}
	return ladder
}

// EngineConfig groups all stage configurations for the engine.
type EngineConfig struct {
	Completion AIConfig        `json:"completion" yaml:"completion"`
	Embedding  EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Verify     VerifyConfig    `json:"verify" yaml:"verify"`
}
