// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm defines the external model contracts the engine consumes and
// their HTTP backends. Every stage that talks to a model receives these
// interfaces explicitly; there are no package-level clients.
// Implements: prd004-model-services;
//
//	docs/ARCHITECTURE § External Services.
package llm

import "context"

// Completer abstracts the model completion service. It serves query
// rewriting, reranking, grounded-summary generation, faithfulness judging,
// and pairwise judging; call sites must tolerate non-conforming output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder abstracts the embedding service used to build the per-document
// vector index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompleterFunc adapts a function to the Completer interface. Tests use it
// to script model responses.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
