// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ground

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

// Registry assigns stable citation ids to passage text within one
// verification run. Identical text (NFC-normalized) always resolves to the
// same id; the registry is append-only.
type Registry struct {
	citations []types.Citation
	byText    map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byText: make(map[string]string)}
}

// Seed loads already-packed citations so their ids stay live for grounding.
// Seeded ids must be sequential from C1, which is what the context packer
// produces; ids assigned afterwards continue the sequence.
func (r *Registry) Seed(citations []types.Citation) {
	for _, c := range citations {
		key := norm.NFC.String(strings.TrimSpace(c.Text))
		if _, ok := r.byText[key]; ok {
			continue
		}
		r.byText[key] = c.ID
		r.citations = append(r.citations, c)
	}
}

// Register returns the citation for the given passage text, minting the
// next sequential id on first sight and reusing the existing id otherwise.
func (r *Registry) Register(text string) types.Citation {
	trimmed := strings.TrimSpace(text)
	key := norm.NFC.String(trimmed)
	if id, ok := r.byText[key]; ok {
		return types.Citation{ID: id, Text: trimmed}
	}
	c := types.Citation{ID: fmt.Sprintf("C%d", len(r.citations)+1), Text: trimmed}
	r.byText[key] = c.ID
	r.citations = append(r.citations, c)
	return c
}

// Citations returns all registered citations in registration order.
func (r *Registry) Citations() []types.Citation {
	out := make([]types.Citation, len(r.citations))
	copy(out, r.citations)
	return out
}
