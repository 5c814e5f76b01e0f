// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ground

import (
	"testing"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

func TestRegistryAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Register("first passage")
	b := r.Register("second passage")
	if a.ID != "C1" || b.ID != "C2" {
		t.Errorf("got ids %s, %s, want C1, C2", a.ID, b.ID)
	}
}

func TestRegistryReusesIDForIdenticalText(t *testing.T) {
	r := NewRegistry()
	a := r.Register("shared passage")
	b := r.Register("  shared passage  ")
	if a.ID != b.ID {
		t.Errorf("identical text got ids %s and %s", a.ID, b.ID)
	}
	if len(r.Citations()) != 1 {
		t.Errorf("registry holds %d citations, want 1", len(r.Citations()))
	}
}

func TestRegistryNormalizesUnicode(t *testing.T) {
	r := NewRegistry()
	a := r.Register("café")
	b := r.Register("café")
	if a.ID != b.ID {
		t.Errorf("NFC-equal text got ids %s and %s", a.ID, b.ID)
	}
}

func TestRegistrySeedKeepsIDsLive(t *testing.T) {
	r := NewRegistry()
	r.Seed([]types.Citation{
		{ID: "C1", Text: "packed passage one"},
		{ID: "C2", Text: "packed passage two"},
	})

	if got := r.Register("packed passage two"); got.ID != "C2" {
		t.Errorf("seeded text got id %s, want C2", got.ID)
	}
	if got := r.Register("brand new passage"); got.ID != "C3" {
		t.Errorf("new text got id %s, want C3", got.ID)
	}
	if n := len(r.Citations()); n != 3 {
		t.Errorf("registry holds %d citations, want 3", n)
	}
}

func TestRegistryCitationsIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Register("a passage")
	got := r.Citations()
	got[0].Text = "mutated"
	if r.Citations()[0].Text != "a passage" {
		t.Error("Citations() exposed internal state")
	}
}
