package llm

import (
	"strings"
	"testing"
)

func TestExtractionPrompt(t *testing.T) {
	p := extractionPrompt()

	for _, want := range []string{
		"NDJSON",
		`"date"`,
		`"description"`,
		`"amount"`,
		`"type"`,
		"debit",
		"credit",
		"code fences",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestNewGemini_DefaultModel(t *testing.T) {
	g := NewGemini("")
	if g.model != DefaultModel {
		t.Errorf("model = %q, want %q", g.model, DefaultModel)
	}

	g = NewGemini("gemini-2.5-pro")
	if g.model != "gemini-2.5-pro" {
		t.Errorf("model = %q, want override", g.model)
	}
}
