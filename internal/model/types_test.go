package model

import (
	"errors"
	"testing"
)

func TestParseSource(t *testing.T) {
	cases := []struct {
		raw  string
		want Source
	}{
		{"statute", SourceStatute},
		{"rules", SourceRules},
		{"case_law", SourceCaseLaw},
		{"playbooks", SourcePlaybooks},
		{" Statute ", SourceStatute},
		{"CASE_LAW", SourceCaseLaw},
	}
	for _, tc := range cases {
		got, err := ParseSource(tc.raw)
		if err != nil {
			t.Fatalf("ParseSource(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSource(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestParseSource_Unknown(t *testing.T) {
	for _, raw := range []string{"", "templates", "caselaw", "all"} {
		if _, err := ParseSource(raw); !errors.Is(err, ErrUnknownSource) {
			t.Fatalf("ParseSource(%q) = %v, want ErrUnknownSource", raw, err)
		}
	}
}

func TestSourceDocumentType(t *testing.T) {
	if SourceStatute.DocumentType() != "statute" || SourceRules.DocumentType() != "rules" {
		t.Fatal("section-backed sources must map to their document type")
	}
	if SourceCaseLaw.DocumentType() != "" || SourcePlaybooks.DocumentType() != "" {
		t.Fatal("non-section sources must have no document type")
	}
}

func TestSemanticSources_FixedOrder(t *testing.T) {
	want := []Source{SourceStatute, SourceRules, SourceCaseLaw, SourcePlaybooks}
	got := SemanticSources()
	if len(got) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sources[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
