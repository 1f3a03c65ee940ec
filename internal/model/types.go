package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source names one of the searchable corpus collections. Statute and rules
// sections live in the same tables but are exposed as distinct sources so a
// caller can scope a search to either body of law.
type Source string

const (
	SourceStatute   Source = "statute"
	SourceRules     Source = "rules"
	SourceCaseLaw   Source = "case_law"
	SourcePlaybooks Source = "playbooks"
)

// SemanticSources returns every source that carries embeddings, in the fixed
// order used for multi-source fan-out. Templates are excluded: they have no
// embedding column and are only reachable by exact type lookup.
func SemanticSources() []Source {
	return []Source{SourceStatute, SourceRules, SourceCaseLaw, SourcePlaybooks}
}

// ParseSource validates a caller-supplied source name.
func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(raw))) {
	case SourceStatute:
		return SourceStatute, nil
	case SourceRules:
		return SourceRules, nil
	case SourceCaseLaw:
		return SourceCaseLaw, nil
	case SourcePlaybooks:
		return SourcePlaybooks, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, raw)
	}
}

// DocumentType returns the legal_documents.document_type value backing a
// section source, or "" for sources that are not section-backed.
func (s Source) DocumentType() string {
	switch s {
	case SourceStatute:
		return "statute"
	case SourceRules:
		return "rules"
	default:
		return ""
	}
}

// LegalSection is one numbered provision of a statute or rules document.
// Embedding-less rows exist (freshly ingested or non-substantive text); they
// are reachable by section-number lookup but never by semantic search.
type LegalSection struct {
	ID            uuid.UUID
	DocumentType  string
	Citation      string
	SectionNumber string
	SectionTitle  string
	SectionText   string
}

type CaseLawEntry struct {
	ID                  uuid.UUID
	CaseName            string
	Citation            string
	Court               string
	DecidedDate         time.Time
	FactsSummary        string
	Issues              string
	Holdings            string
	RatioDecidendi      string
	SectionsInterpreted []string
}

type Playbook struct {
	ID                  uuid.UUID
	Title               string
	Category            string
	Scenario            string
	RecommendedApproach string
	DoList              []string
	DontList            []string
	LegalReferences     []string
	DifficultyLevel     string
}

type Template struct {
	ID           uuid.UUID
	TemplateType string
	Version      int
	IsActive     bool
	Content      string
}

// Hit is one ranked retrieval result. Exactly one of the entity pointers is
// set, matching Source. Similarity is 1 - cosine distance for semantic hits
// and zero for exact lookups (MatchExact on the enclosing Result).
type Hit struct {
	Source     Source
	Similarity float64
	Section    *LegalSection
	Case       *CaseLawEntry
	Playbook   *Playbook
}

// Match kinds reported on a Result.
const (
	MatchExact    = "exact"
	MatchSemantic = "semantic"
)

// Query describes a single-source retrieval. SectionNumber, when set on a
// section-backed source, selects the exact path. Section and Category are
// hard pre-filters for the case-law and playbook sources respectively.
type Query struct {
	Source        Source
	Text          string
	SectionNumber string
	Section       string
	Category      string
	MaxResults    int
}

// Result is the outcome of a retrieval. Found is true iff Hits is non-empty;
// there is deliberately no minimum-similarity floor.
type Result struct {
	Found     bool
	MatchedBy string
	Hits      []Hit
}
