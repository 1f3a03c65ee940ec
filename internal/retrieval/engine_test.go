package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lexmcp/internal/model"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeStore struct {
	sections     map[string][]model.LegalSection // keyed docType+"/"+sectionNumber
	sectionHits  map[string][]model.Hit          // keyed docType
	caseHits     []model.Hit
	playbookHits []model.Hit
	template     model.Template
	templateErr  error
	searchErr    error

	// mu guards the recording fields below; MultiSearch calls the search
	// methods from concurrent goroutines.
	mu             sync.Mutex
	gotSection     string
	gotCategory    string
	gotLimits      []int
	sectionsCalled int
}

func (f *fakeStore) SectionsByNumber(_ context.Context, documentType, sectionNumber string) ([]model.LegalSection, error) {
	f.mu.Lock()
	f.sectionsCalled++
	f.mu.Unlock()
	return f.sections[documentType+"/"+sectionNumber], nil
}

func (f *fakeStore) SearchSections(_ context.Context, documentType string, _ []float32, limit int) ([]model.Hit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	f.gotLimits = append(f.gotLimits, limit)
	f.mu.Unlock()
	hits := f.sectionHits[documentType]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeStore) SearchCaseLaw(_ context.Context, section string, _ []float32, limit int) ([]model.Hit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	f.gotSection = section
	f.gotLimits = append(f.gotLimits, limit)
	f.mu.Unlock()
	hits := f.caseHits
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeStore) SearchPlaybooks(_ context.Context, category string, _ []float32, limit int) ([]model.Hit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	f.gotCategory = category
	f.gotLimits = append(f.gotLimits, limit)
	f.mu.Unlock()
	hits := f.playbookHits
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeStore) CurrentTemplate(_ context.Context, _ string) (model.Template, error) {
	if f.templateErr != nil {
		return model.Template{}, f.templateErr
	}
	return f.template, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }
func (f *fakeStore) Close()                       {}

func sectionHit(source model.Source, number string, similarity float64) model.Hit {
	return model.Hit{
		Source:     source,
		Similarity: similarity,
		Section:    &model.LegalSection{SectionNumber: number, DocumentType: source.DocumentType()},
	}
}

func caseHit(name string, similarity float64) model.Hit {
	return model.Hit{Source: model.SourceCaseLaw, Similarity: similarity, Case: &model.CaseLawEntry{CaseName: name}}
}

func playbookHit(title string, similarity float64) model.Hit {
	return model.Hit{Source: model.SourcePlaybooks, Similarity: similarity, Playbook: &model.Playbook{Title: title}}
}

func TestRetrieve_ExactMatchSkipsSemanticSearch(t *testing.T) {
	store := &fakeStore{
		sections: map[string][]model.LegalSection{
			"statute/14": {{SectionNumber: "14", SectionTitle: "Notice periods", DocumentType: "statute"}},
		},
		sectionHits: map[string][]model.Hit{
			"statute": {sectionHit(model.SourceStatute, "99", 0.9)},
		},
	}
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	eng := NewEngine(store, embedder)

	res, err := eng.Retrieve(context.Background(), model.Query{
		Source:        model.SourceStatute,
		Text:          "anything about notice",
		SectionNumber: "14",
		MaxResults:    5,
	})
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if !res.Found {
		t.Fatal("expected found=true for exact match")
	}
	if res.MatchedBy != model.MatchExact {
		t.Fatalf("expected exact match, got %q", res.MatchedBy)
	}
	if len(res.Hits) != 1 || res.Hits[0].Section.SectionNumber != "14" {
		t.Fatalf("unexpected hits: %#v", res.Hits)
	}
	if embedder.calls != 0 {
		t.Fatalf("embedder must not be called on the exact path, got %d calls", embedder.calls)
	}
}

func TestRetrieve_ExactMissFallsBackToSemantic(t *testing.T) {
	store := &fakeStore{
		sections: map[string][]model.LegalSection{},
		sectionHits: map[string][]model.Hit{
			"statute": {sectionHit(model.SourceStatute, "7", 0.8)},
		},
	}
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	eng := NewEngine(store, embedder)

	res, err := eng.Retrieve(context.Background(), model.Query{
		Source:        model.SourceStatute,
		Text:          "termination notice",
		SectionNumber: "404",
		MaxResults:    5,
	})
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if res.MatchedBy != model.MatchSemantic {
		t.Fatalf("expected semantic fallback, got %q", res.MatchedBy)
	}
	if embedder.calls != 1 {
		t.Fatalf("expected one embedding call, got %d", embedder.calls)
	}
	if !res.Found || len(res.Hits) != 1 {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestRetrieve_FoundConsistentWithHits(t *testing.T) {
	store := &fakeStore{sectionHits: map[string][]model.Hit{}}
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	eng := NewEngine(store, embedder)

	res, err := eng.Retrieve(context.Background(), model.Query{
		Source:     model.SourceRules,
		Text:       "no such thing",
		MaxResults: 3,
	})
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if res.Found {
		t.Fatal("expected found=false with no hits")
	}
	if len(res.Hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(res.Hits))
	}
}

func TestRetrieve_PassesFiltersThrough(t *testing.T) {
	store := &fakeStore{caseHits: []model.Hit{caseHit("Doe v Roe", 0.7)}}
	eng := NewEngine(store, &fakeEmbedder{vector: []float32{0.1}})

	if _, err := eng.Retrieve(context.Background(), model.Query{
		Source:     model.SourceCaseLaw,
		Text:       "eviction dispute",
		Section:    "14",
		MaxResults: 3,
	}); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if store.gotSection != "14" {
		t.Fatalf("section filter not forwarded, got %q", store.gotSection)
	}

	store2 := &fakeStore{playbookHits: []model.Hit{playbookHit("Deposits", 0.6)}}
	eng2 := NewEngine(store2, &fakeEmbedder{vector: []float32{0.1}})
	if _, err := eng2.Retrieve(context.Background(), model.Query{
		Source:     model.SourcePlaybooks,
		Text:       "deposit not returned",
		Category:   "deposits",
		MaxResults: 3,
	}); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if store2.gotCategory != "deposits" {
		t.Fatalf("category filter not forwarded, got %q", store2.gotCategory)
	}
}

func TestRetrieve_EmbedderErrorPropagates(t *testing.T) {
	provErr := &model.ProviderError{Code: model.CodeEmbeddingFailed, Message: "quota exceeded", Retryable: true}
	eng := NewEngine(&fakeStore{}, &fakeEmbedder{err: provErr})

	_, err := eng.Retrieve(context.Background(), model.Query{
		Source:     model.SourceStatute,
		Text:       "anything",
		MaxResults: 5,
	})
	var got *model.ProviderError
	if !errors.As(err, &got) || got.Code != model.CodeEmbeddingFailed {
		t.Fatalf("expected embedding provider error, got %v", err)
	}
}

func TestMultiSearch_MergesSortsAndTruncates(t *testing.T) {
	store := &fakeStore{
		sectionHits: map[string][]model.Hit{
			"statute": {sectionHit(model.SourceStatute, "1", 0.9), sectionHit(model.SourceStatute, "2", 0.5)},
			"rules":   {sectionHit(model.SourceRules, "r1", 0.7)},
		},
		caseHits:     []model.Hit{caseHit("A v B", 0.8)},
		playbookHits: []model.Hit{playbookHit("Guide", 0.6)},
	}
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	eng := NewEngine(store, embedder)

	hits, err := eng.MultiSearch(context.Background(), "query", nil, 3)
	if err != nil {
		t.Fatalf("MultiSearch returned error: %v", err)
	}
	if embedder.calls != 1 {
		t.Fatalf("embedding must be computed once, got %d calls", embedder.calls)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits after truncation, got %d", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Similarity < hits[i].Similarity {
			t.Fatalf("similarity not monotonically decreasing at %d: %#v", i, hits)
		}
	}
	if hits[0].Section == nil || hits[0].Section.SectionNumber != "1" {
		t.Fatalf("expected statute section 1 ranked first, got %#v", hits[0])
	}
	if hits[1].Case == nil || hits[1].Case.CaseName != "A v B" {
		t.Fatalf("expected case hit ranked second, got %#v", hits[1])
	}
}

func TestMultiSearch_TieBrokenBySourceOrder(t *testing.T) {
	store := &fakeStore{
		sectionHits: map[string][]model.Hit{
			"statute": {sectionHit(model.SourceStatute, "s", 0.5)},
			"rules":   {sectionHit(model.SourceRules, "r", 0.5)},
		},
	}
	eng := NewEngine(store, &fakeEmbedder{vector: []float32{0.1}})

	hits, err := eng.MultiSearch(context.Background(), "q", []model.Source{model.SourceStatute, model.SourceRules}, 5)
	if err != nil {
		t.Fatalf("MultiSearch returned error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Source != model.SourceStatute || hits[1].Source != model.SourceRules {
		t.Fatalf("tie must preserve source iteration order, got %v then %v", hits[0].Source, hits[1].Source)
	}
}

func TestMultiSearch_SourceIsolation(t *testing.T) {
	store := &fakeStore{
		sectionHits: map[string][]model.Hit{
			"statute": {sectionHit(model.SourceStatute, "3", 0.4)},
		},
		caseHits:     []model.Hit{caseHit("Should not appear", 0.99)},
		playbookHits: []model.Hit{playbookHit("Should not appear", 0.99)},
	}
	eng := NewEngine(store, &fakeEmbedder{vector: []float32{0.1}})

	hits, err := eng.MultiSearch(context.Background(), "q", []model.Source{model.SourceStatute}, 5)
	if err != nil {
		t.Fatalf("MultiSearch returned error: %v", err)
	}
	for _, hit := range hits {
		if hit.Source != model.SourceStatute {
			t.Fatalf("source isolation violated: got hit from %v", hit.Source)
		}
	}
}

func TestMultiSearch_RejectsUnknownSource(t *testing.T) {
	eng := NewEngine(&fakeStore{}, &fakeEmbedder{vector: []float32{0.1}})

	_, err := eng.MultiSearch(context.Background(), "q", []model.Source{"templates"}, 5)
	if !errors.Is(err, model.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestMultiSearch_PerSourceCapForwarded(t *testing.T) {
	store := &fakeStore{
		sectionHits: map[string][]model.Hit{"statute": {}},
	}
	eng := NewEngine(store, &fakeEmbedder{vector: []float32{0.1}})

	if _, err := eng.MultiSearch(context.Background(), "q", []model.Source{model.SourceStatute}, 7); err != nil {
		t.Fatalf("MultiSearch returned error: %v", err)
	}
	if len(store.gotLimits) != 1 || store.gotLimits[0] != 7 {
		t.Fatalf("expected per-source limit 7, got %v", store.gotLimits)
	}
}

func TestTemplate_NotFoundPassesThrough(t *testing.T) {
	eng := NewEngine(&fakeStore{templateErr: model.ErrNotFound}, &fakeEmbedder{})

	_, err := eng.Template(context.Background(), "lease_termination")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
