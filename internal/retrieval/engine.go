package retrieval

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"lexmcp/internal/model"
)

// Engine implements the hybrid exact-then-semantic retrieval strategy over
// the curated corpus. It holds no mutable state of its own: the store pool
// and embedder configuration are read-only from its perspective, so any
// number of calls may run concurrently.
type Engine struct {
	store    model.Store
	embedder model.Embedder
	logger   *log.Logger
}

func NewEngine(store model.Store, embedder model.Embedder) *Engine {
	return &Engine{store: store, embedder: embedder}
}

// SetLogger routes diagnostics to logger instead of the process default.
func (e *Engine) SetLogger(logger *log.Logger) {
	e.logger = logger
}

// Retrieve runs a single-source retrieval.
//
// When the query carries a section number for a section-backed source, the
// exact path runs first and a non-empty match is returned as-is: a citation
// lookup must never be diluted or reordered by similarity results. The
// semantic path runs only when no exact key was given or the exact lookup
// found nothing.
func (e *Engine) Retrieve(ctx context.Context, q model.Query) (model.Result, error) {
	if q.MaxResults < 1 {
		q.MaxResults = 1
	}

	if docType := q.Source.DocumentType(); docType != "" && strings.TrimSpace(q.SectionNumber) != "" {
		sections, err := e.store.SectionsByNumber(ctx, docType, strings.TrimSpace(q.SectionNumber))
		if err != nil {
			return model.Result{}, err
		}
		if len(sections) > 0 {
			hits := make([]model.Hit, 0, len(sections))
			for i := range sections {
				hits = append(hits, model.Hit{Source: q.Source, Section: &sections[i]})
			}
			return model.Result{Found: true, MatchedBy: model.MatchExact, Hits: hits}, nil
		}
		e.logf("no exact match for %s section %q; falling back to semantic search", q.Source, q.SectionNumber)
	}

	embedding, err := e.embedder.Embed(ctx, q.Text)
	if err != nil {
		return model.Result{}, err
	}

	hits, err := e.searchSource(ctx, q.Source, q, embedding)
	if err != nil {
		return model.Result{}, err
	}
	return model.Result{Found: len(hits) > 0, MatchedBy: model.MatchSemantic, Hits: hits}, nil
}

// MultiSearch embeds the query once and fans out to each requested source
// with the per-source cap, then merges by similarity descending and cuts to
// the single global cap. Sources default to every semantic source. Cross-
// source scores are assumed comparable; that holds only while all entities
// share one embedding model, which is an ingestion-side contract the engine
// does not verify.
func (e *Engine) MultiSearch(ctx context.Context, text string, sources []model.Source, maxResults int) ([]model.Hit, error) {
	if maxResults < 1 {
		maxResults = 1
	}
	if len(sources) == 0 {
		sources = model.SemanticSources()
	}
	for _, src := range sources {
		if _, err := model.ParseSource(string(src)); err != nil {
			return nil, err
		}
	}

	embedding, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Per-source result slots keep merge order deterministic regardless of
	// which goroutine finishes first.
	perSource := make([][]model.Hit, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			hits, err := e.searchSource(gctx, src, model.Query{MaxResults: maxResults}, embedding)
			if err != nil {
				return err
			}
			perSource[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []model.Hit
	for _, hits := range perSource {
		merged = append(merged, hits...)
	}
	// Stable sort: ties keep source iteration order, then store row order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged, nil
}

// Template resolves the current active version for a template type. This is
// a pure structured lookup; model.ErrNotFound passes through for the
// dispatcher to report as a soft miss.
func (e *Engine) Template(ctx context.Context, templateType string) (model.Template, error) {
	return e.store.CurrentTemplate(ctx, templateType)
}

func (e *Engine) searchSource(ctx context.Context, src model.Source, q model.Query, embedding []float32) ([]model.Hit, error) {
	switch src {
	case model.SourceStatute, model.SourceRules:
		return e.store.SearchSections(ctx, src.DocumentType(), embedding, q.MaxResults)
	case model.SourceCaseLaw:
		return e.store.SearchCaseLaw(ctx, q.Section, embedding, q.MaxResults)
	case model.SourcePlaybooks:
		return e.store.SearchPlaybooks(ctx, q.Category, embedding, q.MaxResults)
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownSource, src)
	}
}

// logf routes messages to the configured logger or the process default.
func (e *Engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
