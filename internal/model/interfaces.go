package model

import "context"

// Embedder converts text to a fixed-dimension vector. Implementations
// truncate over-long input before submission and surface upstream failures
// as a *ProviderError with CodeEmbeddingFailed.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store executes read-only structured and nearest-neighbor queries against
// the curated corpus. Nearest-neighbor methods return hits ordered by
// similarity descending, already capped at limit, and skip rows without
// embeddings. Failures surface as *ProviderError with CodeDatastoreError.
type Store interface {
	SectionsByNumber(ctx context.Context, documentType, sectionNumber string) ([]LegalSection, error)
	SearchSections(ctx context.Context, documentType string, embedding []float32, limit int) ([]Hit, error)
	SearchCaseLaw(ctx context.Context, section string, embedding []float32, limit int) ([]Hit, error)
	SearchPlaybooks(ctx context.Context, category string, embedding []float32, limit int) ([]Hit, error)
	CurrentTemplate(ctx context.Context, templateType string) (Template, error)
	Ping(ctx context.Context) error
	Close()
}

// Retriever is the engine surface the tool dispatcher depends on.
type Retriever interface {
	Retrieve(ctx context.Context, q Query) (Result, error)
	MultiSearch(ctx context.Context, text string, sources []Source, maxResults int) ([]Hit, error)
	Template(ctx context.Context, templateType string) (Template, error)
}
