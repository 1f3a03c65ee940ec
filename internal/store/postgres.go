package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"lexmcp/internal/model"
)

// PostgresStore executes read-only structured and nearest-neighbor queries
// against the externally curated corpus. It owns nothing but the pool: no
// schema management, no writes, no transactions.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Options for opening the store.
type Options struct {
	URL      string
	MaxConns int32
}

// New opens a bounded connection pool and registers the pgvector codec on
// every connection. The pool is the only cross-call shared state; its
// internal synchronization is the only locking the store relies on.
func New(ctx context.Context, opts Options) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolCfg.MaxConns = opts.MaxConns
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open connection pool: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return storeErr("database unreachable", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SectionsByNumber is the exact path: an equality lookup on the structured
// key. It deliberately ignores embeddings so rows without one are still
// reachable by citation.
func (s *PostgresStore) SectionsByNumber(ctx context.Context, documentType, sectionNumber string) ([]model.LegalSection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, d.document_type, d.citation, s.section_number, s.section_title, s.section_text
		FROM legal_sections s
		JOIN legal_documents d ON d.id = s.document_id
		WHERE d.document_type = $1 AND s.section_number = $2
		ORDER BY s.id`,
		documentType, sectionNumber)
	if err != nil {
		return nil, storeErr("section lookup failed", err)
	}
	defer rows.Close()

	var sections []model.LegalSection
	for rows.Next() {
		var sec model.LegalSection
		if err := rows.Scan(&sec.ID, &sec.DocumentType, &sec.Citation, &sec.SectionNumber, &sec.SectionTitle, &sec.SectionText); err != nil {
			return nil, storeErr("scan legal section", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate legal sections", err)
	}
	return sections, nil
}

// SearchSections runs a nearest-neighbor query over section embeddings for
// one document type. Similarity is 1 - cosine distance; rows come back
// ordered by the same operator the planner uses for the vector index, so
// ordering and LIMIT both happen in the database.
func (s *PostgresStore) SearchSections(ctx context.Context, documentType string, embedding []float32, limit int) ([]model.Hit, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, d.document_type, d.citation, s.section_number, s.section_title, s.section_text,
		       1 - (s.embedding <=> $2) AS similarity
		FROM legal_sections s
		JOIN legal_documents d ON d.id = s.document_id
		WHERE d.document_type = $1 AND s.embedding IS NOT NULL
		ORDER BY s.embedding <=> $2
		LIMIT $3`,
		documentType, vec, limit)
	if err != nil {
		return nil, storeErr("section search failed", err)
	}
	defer rows.Close()

	source := model.SourceStatute
	if documentType == model.SourceRules.DocumentType() {
		source = model.SourceRules
	}

	var hits []model.Hit
	for rows.Next() {
		var sec model.LegalSection
		var similarity float64
		if err := rows.Scan(&sec.ID, &sec.DocumentType, &sec.Citation, &sec.SectionNumber, &sec.SectionTitle, &sec.SectionText, &similarity); err != nil {
			return nil, storeErr("scan section hit", err)
		}
		hits = append(hits, model.Hit{Source: source, Similarity: similarity, Section: &sec})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate section hits", err)
	}
	return hits, nil
}

// SearchCaseLaw runs a nearest-neighbor query over case-law embeddings.
// A non-empty section filters by membership in sections_interpreted.
func (s *PostgresStore) SearchCaseLaw(ctx context.Context, section string, embedding []float32, limit int) ([]model.Hit, error) {
	vec := pgvector.NewVector(embedding)

	// Same shape as the section query; the membership filter is added only
	// when requested so the planner can use the plain vector index otherwise.
	query := `
		SELECT id, case_name, citation, court, decided_date,
		       facts_summary, issues, holdings, ratio_decidendi, sections_interpreted,
		       1 - (embedding <=> $1) AS similarity
		FROM case_law
		WHERE embedding IS NOT NULL`
	args := []any{vec}
	if section != "" {
		query += ` AND $2 = ANY(sections_interpreted)`
		args = append(args, section)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("case law search failed", err)
	}
	defer rows.Close()

	var hits []model.Hit
	for rows.Next() {
		var entry model.CaseLawEntry
		var similarity float64
		if err := rows.Scan(&entry.ID, &entry.CaseName, &entry.Citation, &entry.Court, &entry.DecidedDate,
			&entry.FactsSummary, &entry.Issues, &entry.Holdings, &entry.RatioDecidendi, &entry.SectionsInterpreted,
			&similarity); err != nil {
			return nil, storeErr("scan case law hit", err)
		}
		hits = append(hits, model.Hit{Source: model.SourceCaseLaw, Similarity: similarity, Case: &entry})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate case law hits", err)
	}
	return hits, nil
}

// SearchPlaybooks runs a nearest-neighbor query over playbook embeddings,
// optionally scoped to one category.
func (s *PostgresStore) SearchPlaybooks(ctx context.Context, category string, embedding []float32, limit int) ([]model.Hit, error) {
	vec := pgvector.NewVector(embedding)

	query := `
		SELECT id, title, category, scenario, recommended_approach,
		       do_list, dont_list, legal_references, difficulty_level,
		       1 - (embedding <=> $1) AS similarity
		FROM playbooks
		WHERE embedding IS NOT NULL`
	args := []any{vec}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("playbook search failed", err)
	}
	defer rows.Close()

	var hits []model.Hit
	for rows.Next() {
		var pb model.Playbook
		var similarity float64
		if err := rows.Scan(&pb.ID, &pb.Title, &pb.Category, &pb.Scenario, &pb.RecommendedApproach,
			&pb.DoList, &pb.DontList, &pb.LegalReferences, &pb.DifficultyLevel, &similarity); err != nil {
			return nil, storeErr("scan playbook hit", err)
		}
		hits = append(hits, model.Hit{Source: model.SourcePlaybooks, Similarity: similarity, Playbook: &pb})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate playbook hits", err)
	}
	return hits, nil
}

// CurrentTemplate resolves the single current version for a template type:
// the highest version among active rows. The data model permits several
// active rows; version order alone breaks the tie.
func (s *PostgresStore) CurrentTemplate(ctx context.Context, templateType string) (model.Template, error) {
	var tpl model.Template
	err := s.pool.QueryRow(ctx, `
		SELECT id, template_type, version, is_active, content
		FROM templates
		WHERE template_type = $1 AND is_active
		ORDER BY version DESC
		LIMIT 1`,
		templateType).Scan(&tpl.ID, &tpl.TemplateType, &tpl.Version, &tpl.IsActive, &tpl.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Template{}, model.ErrNotFound
		}
		return model.Template{}, storeErr("template lookup failed", err)
	}
	return tpl, nil
}

func storeErr(message string, cause error) error {
	return &model.ProviderError{
		Code:      model.CodeDatastoreError,
		Message:   message + ": " + cause.Error(),
		Retryable: true,
		Cause:     cause,
	}
}
