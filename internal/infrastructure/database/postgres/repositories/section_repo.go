// Package repositories implements the engine's persistence ports on top of
// PostgreSQL. Documents and sections are read-only here; assessments are the
// only rows this module writes.
package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/cr625/proethica-sub007/internal/domain/document"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// SectionRepository reads documents and their sections, including pgvector
// embeddings. It implements document.Repository.
type SectionRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewSectionRepository builds the repository over an established pool.
func NewSectionRepository(pool *pgxpool.Pool, log logging.Logger) *SectionRepository {
	return &SectionRepository{pool: pool, logger: log.Named("repo.section")}
}

// GetDocument returns the document without its sections.
func (r *SectionRepository) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	const q = `
		SELECT id, title, COALESCE(source, ''), COALESCE(case_year, 0), created_at
		FROM documents
		WHERE id = $1`

	var d document.Document
	err := r.pool.QueryRow(ctx, q, id).Scan(&d.ID, &d.Title, &d.Source, &d.CaseYear, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.New(apperrors.CodeDocumentNotFound, "document not found").
			WithDetail("document_id=" + id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to query document")
	}
	return &d, nil
}

// GetSections returns the document's sections in position order. Sections the
// embedding pipeline has not reached yet come back with a nil Embedding.
func (r *SectionRepository) GetSections(ctx context.Context, documentID uuid.UUID) ([]*document.Section, error) {
	const q = `
		SELECT id, document_id, kind, COALESCE(title, ''), content, embedding, position, created_at
		FROM document_sections
		WHERE document_id = $1
		ORDER BY position`

	rows, err := r.pool.Query(ctx, q, documentID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to query sections")
	}
	defer rows.Close()

	var sections []*document.Section
	for rows.Next() {
		var (
			s   document.Section
			vec *pgvector.Vector
		)
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.Kind, &s.Title, &s.Text, &vec, &s.Position, &s.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to scan section row")
		}
		if vec != nil {
			s.Embedding = vec.Slice()
		}
		sections = append(sections, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "section query failed")
	}
	if len(sections) == 0 {
		return nil, apperrors.New(apperrors.CodeSectionNotFound, "document has no sections").
			WithDetail("document_id=" + documentID.String())
	}
	return sections, nil
}

// GetSectionTexts returns the document's section texts keyed by kind, the
// shape the citation matcher scans. Duplicate kinds are concatenated in
// position order.
func (r *SectionRepository) GetSectionTexts(ctx context.Context, documentID uuid.UUID) (map[string]string, error) {
	sections, err := r.GetSections(ctx, documentID)
	if err != nil {
		return nil, err
	}

	texts := make(map[string]string, len(sections))
	for _, s := range sections {
		kind := string(s.Kind)
		if existing, ok := texts[kind]; ok {
			texts[kind] = existing + "\n" + s.Text
			continue
		}
		texts[kind] = s.Text
	}
	for kind, text := range texts {
		texts[kind] = strings.TrimSpace(text)
	}
	return texts, nil
}
