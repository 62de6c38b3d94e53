package document

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the read interface over persisted documents and sections.
type Repository interface {
	// GetDocument returns the document without its sections.
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)

	// GetSections returns the document's sections in position order,
	// including embeddings where present.
	GetSections(ctx context.Context, documentID uuid.UUID) ([]*Section, error)

	// GetSectionTexts returns the document's section texts keyed by kind,
	// the shape the citation matcher scans over. Sections with duplicate
	// kinds are concatenated in position order.
	GetSectionTexts(ctx context.Context, documentID uuid.UUID) (map[string]string, error)
}
