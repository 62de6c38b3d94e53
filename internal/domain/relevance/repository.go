package relevance

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists assessments into section metadata.
type Repository interface {
	// ReplaceForSection atomically removes the section's previous
	// assessments and stores the new set. Assessments are never updated in
	// place.
	ReplaceForSection(ctx context.Context, sectionID uuid.UUID, assessments []*Assessment) error

	// ListForSection returns the section's current assessments keyed by
	// statement URI.
	ListForSection(ctx context.Context, sectionID uuid.UUID) ([]*Assessment, error)
}
