package guideline

import "context"

// Repository is the read interface over the ontology store.
type Repository interface {
	// GetCandidateStatements returns the guideline statements for a domain
	// (a "world" in the ontology), the candidate set every section of a
	// document in that domain is scored against.
	GetCandidateStatements(ctx context.Context, domainID string) ([]*Statement, error)
}
