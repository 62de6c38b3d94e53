package neo4j

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/cr625/proethica-sub007/internal/domain/guideline"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// StatementRepository reads guideline statements from the ontology graph.
// It implements guideline.Repository.
type StatementRepository struct {
	driver *Driver
	logger logging.Logger
}

// NewStatementRepository builds the repository over an established driver.
func NewStatementRepository(driver *Driver, log logging.Logger) *StatementRepository {
	return &StatementRepository{driver: driver, logger: log.Named("repo.statement")}
}

// GetCandidateStatements returns the guideline statements of a domain, the
// candidate set every section in that domain is scored against. Statements
// missing a label are skipped: a labelless triple has no scoring text.
func (r *StatementRepository) GetCandidateStatements(ctx context.Context, domainID string) ([]*guideline.Statement, error) {
	session := r.driver.ReadSession(ctx)
	defer session.Close(ctx)

	const cypher = `
		MATCH (d:Domain {id: $domainID})-[:HAS_GUIDELINE]->(s:Statement)
		RETURN s.uri AS uri,
		       s.subject AS subject,
		       s.predicate AS predicate,
		       s.object AS object,
		       s.label AS label,
		       s.description AS description,
		       s.kind AS kind
		ORDER BY s.uri`

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"domainID": domainID})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOntologyQuery, "failed to query guideline statements").
			WithDetail("domain_id=" + domainID)
	}

	rows, ok := records.([]*neo4j.Record)
	if !ok {
		return nil, apperrors.New(apperrors.CodeOntologyQuery, "unexpected result shape from ontology store")
	}

	statements := make([]*guideline.Statement, 0, len(rows))
	skipped := 0
	for _, rec := range rows {
		st := &guideline.Statement{
			URI:         stringValue(rec, "uri"),
			Subject:     stringValue(rec, "subject"),
			Predicate:   stringValue(rec, "predicate"),
			Object:      stringValue(rec, "object"),
			Label:       stringValue(rec, "label"),
			Description: stringValue(rec, "description"),
			Kind:        guideline.StatementKind(stringValue(rec, "kind")),
		}
		if st.URI == "" || st.Label == "" {
			skipped++
			continue
		}
		statements = append(statements, st)
	}
	if skipped > 0 {
		r.logger.Warn("skipped statements without uri or label",
			logging.String("domain_id", domainID),
			logging.Int("skipped", skipped),
		)
	}

	return statements, nil
}

// stringValue extracts a string field from a record, tolerating nulls.
func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
