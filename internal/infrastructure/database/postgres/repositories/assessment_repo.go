package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"

	"github.com/cr625/proethica-sub007/internal/domain/relevance"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AssessmentRepository persists relevance assessments. It implements
// relevance.Repository. Assessments are append-only per run: a re-score
// replaces the section's previous set inside one transaction so readers never
// observe a mix of old and new rows.
type AssessmentRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewAssessmentRepository builds the repository over an established pool.
func NewAssessmentRepository(pool *pgxpool.Pool, log logging.Logger) *AssessmentRepository {
	return &AssessmentRepository{pool: pool, logger: log.Named("repo.assessment")}
}

// ReplaceForSection atomically removes the section's previous assessments and
// stores the new set.
func (r *AssessmentRepository) ReplaceForSection(ctx context.Context, sectionID uuid.UUID, assessments []*relevance.Assessment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabase, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM section_assessments WHERE section_id = $1`, sectionID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeAssessmentPersist, "failed to clear previous assessments")
	}

	const insert = `
		INSERT INTO section_assessments (
			id, section_id, statement_uri,
			vector_similarity, term_overlap, shared_terms, structural_relevance,
			preliminary_score, judgment, agreement_score,
			final_score, relationship, calculation, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for _, a := range assessments {
		sharedTerms, err := json.Marshal(a.SharedTerms)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode shared terms")
		}
		judgment, err := json.Marshal(a.Judgment)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode judgment")
		}
		if _, err := tx.Exec(ctx, insert,
			a.ID, a.SectionID, a.StatementURI,
			a.VectorSimilarity, a.TermOverlap, sharedTerms, a.StructuralRelevance,
			a.PreliminaryScore, judgment, a.AgreementScore,
			a.FinalScore, string(a.Relationship), a.Calculation, a.CreatedAt,
		); err != nil {
			return apperrors.Wrap(err, apperrors.CodeAssessmentPersist, "failed to insert assessment").
				WithDetail("statement_uri=" + a.StatementURI)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.CodeAssessmentPersist, "failed to commit assessments")
	}

	r.logger.Debug("section assessments replaced",
		logging.String("section_id", sectionID.String()),
		logging.Int("count", len(assessments)),
	)
	return nil
}

// ListForSection returns the section's current assessments ordered by final
// score, strongest first.
func (r *AssessmentRepository) ListForSection(ctx context.Context, sectionID uuid.UUID) ([]*relevance.Assessment, error) {
	const q = `
		SELECT id, section_id, statement_uri,
		       vector_similarity, term_overlap, shared_terms, structural_relevance,
		       preliminary_score, judgment, agreement_score,
		       final_score, relationship, calculation, created_at
		FROM section_assessments
		WHERE section_id = $1
		ORDER BY final_score DESC, statement_uri`

	rows, err := r.pool.Query(ctx, q, sectionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to query assessments")
	}
	defer rows.Close()

	var out []*relevance.Assessment
	for rows.Next() {
		var (
			a            relevance.Assessment
			sharedTerms  []byte
			judgment     []byte
			relationship string
		)
		if err := rows.Scan(
			&a.ID, &a.SectionID, &a.StatementURI,
			&a.VectorSimilarity, &a.TermOverlap, &sharedTerms, &a.StructuralRelevance,
			&a.PreliminaryScore, &judgment, &a.AgreementScore,
			&a.FinalScore, &relationship, &a.Calculation, &a.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to scan assessment row")
		}
		if len(sharedTerms) > 0 {
			if err := json.Unmarshal(sharedTerms, &a.SharedTerms); err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "stored shared terms are not valid JSON")
			}
		}
		if len(judgment) > 0 {
			if err := json.Unmarshal(judgment, &a.Judgment); err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "stored judgment is not valid JSON")
			}
		}
		a.Relationship = relevance.Relationship(relationship)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "assessment query failed")
	}
	return out, nil
}
