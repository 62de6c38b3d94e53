// Package relevance implements the guideline-to-section relevance engine: a
// multi-metric scorer that combines vector similarity, lexical overlap, a
// structural prior, and an LLM judge into one explainable confidence score
// per (section, guideline statement) pair.
package relevance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cr625/proethica-sub007/internal/domain/document"
	"github.com/cr625/proethica-sub007/internal/domain/guideline"
	domain "github.com/cr625/proethica-sub007/internal/domain/relevance"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	"github.com/cr625/proethica-sub007/internal/intelligence/embedding"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// AssessmentCache is the optional cache in front of the assessment store.
// A nil cache disables caching.
type AssessmentCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Metrics is the instrumentation port. Implementations must be safe for
// concurrent use; a nil Metrics disables instrumentation.
type Metrics interface {
	AssessmentCompleted(escalated bool, relationship string)
	JudgeDegraded()
	DocumentScored(sections, pairs, escalations int, elapsed time.Duration)
}

// Config carries the engine's tunables.
type Config struct {
	PreliminaryWeights  PreliminaryWeights `mapstructure:"preliminary_weights"`
	FinalWeights        FinalWeights       `mapstructure:"final_weights"`
	EscalationThreshold float64            `mapstructure:"escalation_threshold"`
	MaxConcurrent       int                `mapstructure:"max_concurrent"`
	CacheTTL            time.Duration      `mapstructure:"cache_ttl"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		PreliminaryWeights:  DefaultPreliminaryWeights(),
		FinalWeights:        DefaultFinalWeights(),
		EscalationThreshold: DefaultEscalationThreshold,
		MaxConcurrent:       4,
		CacheTTL:            time.Hour,
	}
}

// Service is the relevance engine facade. All dependencies are injected;
// the judge, embedder, and cache are optional and their absence degrades the
// corresponding signal instead of failing the pipeline.
type Service struct {
	documents   document.Repository
	guidelines  guideline.Repository
	assessments domain.Repository
	embedder    embedding.TextEmbedder
	judge       *SemanticJudge
	cache       AssessmentCache
	metrics     Metrics
	cfg         Config
	logger      logging.Logger
}

// NewService wires the engine. documents, guidelines, and assessments may be
// nil for library-style use where the caller supplies sections and statements
// directly and handles persistence itself.
func NewService(
	documents document.Repository,
	guidelines guideline.Repository,
	assessments domain.Repository,
	embedder embedding.TextEmbedder,
	judge *SemanticJudge,
	cache AssessmentCache,
	metrics Metrics,
	cfg Config,
	log logging.Logger,
) *Service {
	if cfg.EscalationThreshold <= 0 {
		cfg.EscalationThreshold = DefaultEscalationThreshold
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	zero := PreliminaryWeights{}
	if cfg.PreliminaryWeights == zero {
		cfg.PreliminaryWeights = DefaultPreliminaryWeights()
	}
	if (cfg.FinalWeights == FinalWeights{}) {
		cfg.FinalWeights = DefaultFinalWeights()
	}
	return &Service{
		documents:   documents,
		guidelines:  guidelines,
		assessments: assessments,
		embedder:    embedder,
		judge:       judge,
		cache:       cache,
		metrics:     metrics,
		cfg:         cfg,
		logger:      log.Named("relevance"),
	}
}

// signals computes the three cheap metrics for a pair. Every failure path
// collapses to a zero signal; sparse data must not fail a batch run.
func (s *Service) signals(ctx context.Context, section *document.Section, statement *guideline.Statement, statementVec []float32) (vectorSim, termOverlap float64, shared []string, structural float64) {
	if len(section.Embedding) > 0 && len(statementVec) > 0 {
		vectorSim = embedding.CosineSimilarity(section.Embedding, statementVec)
	}
	termOverlap, shared = TermOverlap(section.Text, statement.ScoringText())
	structural = StructuralRelevance(section.Kind, statement.Kind)
	return vectorSim, termOverlap, shared, structural
}

// embedStatement fetches the statement's embedding, returning nil on any
// failure so vector similarity degrades to 0.0.
func (s *Service) embedStatement(ctx context.Context, statement *guideline.Statement) []float32 {
	if s.embedder == nil {
		return nil
	}
	vec, err := s.embedder.Embed(ctx, statement.ScoringText())
	if err != nil {
		s.logger.Debug("statement embedding unavailable, vector signal degraded",
			logging.String("statement", statement.URI),
			logging.Err(err),
		)
		return nil
	}
	return vec
}

// Assess scores one (section, statement) pair through the full pipeline,
// including the semantic judge. It never returns an error: degraded
// conditions are visible in the judgment's Degraded flag and the reasoning
// text, per the engine's "enrichment must not fail the pipeline" rule.
func (s *Service) Assess(ctx context.Context, section *document.Section, statement *guideline.Statement) *domain.Assessment {
	return s.assess(ctx, section, statement, s.embedStatement(ctx, statement))
}

func (s *Service) assess(ctx context.Context, section *document.Section, statement *guideline.Statement, statementVec []float32) *domain.Assessment {
	vectorSim, termOverlap, shared, structural := s.signals(ctx, section, statement, statementVec)
	preliminary := s.cfg.PreliminaryWeights.Preliminary(vectorSim, termOverlap, structural)

	var judgment *domain.Judgment
	if s.judge != nil {
		judgment = s.judge.Judge(ctx, section, statement)
	} else {
		judgment = degradedJudgment("semantic judge not configured")
	}
	if judgment.Degraded && s.metrics != nil {
		s.metrics.JudgeDegraded()
	}

	final, rel, agreement, calculation := s.cfg.FinalWeights.Finalize(vectorSim, termOverlap, structural, judgment, preliminary)

	if s.metrics != nil {
		s.metrics.AssessmentCompleted(true, string(rel))
	}

	return &domain.Assessment{
		ID:                  uuid.New(),
		SectionID:           section.ID,
		StatementURI:        statement.URI,
		VectorSimilarity:    vectorSim,
		TermOverlap:         termOverlap,
		SharedTerms:         shared,
		StructuralRelevance: structural,
		PreliminaryScore:    preliminary,
		Judgment:            judgment,
		AgreementScore:      agreement,
		FinalScore:          final,
		Relationship:        rel,
		Calculation:         calculation,
		CreatedAt:           time.Now().UTC(),
	}
}

// AssessAndEscalate computes the cheap signals and escalates to the judge
// only when the preliminary score exceeds threshold. A nil return means the
// pair was below threshold and no LLM call was made. Pass threshold <= 0 to
// use the configured default.
func (s *Service) AssessAndEscalate(ctx context.Context, section *document.Section, statement *guideline.Statement, threshold float64) *domain.Assessment {
	if threshold <= 0 {
		threshold = s.cfg.EscalationThreshold
	}
	statementVec := s.embedStatement(ctx, statement)
	vectorSim, termOverlap, _, structural := s.signals(ctx, section, statement, statementVec)
	preliminary := s.cfg.PreliminaryWeights.Preliminary(vectorSim, termOverlap, structural)
	if preliminary <= threshold {
		if s.metrics != nil {
			s.metrics.AssessmentCompleted(false, "")
		}
		return nil
	}
	return s.assess(ctx, section, statement, statementVec)
}

// DocumentResult summarises one scoring pass over a document.
type DocumentResult struct {
	DocumentID  uuid.UUID `json:"document_id"`
	Sections    int       `json:"sections"`
	Statements  int       `json:"statements"`
	Pairs       int       `json:"pairs"`
	Escalations int       `json:"escalations"`
	ElapsedMs   int64     `json:"elapsed_ms"`
}

// AssessDocument scores every section of the document against every
// candidate statement of the domain, persists the fresh assessments
// (replacing each section's previous set), and returns a summary. Sections
// are scored concurrently with at most MaxConcurrent in flight, which also
// caps concurrent judge calls; per-pair work never fails the run.
func (s *Service) AssessDocument(ctx context.Context, documentID uuid.UUID, domainID string) (*DocumentResult, error) {
	start := time.Now()

	sections, err := s.documents.GetSections(ctx, documentID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSectionNotFound, "failed to load document sections")
	}
	statements, err := s.guidelines.GetCandidateStatements(ctx, domainID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeOntologyQuery, "failed to load candidate statements")
	}
	if len(sections) == 0 || len(statements) == 0 {
		s.logger.Info("nothing to score",
			logging.String("document_id", documentID.String()),
			logging.Int("sections", len(sections)),
			logging.Int("statements", len(statements)),
		)
		return &DocumentResult{DocumentID: documentID, Sections: len(sections), Statements: len(statements)}, nil
	}

	// Statement embeddings are shared across sections; compute them once.
	statementVecs := make(map[string][]float32, len(statements))
	for _, st := range statements {
		statementVecs[st.URI] = s.embedStatement(ctx, st)
	}

	var (
		mu          sync.Mutex
		escalations int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	for _, section := range sections {
		section := section
		g.Go(func() error {
			kept := make([]*domain.Assessment, 0, len(statements))
			for _, st := range statements {
				a := s.assessPairBounded(gctx, section, st, statementVecs[st.URI])
				if a != nil {
					kept = append(kept, a)
				}
			}

			if s.assessments != nil {
				if err := s.assessments.ReplaceForSection(gctx, section.ID, kept); err != nil {
					// Persistence failures are real failures, unlike signal
					// degradation.
					return apperrors.Wrap(err, apperrors.CodeAssessmentPersist, "failed to persist section assessments")
				}
			}
			if s.cache != nil {
				key := assessmentCacheKey(section.ID)
				if err := s.cache.Set(gctx, key, kept, s.cfg.CacheTTL); err != nil {
					s.logger.Warn("assessment cache write failed", logging.Err(err))
				}
			}

			mu.Lock()
			escalations += len(kept)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.DocumentScored(len(sections), len(sections)*len(statements), escalations, elapsed)
	}
	s.logger.Info("document scored",
		logging.String("document_id", documentID.String()),
		logging.Int("sections", len(sections)),
		logging.Int("statements", len(statements)),
		logging.Int("escalations", escalations),
		logging.Duration("elapsed", elapsed),
	)

	return &DocumentResult{
		DocumentID:  documentID,
		Sections:    len(sections),
		Statements:  len(statements),
		Pairs:       len(sections) * len(statements),
		Escalations: escalations,
		ElapsedMs:   elapsed.Milliseconds(),
	}, nil
}

// assessPairBounded is AssessAndEscalate with a pre-computed statement
// vector, used inside the document loop.
func (s *Service) assessPairBounded(ctx context.Context, section *document.Section, statement *guideline.Statement, statementVec []float32) *domain.Assessment {
	vectorSim, termOverlap, _, structural := s.signals(ctx, section, statement, statementVec)
	preliminary := s.cfg.PreliminaryWeights.Preliminary(vectorSim, termOverlap, structural)
	if preliminary <= s.cfg.EscalationThreshold {
		if s.metrics != nil {
			s.metrics.AssessmentCompleted(false, "")
		}
		return nil
	}
	return s.assess(ctx, section, statement, statementVec)
}

// SectionAssessments returns a section's current assessments, via the cache
// when one is configured.
func (s *Service) SectionAssessments(ctx context.Context, sectionID uuid.UUID) ([]*domain.Assessment, error) {
	if s.cache != nil {
		var cached []*domain.Assessment
		if err := s.cache.Get(ctx, assessmentCacheKey(sectionID), &cached); err == nil {
			return cached, nil
		}
	}
	if s.assessments == nil {
		return nil, apperrors.New(apperrors.CodeNotImplemented, "assessment store not configured")
	}
	out, err := s.assessments.ListForSection(ctx, sectionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabase, "failed to list section assessments")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, assessmentCacheKey(sectionID), out, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("assessment cache write failed", logging.Err(err))
		}
	}
	return out, nil
}

func assessmentCacheKey(sectionID uuid.UUID) string {
	return fmt.Sprintf("assessments:section:%s", sectionID)
}
