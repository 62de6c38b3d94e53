// Package kafka carries document-assessment jobs between the API server and
// the scoring workers. The queue holds job envelopes only; all document and
// statement data is fetched by the worker at processing time, so a replayed
// job always scores against the current ontology.
package kafka

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAssessTopic is the topic assessment jobs are published to.
const DefaultAssessTopic = "proethica.assess.document"

// AssessDocumentJob asks a worker to score one document against a guideline
// domain. Jobs are idempotent: re-running one replaces the document's
// assessments with a fresh set.
type AssessDocumentJob struct {
	JobID      uuid.UUID `json:"job_id"`
	DocumentID uuid.UUID `json:"document_id"`
	DomainID   string    `json:"domain_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
