package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cr625/proethica-sub007/internal/application/relevance"
	"github.com/cr625/proethica-sub007/internal/domain/document"
	"github.com/cr625/proethica-sub007/internal/domain/guideline"
	domainrel "github.com/cr625/proethica-sub007/internal/domain/relevance"
)

// JobEnqueuer publishes document-assessment jobs to the work queue.
type JobEnqueuer interface {
	PublishAssessJob(ctx context.Context, documentID uuid.UUID, domainID string) (uuid.UUID, error)
}

// RelevanceHandler serves the scoring endpoints.
type RelevanceHandler struct {
	service  *relevance.Service
	enqueuer JobEnqueuer
}

// NewRelevanceHandler builds the handler. enqueuer may be nil; document
// assessment then runs synchronously in the request instead of on a worker.
func NewRelevanceHandler(service *relevance.Service, enqueuer JobEnqueuer) *RelevanceHandler {
	return &RelevanceHandler{service: service, enqueuer: enqueuer}
}

// assessPairRequest carries an ad-hoc section/statement pair supplied inline
// by the caller, for interactive scoring without persisted entities.
type assessPairRequest struct {
	Section struct {
		ID    string `json:"id"`
		Kind  string `json:"kind" binding:"required"`
		Title string `json:"title"`
		Text  string `json:"text" binding:"required"`
	} `json:"section" binding:"required"`
	Statement struct {
		URI         string `json:"uri" binding:"required"`
		Label       string `json:"label" binding:"required"`
		Description string `json:"description"`
		Kind        string `json:"kind"`
	} `json:"statement" binding:"required"`
	// EscalationThreshold > 0 switches on escalation gating: the judge is
	// consulted only when the preliminary score exceeds it.
	EscalationThreshold float64 `json:"escalation_threshold"`
}

// AssessPair scores one section/statement pair through the full pipeline.
// POST /api/v1/relevance/assess
func (h *RelevanceHandler) AssessPair(c *gin.Context) {
	var req assessPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	sectionID := uuid.Nil
	if req.Section.ID != "" {
		parsed, err := uuid.Parse(req.Section.ID)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		sectionID = parsed
	}

	section := &document.Section{
		ID:    sectionID,
		Kind:  document.SectionKind(req.Section.Kind),
		Title: req.Section.Title,
		Text:  req.Section.Text,
	}
	statement := &guideline.Statement{
		URI:         req.Statement.URI,
		Label:       req.Statement.Label,
		Description: req.Statement.Description,
		Kind:        guideline.StatementKind(req.Statement.Kind),
	}

	if req.EscalationThreshold > 0 {
		a := h.service.AssessAndEscalate(c.Request.Context(), section, statement, req.EscalationThreshold)
		if a == nil {
			c.JSON(http.StatusOK, gin.H{"escalated": false, "assessment": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"escalated": true, "assessment": a})
		return
	}

	c.JSON(http.StatusOK, gin.H{"escalated": true, "assessment": h.service.Assess(c.Request.Context(), section, statement)})
}

// assessDocumentRequest names the guideline domain a document is scored
// against.
type assessDocumentRequest struct {
	DomainID string `json:"domain_id" binding:"required"`
}

// AssessDocument scores a persisted document against a guideline domain.
// With a queue configured the job is enqueued and 202 returned; otherwise the
// run happens synchronously and returns its summary.
// POST /api/v1/documents/:id/assess
func (h *RelevanceHandler) AssessDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	var req assessDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if h.enqueuer != nil {
		jobID, err := h.enqueuer.PublishAssessJob(c.Request.Context(), documentID, req.DomainID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"job_id":      jobID,
			"document_id": documentID,
			"domain_id":   req.DomainID,
		})
		return
	}

	result, err := h.service.AssessDocument(c.Request.Context(), documentID, req.DomainID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SectionAssessments returns a section's current assessments, best first.
// GET /api/v1/sections/:id/assessments
func (h *RelevanceHandler) SectionAssessments(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	assessments, err := h.service.SectionAssessments(c.Request.Context(), sectionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if assessments == nil {
		assessments = []*domainrel.Assessment{}
	}
	c.JSON(http.StatusOK, gin.H{"section_id": sectionID, "assessments": assessments})
}
