package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cr625/proethica-sub007/internal/application/citation"
	"github.com/cr625/proethica-sub007/internal/domain/provision"
)

// CitationHandler serves the citation pipeline endpoints.
type CitationHandler struct {
	matcher   *citation.PatternMatcher
	validator *citation.Validator
}

// NewCitationHandler builds the handler over both pipeline stages.
func NewCitationHandler(matcher *citation.PatternMatcher, validator *citation.Validator) *CitationHandler {
	return &CitationHandler{matcher: matcher, validator: validator}
}

type provisionPayload struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text"`
}

type findCitationsRequest struct {
	Sections  map[string]string `json:"sections" binding:"required"`
	Provision provisionPayload  `json:"provision" binding:"required"`
}

// FindCitations runs the pattern stage only and returns the raw candidates.
// POST /api/v1/citations/find
func (h *CitationHandler) FindCitations(c *gin.Context) {
	var req findCitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	candidates := h.matcher.FindAllMentions(req.Sections, req.Provision.ID, req.Provision.Text)
	if candidates == nil {
		candidates = []*provision.CandidateMatch{}
	}
	c.JSON(http.StatusOK, gin.H{
		"provision_id": req.Provision.ID,
		"candidates":   candidates,
	})
}

type validateCitationsRequest struct {
	Candidates []*provision.CandidateMatch `json:"candidates" binding:"required"`
	Provision  provisionPayload            `json:"provision" binding:"required"`
	// ConfidenceThreshold > 0 filters the results; <= 0 returns everything.
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// ValidateCitations runs the validation stage over caller-supplied
// candidates.
// POST /api/v1/citations/validate
func (h *CitationHandler) ValidateCitations(c *gin.Context) {
	var req validateCitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	results := h.validator.ValidateBatch(c.Request.Context(), req.Candidates, provision.Provision{
		ID:   req.Provision.ID,
		Text: req.Provision.Text,
	})
	if req.ConfidenceThreshold > 0 {
		results = citation.FilterValidated(results, req.ConfidenceThreshold)
	}
	if results == nil {
		results = []*provision.ValidationResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"provision_id": req.Provision.ID,
		"results":      results,
	})
}

type extractCitationsRequest struct {
	Sections            map[string]string `json:"sections" binding:"required"`
	Provision           provisionPayload  `json:"provision" binding:"required"`
	ConfidenceThreshold float64           `json:"confidence_threshold"`
}

// ExtractCitations runs both stages: pattern scan, semantic validation, then
// the confidence filter (default threshold when none given).
// POST /api/v1/citations/extract
func (h *CitationHandler) ExtractCitations(c *gin.Context) {
	var req extractCitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	prov := provision.Provision{ID: req.Provision.ID, Text: req.Provision.Text}
	candidates := h.matcher.FindAllMentions(req.Sections, prov.ID, prov.Text)
	results := citation.FilterValidated(
		h.validator.ValidateBatch(c.Request.Context(), candidates, prov),
		req.ConfidenceThreshold,
	)
	if results == nil {
		results = []*provision.ValidationResult{}
	}
	c.JSON(http.StatusOK, gin.H{
		"provision_id": prov.ID,
		"candidates":   len(candidates),
		"results":      results,
	})
}
