package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cr625/proethica-sub007/internal/application/citation"
	"github.com/cr625/proethica-sub007/internal/domain/provision"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
)

func citationRouter(validator *citation.Validator) *gin.Engine {
	log := logging.NewNopLogger()
	h := NewCitationHandler(citation.NewPatternMatcher(log), validator)
	r := gin.New()
	r.POST("/citations/find", h.FindCitations)
	r.POST("/citations/validate", h.ValidateCitations)
	r.POST("/citations/extract", h.ExtractCitations)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFindCitations(t *testing.T) {
	t.Parallel()

	r := citationRouter(citation.NewValidator(nil, logging.NewNopLogger()))
	w := postJSON(t, r, "/citations/find", gin.H{
		"sections": map[string]string{
			"discussion": "The engineer's duty under II.1.e required disclosure to the client.",
		},
		"provision": gin.H{"id": "II.1.e"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ProvisionID string                      `json:"provision_id"`
		Candidates  []*provision.CandidateMatch `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "II.1.e", body.ProvisionID)
	require.Len(t, body.Candidates, 1)
	assert.Equal(t, provision.MatchExact, body.Candidates[0].MatchType)
}

func TestFindCitations_NoMentions(t *testing.T) {
	t.Parallel()

	r := citationRouter(citation.NewValidator(nil, logging.NewNopLogger()))
	w := postJSON(t, r, "/citations/find", gin.H{
		"sections":  map[string]string{"facts": "No provisions are cited here."},
		"provision": gin.H{"id": "II.1.e"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Candidates []*provision.CandidateMatch `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Candidates, "response must carry an empty list, not null")
	assert.Contains(t, w.Body.String(), `"candidates":[]`)
}

func TestFindCitations_MalformedBody(t *testing.T) {
	t.Parallel()

	r := citationRouter(citation.NewValidator(nil, logging.NewNopLogger()))
	req := httptest.NewRequest(http.MethodPost, "/citations/find", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_002")
}

func TestExtractCitations_DegradedValidator(t *testing.T) {
	t.Parallel()

	// No completer: every candidate falls back to unvalidated with the
	// discounted pattern confidence, which still clears the default filter.
	r := citationRouter(citation.NewValidator(nil, logging.NewNopLogger()))
	w := postJSON(t, r, "/citations/extract", gin.H{
		"sections": map[string]string{
			"conclusion": "The Board found a violation of II.1.e in this case.",
		},
		"provision": gin.H{"id": "II.1.e", "text": "Engineers shall not reveal confidential facts."},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Candidates int                           `json:"candidates"`
		Results    []*provision.ValidationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Candidates)
	require.Len(t, body.Results, 1)
	assert.Equal(t, provision.QualityUnvalidated, body.Results[0].MatchQuality)
	assert.InDelta(t, 0.95*0.8, body.Results[0].Confidence, 1e-9)
}

func TestValidateCitations_ThresholdFilters(t *testing.T) {
	t.Parallel()

	r := citationRouter(citation.NewValidator(nil, logging.NewNopLogger()))
	w := postJSON(t, r, "/citations/validate", gin.H{
		"candidates": []gin.H{{
			"section":      "discussion",
			"excerpt":      "as II.1.e requires",
			"matched_text": "II.1.e",
			"match_type":   "exact",
			"confidence":   0.95,
			"position":     3,
		}},
		"provision":            gin.H{"id": "II.1.e"},
		"confidence_threshold": 0.9,
	})

	require.Equal(t, http.StatusOK, w.Code)
	// Fallback confidence 0.76 does not clear the 0.9 filter.
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestValidateCitations_UnparseableProvisionStillValidates(t *testing.T) {
	t.Parallel()

	// The validator takes the provision at face value; only the matcher
	// parses identifiers. An odd id must not 500.
	r := citationRouter(citation.NewValidator(nil, logging.NewNopLogger()))
	w := postJSON(t, r, "/citations/validate", gin.H{
		"candidates": []gin.H{},
		"provision":  gin.H{"id": "whatever"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
