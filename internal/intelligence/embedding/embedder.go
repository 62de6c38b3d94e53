// Package embedding provides the vector-similarity capability consumed by the
// relevance combiner. Embedding generation itself is an external service; the
// engine only needs "text in, fixed-length vector out" plus a similarity
// measure over two vectors.
package embedding

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TextEmbedder is the embedding contract. Implementations must return vectors
// of a fixed dimension; mixed dimensions score as zero similarity downstream.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// CosineSimilarity returns the cosine of the angle between a and b, clamped
// to [0,1]. Sentence embeddings of natural-language text rarely point in
// opposite directions, and the scoring formula treats similarity as a
// non-negative signal, so negative cosines collapse to 0. Vectors of
// different or zero length also score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0.0
	}
	if cos > 1 {
		return 1.0
	}
	return cos
}

// Config holds the embedding service connection settings.
type Config struct {
	Endpoint  string        `mapstructure:"endpoint"`
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// HTTPEmbedder calls a sentence-embedding HTTP service. The wire contract is
// a single POST: {"text": "..."} in, {"embedding": [...]} out.
type HTTPEmbedder struct {
	endpoint  string
	dimension int
	client    *http.Client
	logger    logging.Logger
}

// NewHTTPEmbedder builds an embedder for the given service endpoint.
func NewHTTPEmbedder(cfg Config, log logging.Logger) *HTTPEmbedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = 384
	}
	return &HTTPEmbedder{
		endpoint:  cfg.Endpoint,
		dimension: dim,
		client:    &http.Client{Timeout: timeout},
		logger:    log.Named("embedding"),
	}
}

// Dimension returns the configured embedding dimension.
func (e *HTTPEmbedder) Dimension() int { return e.dimension }

// Embed requests a vector for text. A wrong-dimension reply is rejected so a
// misconfigured service cannot silently poison downstream similarity scores.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.endpoint == "" {
		return nil, apperrors.New(apperrors.CodeEmbeddingMissing, "embedding endpoint is not configured")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingMissing, "embedding service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeEmbeddingMissing,
			fmt.Sprintf("embedding service returned status %d", resp.StatusCode))
	}

	var payload struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "failed to decode embedding response")
	}
	if len(payload.Embedding) != e.dimension {
		return nil, apperrors.New(apperrors.CodeEmbeddingMissing,
			fmt.Sprintf("embedding dimension mismatch: got %d, want %d", len(payload.Embedding), e.dimension))
	}
	return payload.Embedding, nil
}
