// Package llm provides the text-completion capability the semantic judge and
// citation validator consume. The engine treats the model as an external
// service: given a prompt, return text. Everything else (prompt construction,
// reply parsing, degradation) lives with the callers.
package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// Completer is the minimal completion contract. Implementations must be safe
// for concurrent use; callers cap in-flight calls themselves.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds the model client settings.
type Config struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
}

// GeminiCompleter is a Completer backed by the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger logging.Logger
}

// NewGeminiCompleter dials the Gemini API and configures the generative
// model. Close must be called on shutdown.
func NewGeminiCompleter(ctx context.Context, cfg Config, log logging.Logger) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.CodeJudgeUnavailable, "gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeJudgeUnavailable, "failed to create gemini client")
	}

	name := cfg.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(cfg.Temperature)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxTokens)
	}

	return &GeminiCompleter{client: client, model: model, logger: log.Named("llm")}, nil
}

// Complete sends the prompt and concatenates the text parts of the first
// candidate.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeJudgeUnavailable, "gemini completion failed")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperrors.New(apperrors.CodeJudgeMalformed, "gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := sb.String()
	if out == "" {
		return "", apperrors.New(apperrors.CodeJudgeMalformed, "gemini candidate contained no text parts")
	}
	return out, nil
}

// Close releases the underlying client connection.
func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}
