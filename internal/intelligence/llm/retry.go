package llm

import (
	"context"
	"time"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

// RetryConfig bounds the retry loop around a Completer. The model call is the
// engine's only I/O-bound, failure-prone step, so it gets a per-call timeout
// and exponential backoff; nothing else in the pipeline retries.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Multiplier     float64       `mapstructure:"multiplier"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
}

// DefaultRetryConfig returns the production retry settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     15 * time.Second,
		Multiplier:     2.0,
		CallTimeout:    30 * time.Second,
	}
}

type retryingCompleter struct {
	inner  Completer
	cfg    RetryConfig
	logger logging.Logger
}

// WithRetry wraps a Completer with bounded retry and a per-call timeout.
// Context cancellation aborts the loop immediately; malformed-reply errors
// are returned without retrying since the model answered, just badly.
func WithRetry(inner Completer, cfg RetryConfig, log logging.Logger) Completer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2.0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	return &retryingCompleter{inner: inner, cfg: cfg, logger: log.Named("llm.retry")}
}

func (r *retryingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	backoff := r.cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if r.cfg.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
		}
		out, err := r.inner.Complete(callCtx, prompt)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return out, nil
		}
		lastErr = err

		if apperrors.IsCode(err, apperrors.CodeJudgeMalformed) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout, "completion aborted by caller")
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		r.logger.Warn("completion attempt failed, backing off",
			logging.Int("attempt", attempt),
			logging.Duration("backoff", backoff),
			logging.Err(err),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout, "completion aborted during backoff")
		}
		backoff = time.Duration(float64(backoff) * r.cfg.Multiplier)
		if r.cfg.MaxBackoff > 0 && backoff > r.cfg.MaxBackoff {
			backoff = r.cfg.MaxBackoff
		}
	}
	return "", apperrors.Wrap(lastErr, apperrors.CodeJudgeUnavailable, "completion failed after retries")
}
