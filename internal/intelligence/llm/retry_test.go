package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

type stubCompleter struct {
	completeFn func(ctx context.Context, prompt string) (string, error)
	calls      int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.completeFn(ctx, prompt)
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
		CallTimeout:    time.Second,
	}
}

func TestWithRetry_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()

	inner := &stubCompleter{completeFn: func(context.Context, string) (string, error) {
		return "ok", nil
	}}
	c := WithRetry(inner, fastRetryConfig(), logging.NewNopLogger())

	out, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, inner.calls)
}

func TestWithRetry_RecoversAfterTransientFailures(t *testing.T) {
	t.Parallel()

	inner := &stubCompleter{}
	inner.completeFn = func(context.Context, string) (string, error) {
		if inner.calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}
	c := WithRetry(inner, fastRetryConfig(), logging.NewNopLogger())

	out, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, inner.calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	inner := &stubCompleter{completeFn: func(context.Context, string) (string, error) {
		return "", errors.New("still down")
	}}
	c := WithRetry(inner, fastRetryConfig(), logging.NewNopLogger())

	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeJudgeUnavailable))
}

func TestWithRetry_MalformedReplyIsNotRetried(t *testing.T) {
	t.Parallel()

	inner := &stubCompleter{completeFn: func(context.Context, string) (string, error) {
		return "", apperrors.New(apperrors.CodeJudgeMalformed, "reply was not JSON")
	}}
	c := WithRetry(inner, fastRetryConfig(), logging.NewNopLogger())

	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "a malformed reply means the model answered; retrying wastes quota")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeJudgeMalformed))
}

func TestWithRetry_CancelledContextAbortsLoop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	inner := &stubCompleter{completeFn: func(context.Context, string) (string, error) {
		cancel()
		return "", errors.New("interrupted")
	}}
	c := WithRetry(inner, fastRetryConfig(), logging.NewNopLogger())

	_, err := c.Complete(ctx, "prompt")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTimeout))
}

func TestWithRetry_AppliesPerCallTimeout(t *testing.T) {
	t.Parallel()

	cfg := fastRetryConfig()
	cfg.MaxAttempts = 1
	cfg.CallTimeout = 10 * time.Millisecond

	inner := &stubCompleter{completeFn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	c := WithRetry(inner, cfg, logging.NewNopLogger())

	start := time.Now()
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "the per-call timeout must bound a hung call")
}

func TestWithRetry_ZeroConfigGetsDefaults(t *testing.T) {
	t.Parallel()

	inner := &stubCompleter{completeFn: func(context.Context, string) (string, error) {
		return "ok", nil
	}}
	c := WithRetry(inner, RetryConfig{}, logging.NewNopLogger())

	out, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
