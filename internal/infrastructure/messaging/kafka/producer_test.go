package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []segkafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestPublishAssessJob(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	p := &JobPublisher{writer: fw, topic: DefaultAssessTopic, logger: logging.NewNopLogger()}

	documentID := uuid.New()
	jobID, err := p.PublishAssessJob(context.Background(), documentID, "engineering-ethics")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, jobID)

	require.Len(t, fw.messages, 1)
	msg := fw.messages[0]
	assert.Equal(t, documentID.String(), string(msg.Key), "messages must be keyed by document id")

	var job AssessDocumentJob
	require.NoError(t, json.Unmarshal(msg.Value, &job))
	assert.Equal(t, jobID, job.JobID)
	assert.Equal(t, documentID, job.DocumentID)
	assert.Equal(t, "engineering-ethics", job.DomainID)
	assert.WithinDuration(t, time.Now().UTC(), job.EnqueuedAt, time.Minute)
}

func TestPublishAssessJob_WriteFailure(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{err: errors.New("broker unreachable")}
	p := &JobPublisher{writer: fw, topic: DefaultAssessTopic, logger: logging.NewNopLogger()}

	jobID, err := p.PublishAssessJob(context.Background(), uuid.New(), "engineering-ethics")
	require.Error(t, err)
	assert.Equal(t, uuid.Nil, jobID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeServiceUnavailable))
}

func TestPublisherClose(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	p := &JobPublisher{writer: fw, topic: DefaultAssessTopic, logger: logging.NewNopLogger()}
	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}
