package kafka

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	segkafka "github.com/segmentio/kafka-go"

	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// writer abstracts segkafka.Writer for testing.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...segkafka.Message) error
	Close() error
}

// JobPublisher enqueues assessment jobs. The API server holds one publisher
// for its lifetime.
type JobPublisher struct {
	writer writer
	topic  string
	logger logging.Logger
}

// NewJobPublisher builds a publisher for the configured assessment topic.
// Messages are keyed by document ID so re-runs of the same document land on
// the same partition in order.
func NewJobPublisher(cfg config.KafkaConfig, log logging.Logger) *JobPublisher {
	topic := cfg.AssessTopic
	if topic == "" {
		topic = DefaultAssessTopic
	}
	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}
	return &JobPublisher{
		writer: &segkafka.Writer{
			Addr:         segkafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &segkafka.Hash{},
			MaxAttempts:  retries,
			RequiredAcks: segkafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic:  topic,
		logger: log.Named("kafka.publisher"),
	}
}

// PublishAssessJob enqueues one document-assessment job and returns its ID.
func (p *JobPublisher) PublishAssessJob(ctx context.Context, documentID uuid.UUID, domainID string) (uuid.UUID, error) {
	job := AssessDocumentJob{
		JobID:      uuid.New(),
		DocumentID: documentID,
		DomainID:   domainID,
		EnqueuedAt: time.Now().UTC(),
	}
	value, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, apperrors.CodeSerialization, "failed to encode assessment job")
	}

	if err := p.writer.WriteMessages(ctx, segkafka.Message{
		Key:   []byte(documentID.String()),
		Value: value,
	}); err != nil {
		return uuid.Nil, apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "failed to enqueue assessment job")
	}

	p.logger.Info("assessment job enqueued",
		logging.String("job_id", job.JobID.String()),
		logging.String("document_id", documentID.String()),
		logging.String("domain_id", domainID),
	)
	return job.JobID, nil
}

// Close flushes and closes the underlying writer.
func (p *JobPublisher) Close() error {
	return p.writer.Close()
}
