package kafka

import (
	"context"
	"sync"
	"time"

	segkafka "github.com/segmentio/kafka-go"

	"github.com/cr625/proethica-sub007/internal/config"
	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
)

// JobHandler processes one decoded assessment job. A returned error marks the
// job failed; the consumer logs it and moves on rather than blocking the
// partition, since jobs are idempotent and can be re-enqueued.
type JobHandler func(ctx context.Context, job AssessDocumentJob) error

// reader abstracts segkafka.Reader for testing.
type reader interface {
	FetchMessage(ctx context.Context) (segkafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...segkafka.Message) error
	Close() error
}

// JobConsumer pulls assessment jobs off the queue and hands them to a
// handler. Offsets are committed only after the handler returns, so a worker
// crash mid-job re-delivers the job to another group member.
type JobConsumer struct {
	reader  reader
	handler JobHandler
	logger  logging.Logger

	running bool
	cancel  context.CancelFunc
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewJobConsumer builds a consumer in the configured group.
func NewJobConsumer(cfg config.KafkaConfig, handler JobHandler, log logging.Logger) *JobConsumer {
	topic := cfg.AssessTopic
	if topic == "" {
		topic = DefaultAssessTopic
	}
	rc := segkafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       topic,
		StartOffset: segkafka.FirstOffset,
	}
	if cfg.MinBytes > 0 {
		rc.MinBytes = cfg.MinBytes
	}
	if cfg.MaxBytes > 0 {
		rc.MaxBytes = cfg.MaxBytes
	}
	if cfg.CommitInterval > 0 {
		rc.CommitInterval = cfg.CommitInterval
	}
	return &JobConsumer{
		reader:  segkafka.NewReader(rc),
		handler: handler,
		logger:  log.Named("kafka.consumer"),
	}
}

// Start launches the consume loop in a background goroutine. It returns
// immediately; use Close to stop.
func (c *JobConsumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("assessment job consumer started")
}

func (c *JobConsumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		var job AssessDocumentJob
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			// A poison message must not wedge the partition.
			c.logger.Error("undecodable job, skipping",
				logging.Int64("offset", msg.Offset),
				logging.Err(err),
			)
			c.commit(ctx, msg)
			continue
		}

		start := time.Now()
		if err := c.handler(ctx, job); err != nil {
			c.logger.Error("assessment job failed",
				logging.String("job_id", job.JobID.String()),
				logging.String("document_id", job.DocumentID.String()),
				logging.Err(err),
			)
		} else {
			c.logger.Info("assessment job completed",
				logging.String("job_id", job.JobID.String()),
				logging.Duration("elapsed", time.Since(start)),
			)
		}
		c.commit(ctx, msg)
	}
}

func (c *JobConsumer) commit(ctx context.Context, msg segkafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		c.logger.Error("offset commit failed", logging.Err(err))
	}
}

// Close stops the consume loop and releases the reader.
func (c *JobConsumer) Close() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("assessment job consumer closed")
	return err
}
