package events

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"

	"vehicle-rental-backend/internal/logger"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads a topic as part of a consumer group and commits a
// message only after its handler succeeded.
type KafkaConsumer struct {
	r       messageReader
	workers int
}

func NewKafkaConsumer(brokers []string, groupID, topic string, workers int) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return newKafkaConsumer(r, workers)
}

func newKafkaConsumer(r messageReader, workers int) *KafkaConsumer {
	if workers <= 0 {
		workers = 1
	}
	return &KafkaConsumer{r: r, workers: workers}
}

// Run blocks until ctx is cancelled or the reader fails.
func (c *KafkaConsumer) Run(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				c.process(ctx, h, m)
			}
		}()
	}

	err := c.fetch(ctx, jobs)
	close(jobs)
	wg.Wait()
	return err
}

func (c *KafkaConsumer) fetch(ctx context.Context, jobs chan<- kafka.Message) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *KafkaConsumer) process(ctx context.Context, h Handler, m kafka.Message) {
	env, err := DecodeEnvelope(m.Value)
	if err != nil {
		// undecodable messages are skipped so they cannot block the partition
		logger.Error("Dropping malformed event", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		c.commit(ctx, m)
		return
	}
	if err := h(ctx, env); err != nil {
		logger.Error("Event handler failed", "event_type", env.EventType, "event_id", env.EventID, "offset", m.Offset, "error", err)
		return
	}
	c.commit(ctx, m)
}

func (c *KafkaConsumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		logger.Error("Failed to commit event", "partition", m.Partition, "offset", m.Offset, "error", err)
	}
}
