package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/segmentio/kafka-go"

	"vehicle-rental-backend/internal/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes envelopes to one topic. Publish only enqueues;
// a background loop writes to the brokers.
type KafkaProducer struct {
	w     messageWriter
	inbox chan kafka.Message
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewKafkaProducer(brokers []string, topic string, buffer int) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Error("Kafka write failed", "topic", topic, "messages", len(msgs), "error", err)
			}
		},
	}
	return newKafkaProducer(w, buffer)
}

func newKafkaProducer(w messageWriter, buffer int) *KafkaProducer {
	if buffer <= 0 {
		buffer = 1
	}
	p := &KafkaProducer{
		w:     w,
		inbox: make(chan kafka.Message, buffer),
		done:  make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *KafkaProducer) loop() {
	defer close(p.done)
	for m := range p.inbox {
		if err := p.w.WriteMessages(context.Background(), m); err != nil {
			logger.Error("Failed to write event", "key", string(m.Key), "error", err)
		}
	}
	if err := p.w.Close(); err != nil {
		logger.Error("Failed to close kafka writer", "error", err)
	}
}

func (p *KafkaProducer) Publish(_ context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close flushes queued messages and closes the writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
	return nil
}
