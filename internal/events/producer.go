package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"sync"
	"time"
)

var (
	ErrProducerFull   = errors.New("event producer buffer is full")
	ErrProducerClosed = errors.New("event producer is closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events to Kafka from a background goroutine.
// Publishing only enqueues; delivery failures are logged.
type Producer struct {
	w        messageWriter
	service  string
	logger   zerolog.Logger
	inbox    chan kafka.Message
	closeCh  chan struct{}
	now      func() time.Time
	writeTTL time.Duration

	// guards sends on inbox against Close
	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic, service string, buf int, logger zerolog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newProducer(w, service, buf, logger)
}

func newProducer(w messageWriter, service string, buf int, logger zerolog.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:        w,
		service:  service,
		logger:   logger.With().Str("component", "events").Logger(),
		inbox:    make(chan kafka.Message, buf),
		closeCh:  make(chan struct{}),
		now:      time.Now,
		writeTTL: 10 * time.Second,
	}
}

// Start runs the delivery loop until Close is called.
func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)

		for m := range p.inbox {
			p.write(m)
		}

		if err := p.w.Close(); err != nil {
			p.logger.Error().Err(err).Msg("close kafka writer")
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTTL)
	defer cancel()

	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("write event")
	}
}

func (p *Producer) PublishOrderEvent(ctx context.Context, eventType string, order domain.Order) error {
	env, err := NewEnvelope(p.service, eventType, order, p.now())
	if err != nil {
		return fmt.Errorf("NewEnvelope: %w", err)
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	m := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrProducerFull
	}
}

// Close flushes buffered events and waits for the writer to shut down.
// Later PublishOrderEvent calls fail with ErrProducerClosed.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	<-p.closeCh
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishOrderEvent(context.Context, string, domain.Order) error {
	return nil
}
