package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka queues envelopes in a buffered inbox and writes them from a single
// goroutine, keyed by correlation id so one order's events stay ordered.
// When the inbox is full the event is dropped and counted.
type Kafka struct {
	w       messageWriter
	inbox   chan kafka.Message
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
	started bool
	dropped atomic.Int64
}

func NewKafka(brokers []string, topic string, buf int) *Kafka {
	return newKafka(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func newKafka(w messageWriter, buf int) *Kafka {
	if buf < 1 {
		buf = 1
	}
	return &Kafka{
		w:     w,
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start runs the writer loop until Close is called.
func (k *Kafka) Start() {
	k.mu.Lock()
	if k.started || k.closed {
		k.mu.Unlock()
		return
	}
	k.started = true
	k.mu.Unlock()

	go func() {
		defer close(k.done)
		for m := range k.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := k.w.WriteMessages(ctx, m); err != nil {
				log.Printf("[EVENTS] [ERROR] kafka write key=%s: %v", m.Key, err)
			}
			cancel()
		}
		if err := k.w.Close(); err != nil {
			log.Printf("[EVENTS] [ERROR] kafka writer close: %v", err)
		}
	}()
}

func (k *Kafka) Publish(_ context.Context, e Envelope) {
	value, err := json.Marshal(e)
	if err != nil {
		log.Printf("[EVENTS] [ERROR] encode %s: %v", e.EventType, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(e.CorrelationID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(e.EventType)},
		},
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		k.dropped.Add(1)
		return
	}
	select {
	case k.inbox <- msg:
	default:
		k.dropped.Add(1)
		log.Printf("[EVENTS] [WARN] kafka inbox full, dropping %s %s", e.EventType, e.EventID)
	}
}

func (k *Kafka) Dropped() int64 {
	return k.dropped.Load()
}

// Close stops accepting events, flushes the inbox and closes the writer.
func (k *Kafka) Close() {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return
	}
	k.closed = true
	close(k.inbox)
	started := k.started
	k.mu.Unlock()

	if started {
		<-k.done
		return
	}
	if err := k.w.Close(); err != nil {
		log.Printf("[EVENTS] [ERROR] kafka writer close: %v", err)
	}
}
