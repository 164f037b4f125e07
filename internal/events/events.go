// Package events publishes order lifecycle events. Publishing is best effort:
// a publisher never fails the request that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"

	producerName = "storefront-api"
)

type Envelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"priceAtOrderTime"`
}

type OrderPlacedPayload struct {
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	Items       []OrderLine `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// NewEnvelope wraps payload; correlationID is normally the order id.
func NewEnvelope(eventType, correlationID string, payload interface{}, at time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// DecodePayload unmarshals the payload of e into T.
func DecodePayload[T any](e Envelope) (T, error) {
	var out T
	if err := json.Unmarshal(e.Payload, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Envelope)
}

type Nop struct{}

func (Nop) Publish(context.Context, Envelope) {}

// Multi fans an event out to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Envelope) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}
