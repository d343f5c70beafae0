package carts

import (
	"context"
	"encoding/json"
	"github.com/ariefcatur/go-bookstore-carts/internal/checkout"
	"github.com/google/uuid"
	"time"
)

const (
	EventCartCreated       = "CartCreated"
	EventCheckoutCompleted = "CheckoutCompleted"
	EventCheckoutFailed    = "CheckoutFailed"
)

const (
	TopicCartCreated       = "cart.created"
	TopicCheckoutCompleted = "cart.checkout.completed"
	TopicCheckoutFailed    = "cart.checkout.failed"
)

// Partition key = cart_id, supaya semua event 1 cart tetap urut.
func PartitionKey(cartID string) []byte { return []byte(cartID) }

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "cart-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // cart_id
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope membungkus payload ke envelope v1.
func NewEnvelope(eventType, producer, cartID string, payload any, at time.Time) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      producer,
		CorrelationID: cartID,
		Payload:       b,
	}, nil
}

// ---- Payload tipe per event ----

type ItemQty struct {
	ISBN      string `json:"isbn"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unit_price"` // harga saat checkout, decimal string
}

type CartCreatedPayload struct {
	CartID string `json:"cart_id"`
	Owner  string `json:"owner"`
}

type CheckoutCompletedPayload struct {
	CartID     string    `json:"cart_id"`
	Owner      string    `json:"owner"`
	Items      []ItemQty `json:"items"`
	Total      string    `json:"total"` // decimal string, contoh "73.16"
	PaymentRef string    `json:"payment_ref"`
}

type CheckoutFailedPayload struct {
	CartID string `json:"cart_id"`
	Reason string `json:"reason"` // pesan wire, e.g. "Insufficient funds"
}

// Publisher sends an event envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, ev Envelope) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, []byte, Envelope) error { return nil }

// groupItems mengelompokkan item per isbn (urutan kemunculan pertama)
// dan menempelkan harga satuan dari price table.
func groupItems(items []string, prices checkout.PriceTable) []ItemQty {
	idx := map[string]int{}
	var out []ItemQty
	for _, id := range items {
		if i, ok := idx[id]; ok {
			out[i].Qty++
			continue
		}
		price, _ := prices.PriceOf(id)
		idx[id] = len(out)
		out = append(out, ItemQty{ISBN: id, Qty: 1, UnitPrice: price.String()})
	}
	return out
}
