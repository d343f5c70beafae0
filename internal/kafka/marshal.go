package kafka

import (
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/segmentio/kafka-go"
)

// MustMarshal dipakai untuk envelope yang strukturnya sudah pasti valid.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// DecodeEnvelope membaca envelope dari value message. Kalau header
// x-event-type ada, harus sama dengan event_type di body.
func DecodeEnvelope(m kafka.Message) (carts.Envelope, error) {
	var ev carts.Envelope
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		return ev, fmt.Errorf("decode envelope: %w", err)
	}
	for _, h := range m.Headers {
		if h.Key == "x-event-type" && string(h.Value) != ev.EventType {
			return ev, fmt.Errorf("event type mismatch: header %q, body %q", h.Value, ev.EventType)
		}
	}
	return ev, nil
}

// UnwrapPayload decode payload spesifik dari envelope.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
