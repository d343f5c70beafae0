package kafka

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/segmentio/kafka-go"
	"strconv"
)

// Bus holds one Producer per topic and publishes cart envelopes.
type Bus struct {
	producers map[string]*Producer
}

func NewBus(brokers []string, topics []string, buf int) *Bus {
	b := &Bus{producers: make(map[string]*Producer, len(topics))}
	for _, t := range topics {
		b.producers[t] = NewProducer(brokers, t, buf)
	}
	return b
}

func (b *Bus) Start(ctx context.Context) {
	for _, p := range b.producers {
		p.Start(ctx)
	}
}

func (b *Bus) Publish(_ context.Context, topic string, key []byte, ev carts.Envelope) error {
	p, ok := b.producers[topic]
	if !ok {
		return fmt.Errorf("kafka: no producer for topic %s", topic)
	}
	return p.Publish(key, MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(ev.EventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}

// Close flush semua producer lalu tunggu sampai selesai.
func (b *Bus) Close() {
	for _, p := range b.producers {
		p.Close()
	}
	for _, p := range b.producers {
		p.WaitClosed()
	}
}
