package kafka

import (
	"context"
	"errors"
	"fmt"
	"github.com/segmentio/kafka-go"
	"log/slog"
	"sync"
	"time"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

// reader adalah bagian *kafka.Reader yang dipakai Consumer.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r        reader
	workers  int
	attempts int           // percobaan per message sebelum consumer berhenti
	backoff  time.Duration // jeda awal antar percobaan, dobel tiap gagal
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, attempts: 5, backoff: 200 * time.Millisecond}
}

// Start memproses message sampai ctx selesai atau sebuah message tetap gagal
// setelah semua percobaan. Satu partition selalu ditangani satu worker secara
// berurutan, jadi offset yang di-commit tidak pernah melompati message gagal;
// message itu dikirim ulang setelah consumer di-restart.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if ctx.Err() != nil {
					return // message sisa tidak di-commit
				}
				if err := c.process(ctx, h, m); err != nil {
					cancel(err)
					return
				}
			}
		}(lanes[i])
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				cancel(fmt.Errorf("fetch: %w", err))
			}
			break
		}
		select {
		case lanes[m.Partition%len(lanes)] <- m:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	for _, l := range lanes {
		close(l)
	}
	wg.Wait()

	// shutdown biasa bukan error
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// process menjalankan handler dengan retry + backoff, lalu commit.
func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) error {
	attempts := c.attempts
	if attempts <= 0 {
		attempts = 1
	}
	wait := c.backoff
	var err error
	for i := 0; i < attempts; i++ {
		if err = h(ctx, m); err == nil {
			if err := c.r.CommitMessages(ctx, m); err != nil {
				return fmt.Errorf("commit partition %d offset %d: %w", m.Partition, m.Offset, err)
			}
			return nil
		}
		slog.Warn("consumer handler error", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "attempt", i+1, "err", err)
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
	}
	return fmt.Errorf("partition %d offset %d: %w", m.Partition, m.Offset, err)
}
