package sales

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	kafkax "github.com/ariefcatur/go-bookstore-carts/internal/kafka"
	"github.com/ariefcatur/go-bookstore-carts/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"log/slog"
)

type Recorder interface {
	RecordSale(ctx context.Context, s Sale) (saleID string, existed bool, err error)
}

type Service struct {
	Repo        Recorder
	Redis       *redis.Client
	ServiceName string
	Log         *slog.Logger
}

// HandleCheckoutCompleted: dipasang sebagai handler consumer.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	env, err := kafkax.DecodeEnvelope(m)
	if err != nil {
		return err
	}
	if env.EventType != carts.EventCheckoutCompleted {
		return nil // ignore
	}

	// 2) decode payload
	p, err := kafkax.UnwrapPayload[carts.CheckoutCompletedPayload](env.Payload)
	if err != nil {
		return err
	}
	total, err := decimal.NewFromString(p.Total)
	if err != nil {
		return fmt.Errorf("decode total %q: %w", p.Total, err)
	}

	// 3) dedup via Redis (pakai event_id). Key baru di-set setelah sale
	// tercatat; kalau dua delivery lolos bersamaan, RecordSale tetap
	// idempotent per payment_ref.
	seen, err := redisx.Seen(ctx, s.Redis, s.ServiceName, env.EventID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	sale := Sale{CartID: p.CartID, Owner: p.Owner, PaymentRef: p.PaymentRef, Total: total}
	for _, it := range p.Items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return fmt.Errorf("decode unit price %q for %s: %w", it.UnitPrice, it.ISBN, err)
		}
		sale.Lines = append(sale.Lines, Line{ISBN: it.ISBN, Qty: it.Qty, UnitPrice: price})
	}

	// 4) simpan; error -> offset tidak di-commit, event dikirim ulang
	id, existed, err := s.Repo.RecordSale(ctx, sale)
	if err != nil {
		return err
	}
	if err := redisx.MarkSeen(context.WithoutCancel(ctx), s.Redis, s.ServiceName, env.EventID); err != nil {
		s.logger().Warn("mark event seen", "event_id", env.EventID, "err", err)
	}
	s.logger().Info("sale recorded", "sale_id", id, "cart_id", p.CartID, "payment_ref", p.PaymentRef, "existed", existed)
	return nil
}

func (s *Service) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
