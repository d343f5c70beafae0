package payment

import (
	"context"
	"errors"
	"github.com/shopspring/decimal"
	"testing"
	"time"
)

func fixedNow() time.Time { return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC) }

func validCard() Instrument {
	return Instrument{Number: "1234-4567-8901-1234", Expiration: "092030", Owner: "Pepe Perez"}
}

func TestMerchantValidate(t *testing.T) {
	m := &Merchant{Now: fixedNow}

	tests := []struct {
		name   string
		mutate func(*Instrument)
		want   error
	}{
		{"valid", func(*Instrument) {}, nil},
		{"empty number", func(in *Instrument) { in.Number = "" }, ErrInvalidNumber},
		{"empty owner", func(in *Instrument) { in.Owner = "" }, ErrInvalidOwner},
		{"owner 30 chars ok", func(in *Instrument) { in.Owner = "abcdefghijabcdefghijabcdefghij" }, nil},
		{"owner 31 chars", func(in *Instrument) { in.Owner = "abcdefghijabcdefghijabcdefghijk" }, ErrInvalidOwner},
		{"owner 70 chars", func(in *Instrument) {
			in.Owner = "Pepe PerezPepe PerezPepe PerezPepe PerezPepe PerezPepe PerezPepe Perez"
		}, ErrInvalidOwner},
		{"expiration empty", func(in *Instrument) { in.Expiration = "" }, ErrInvalidExpiration},
		{"expiration short year", func(in *Instrument) { in.Expiration = "09203" }, ErrInvalidExpiration},
		{"expiration not numeric", func(in *Instrument) { in.Expiration = "ab2030" }, ErrInvalidExpiration},
		{"expiration month 13", func(in *Instrument) { in.Expiration = "132030" }, ErrInvalidExpiration},
		{"expired last year", func(in *Instrument) { in.Expiration = "012020" }, ErrExpiredCard},
		{"expired earlier this year", func(in *Instrument) { in.Expiration = "092026" }, ErrExpiredCard},
		{"current month still valid", func(in *Instrument) { in.Expiration = "102026" }, nil},
		// owner dicek sebelum expiration
		{"owner checked before expiration", func(in *Instrument) {
			in.Owner = ""
			in.Expiration = "012020"
		}, ErrInvalidOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCard()
			tt.mutate(&in)
			if err := m.Validate(in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMerchantDebit(t *testing.T) {
	ctx := context.Background()
	card := validCard()

	t.Run("simulator debits balance", func(t *testing.T) {
		sim := NewSimulator(map[string]decimal.Decimal{card.Number: decimal.NewFromInt(100)})
		sim.NewRef = func() string { return "ref-1" }
		m := NewMerchant(sim)

		ref, err := m.Debit(ctx, decimal.RequireFromString("40.6"), card)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if ref != "ref-1" {
			t.Fatalf("got ref %q", ref)
		}
		if got := sim.Balance(card.Number); !got.Equal(decimal.RequireFromString("59.4")) {
			t.Fatalf("balance = %s", got)
		}
	})

	t.Run("insufficient funds leaves balance", func(t *testing.T) {
		sim := NewSimulator(map[string]decimal.Decimal{card.Number: decimal.Zero})
		m := NewMerchant(sim)

		if _, err := m.Debit(ctx, decimal.NewFromInt(1), card); !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
		if !sim.Balance(card.Number).IsZero() {
			t.Fatalf("balance changed")
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		m := NewMerchant(NewSimulator(nil))
		if _, err := m.Debit(ctx, decimal.NewFromInt(1), card); !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
	})

	t.Run("offline gateway", func(t *testing.T) {
		m := NewMerchant(Offline{})
		if _, err := m.Debit(ctx, decimal.NewFromInt(1), card); !errors.Is(err, ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("no gateway", func(t *testing.T) {
		m := &Merchant{}
		if _, err := m.Debit(ctx, decimal.NewFromInt(1), card); !errors.Is(err, ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
