package payment

import (
	"context"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"sync"
)

// Simulator menyimpan saldo per nomor kartu di memory.
// Dipakai di test dan di mode demo tanpa database.
type Simulator struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	NewRef   func() string
}

func NewSimulator(balances map[string]decimal.Decimal) *Simulator {
	b := make(map[string]decimal.Decimal, len(balances))
	for k, v := range balances {
		b[k] = v
	}
	return &Simulator{balances: b, NewRef: uuid.NewString}
}

func (s *Simulator) Authorize(ctx context.Context, amount decimal.Decimal, in Instrument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[in.Number]
	if !ok || bal.LessThan(amount) {
		return "", ErrInsufficientFunds
	}
	s.balances[in.Number] = bal.Sub(amount)
	return s.NewRef(), nil
}

func (s *Simulator) Balance(number string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[number]
}

// Offline: processor sedang down, semua debit gagal.
type Offline struct{}

func (Offline) Authorize(context.Context, decimal.Decimal, Instrument) (string, error) {
	return "", ErrServiceUnavailable
}
