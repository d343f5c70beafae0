package payment

import (
	"context"
	"github.com/shopspring/decimal"
	"strconv"
	"time"
	"unicode/utf8"
)

// MaxOwnerLen batas panjang nama pemilik kartu (aturan bisnis, bukan teknis).
const MaxOwnerLen = 30

// Merchant validates instruments locally and delegates debits to its Gateway.
type Merchant struct {
	Gateway Gateway
	Now     func() time.Time // nil -> time.Now
}

func NewMerchant(gw Gateway) *Merchant {
	return &Merchant{Gateway: gw, Now: time.Now}
}

// Validate urutannya: nomor -> owner -> format expiration -> sudah lewat?
func (m *Merchant) Validate(in Instrument) error {
	if in.Number == "" {
		return ErrInvalidNumber
	}
	if in.Owner == "" || utf8.RuneCountInString(in.Owner) > MaxOwnerLen {
		return ErrInvalidOwner
	}
	month, year, err := parseExpiration(in.Expiration)
	if err != nil {
		return err
	}
	if expiredAt(month, year, m.now()) {
		return ErrExpiredCard
	}
	return nil
}

// Debit tidak cek saldo sendiri; itu tanggung jawab gateway.
func (m *Merchant) Debit(ctx context.Context, amount decimal.Decimal, in Instrument) (string, error) {
	if m.Gateway == nil {
		return "", ErrServiceUnavailable
	}
	return m.Gateway.Authorize(ctx, amount, in)
}

func (m *Merchant) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// parseExpiration: 2 digit bulan + 4 digit tahun, contoh "092023".
func parseExpiration(s string) (month, year int, err error) {
	if len(s) < 6 {
		return 0, 0, ErrInvalidExpiration
	}
	month, err = strconv.Atoi(s[0:2])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, ErrInvalidExpiration
	}
	year, err = strconv.Atoi(s[2:6])
	if err != nil || year < 0 {
		return 0, 0, ErrInvalidExpiration
	}
	return month, year, nil
}

func expiredAt(month, year int, now time.Time) bool {
	cy, cm := now.Year(), int(now.Month())
	return year < cy || (year == cy && month < cm)
}
