package payment

import (
	"context"
	"errors"
	"github.com/shopspring/decimal"
)

// Instrument = kartu kredit yang dikirim caller saat checkout.
// Saldo tidak pernah ikut di sini, itu urusan gateway.
type Instrument struct {
	Number     string `json:"number"`
	Expiration string `json:"expiration"` // MMYYYY
	Owner      string `json:"owner"`
}

var (
	ErrInvalidNumber      = errors.New("invalid credit card number")
	ErrInvalidOwner       = errors.New("invalid credit card owner")
	ErrInvalidExpiration  = errors.New("invalid expiration date")
	ErrExpiredCard        = errors.New("expired card")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrServiceUnavailable = errors.New("service is down")
)

// Processor is the payment capability consumed by the checkout.
// Validate checks the instrument only; Debit moves money and returns a reference.
type Processor interface {
	Validate(in Instrument) error
	Debit(ctx context.Context, amount decimal.Decimal, in Instrument) (string, error)
}

// Gateway is the payment network behind a Merchant.
type Gateway interface {
	Authorize(ctx context.Context, amount decimal.Decimal, in Instrument) (ref string, err error)
}
