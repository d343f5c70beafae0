package checkout

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart = errors.New("the cart is empty")
	// ErrPricing means an item in the cart has no price. The catalog
	// invariant should make this impossible.
	ErrPricing = errors.New("item has no price")
)

// Cart is the view of a cart the cashier needs.
type Cart interface {
	Items() []string
	ItemsCount() int
}

type PriceTable interface {
	PriceOf(itemID string) (decimal.Decimal, bool)
}

// Cashier is built per checkout attempt.
type Cashier struct {
	cart      Cart
	prices    PriceTable
	processor payment.Processor
	card      payment.Instrument
}

// New cek cart kosong dulu, baru validasi kartu ke processor.
// Kalau salah satu gagal, tidak ada Cashier yang dikembalikan.
func New(cart Cart, prices PriceTable, processor payment.Processor, card payment.Instrument) (*Cashier, error) {
	if cart.ItemsCount() == 0 {
		return nil, ErrEmptyCart
	}
	if err := processor.Validate(card); err != nil {
		return nil, err
	}
	return &Cashier{cart: cart, prices: prices, processor: processor, card: card}, nil
}

// Total sums the unit price of every item unit in the cart.
func (c *Cashier) Total() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, id := range c.cart.Items() {
		price, ok := c.prices.PriceOf(id)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrPricing, id)
		}
		total = total.Add(price)
	}
	return total, nil
}

// Checkout debits the total. No retry here.
func (c *Cashier) Checkout(ctx context.Context) (string, error) {
	total, err := c.Total()
	if err != nil {
		return "", err
	}
	return c.processor.Debit(ctx, total, c.card)
}
