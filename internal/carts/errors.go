package carts

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartExpired     = errors.New("expired cart")
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidQuantity = errors.New("invalid quantity")

	// checkout lain dengan Idempotency-Key yang sama masih berjalan
	ErrCheckoutInProgress = errors.New("checkout in progress")
)

// NotFoundError carries the cart id the caller asked for.
type NotFoundError struct{ CartID string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("cart not found (%s)", e.CartID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrCartNotFound }
