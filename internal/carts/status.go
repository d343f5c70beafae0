package carts

import (
	"errors"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/checkout"
	"github.com/ariefcatur/go-bookstore-carts/internal/payment"
)

// Kode status di wire: "0|payload" sukses, "1|pesan" gagal.
const (
	CodeOK   = "0"
	CodeFail = "1"
)

const sep = "|"

func OK(payload string) string { return CodeOK + sep + payload }

func Fail(err error) string { return CodeFail + sep + Message(err) }

// wireMessages: teks yang sudah dipakai client lama, jangan diubah.
var wireMessages = []struct {
	err error
	msg string
}{
	{ErrUnauthorized, "Invalid Credentials"},
	{ErrCartExpired, "Expired cart"},
	{ErrInvalidItem, "Invalid Item"},
	{ErrInvalidQuantity, "Invalid quantity"},
	{ErrCheckoutInProgress, "Checkout in progress"},
	{checkout.ErrEmptyCart, "The Cart is empty"},
	{payment.ErrInvalidNumber, "Invalid credit card number"},
	{payment.ErrInvalidOwner, "Invalid credit card owner"},
	{payment.ErrInvalidExpiration, "Invalid expiration date"},
	{payment.ErrExpiredCard, "Expired card"},
	{payment.ErrInsufficientFunds, "Insufficient funds"},
	{payment.ErrServiceUnavailable, "Service is down"},
}

// Message maps an error from the taxonomy to its wire text.
// Errors outside the taxonomy keep their own text.
func Message(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fmt.Sprintf("Cart not found (%s)", nf.CartID)
	}
	for _, w := range wireMessages {
		if errors.Is(err, w.err) {
			return w.msg
		}
	}
	return err.Error()
}

// IsBusiness reports whether err is an expected outcome of the protocol
// rather than an infrastructure failure or a broken invariant.
func IsBusiness(err error) bool {
	if errors.Is(err, ErrCartNotFound) {
		return true
	}
	for _, w := range wireMessages {
		if errors.Is(err, w.err) {
			return true
		}
	}
	return false
}
