package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/ariefcatur/go-bookstore-carts/internal/directory"
	"github.com/ariefcatur/go-bookstore-carts/internal/metrics"
	"github.com/ariefcatur/go-bookstore-carts/internal/payment"
	"github.com/go-chi/chi/v5"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const IdempotencyHeader = "Idempotency-Key"

// ReplyCache reserves an idempotency key per cart and stores the reply of
// the checkout that owns it.
type ReplyCache interface {
	Reserve(ctx context.Context, cartID, key string) (reply string, reserved bool, err error)
	Remember(ctx context.Context, cartID, key, reply string) error
	Release(ctx context.Context, cartID, key string) error
}

type CartsHandler struct {
	Registry *carts.Registry
	Replies  ReplyCache // optional
	Metrics  *metrics.ServerMetrics
	Log      *slog.Logger
}

func (h *CartsHandler) Register(r *chi.Mux) {
	r.Get("/createCart", h.createCart)
	r.Get("/addToCart", h.addToCart)
	r.Get("/listCart", h.listCart)
	r.Get("/checkOutCart", h.checkOutCart)
}

func writeReply(w http.ResponseWriter, code int, reply string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(reply))
}

// writeErr: error bisnis tetap 200 (kode ada di body), selain itu 500.
func (h *CartsHandler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if carts.IsBusiness(err) {
		writeReply(w, http.StatusOK, carts.Fail(err))
		return
	}
	h.logger().Error("request failed", "path", r.URL.Path, "err", err)
	writeReply(w, http.StatusInternalServerError, carts.Fail(err))
}

func (h *CartsHandler) createCart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Registry.CreateCart(ctx, directory.Credentials{
		ClientID: q.Get("clientId"),
		Password: q.Get("password"),
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeReply(w, http.StatusOK, carts.OK(id))
}

func (h *CartsHandler) addToCart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	qty, err := strconv.Atoi(q.Get("bookQuantity"))
	if err != nil || qty < 0 {
		writeReply(w, http.StatusBadRequest, carts.Fail(carts.ErrInvalidQuantity))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Registry.AddToCart(ctx, q.Get("cartId"), q.Get("bookIsbn"), qty); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeReply(w, http.StatusOK, carts.OK("OK"))
}

func (h *CartsHandler) listCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Registry.ListCart(ctx, r.URL.Query().Get("cartId"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeReply(w, http.StatusOK, carts.OK(items))
}

func (h *CartsHandler) checkOutCart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cartID := q.Get("cartId")
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Idempotency via Redis: key di-reserve dulu (SETNX) supaya retry paralel
	// dengan key sama tidak men-debit dua kali.
	idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	useIdem := idemKey != "" && h.Replies != nil
	if useIdem {
		reply, reserved, err := h.Replies.Reserve(ctx, cartID, idemKey)
		if err != nil {
			h.writeErr(w, r, fmt.Errorf("idempotency reserve: %w", err))
			return
		}
		if !reserved {
			if reply != "" {
				writeReply(w, http.StatusOK, reply)
				return
			}
			writeReply(w, http.StatusConflict, carts.Fail(carts.ErrCheckoutInProgress))
			return
		}
	}

	ref, err := h.Registry.Checkout(ctx, cartID, payment.Instrument{
		Number:     q.Get("ccn"),
		Expiration: q.Get("cced"),
		Owner:      q.Get("cco"),
	})
	if err != nil {
		if useIdem {
			// lepas walau request sudah di-cancel, kalau tidak retry ketahan sampai TTL pending
			if err := h.Replies.Release(context.WithoutCancel(ctx), cartID, idemKey); err != nil {
				h.logger().Warn("idempotency release", "cart_id", cartID, "err", err)
			}
		}
		h.countCheckout(carts.CodeFail)
		h.writeErr(w, r, err)
		return
	}
	h.countCheckout(carts.CodeOK)

	reply := carts.OK(ref)
	if useIdem {
		if err := h.Replies.Remember(context.WithoutCancel(ctx), cartID, idemKey, reply); err != nil {
			h.logger().Warn("idempotency remember", "cart_id", cartID, "err", err)
		}
	}
	writeReply(w, http.StatusOK, reply)
}

func (h *CartsHandler) countCheckout(code string) {
	if h.Metrics != nil {
		h.Metrics.Checkouts.WithLabelValues(code).Inc()
	}
}

func (h *CartsHandler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}
