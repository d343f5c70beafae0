package redisx

import (
	"context"
	"errors"
	"fmt"
	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-bookstore-carts/internal/carts"
	"github.com/ariefcatur/go-bookstore-carts/internal/catalog"
	"github.com/ariefcatur/go-bookstore-carts/internal/directory"
	"github.com/ariefcatur/go-bookstore-carts/internal/payment"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"testing"
	"time"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type setCatalog map[string]bool

func (s setCatalog) Contains(id string) bool { return s[id] }

func TestCartStoreRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	store := &CartStore{Redis: rdb}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, carts.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	c := carts.NewCart("c-1", setCatalog{"123": true}, nil)
	c.Owner = "pepe"
	_, _ = c.AddItem("123")
	_, _ = c.AddItem("123")
	if err := store.Put(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "c-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Owner != "pepe" || got.ItemsToString() != "123|2" {
		t.Fatalf("got %+v", got)
	}
	if ttl := mr.TTL(fmt.Sprintf(KeyCart, "c-1")); ttl != TTLCartRetention {
		t.Fatalf("ttl = %v", ttl)
	}

	mr.FastForward(TTLCartRetention)
	if _, err := store.Get(ctx, "c-1"); !errors.Is(err, carts.ErrCartNotFound) {
		t.Fatalf("expected key to be collected, got %v", err)
	}
}

func TestRegistryOnRedis(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cat, err := catalog.New([]catalog.Book{{ISBN: "123", Price: decimal.RequireFromString("32.56")}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reg, err := carts.NewRegistry(carts.Options{
		Users:     directory.Static{{ClientID: "pepe", Password: "pepepass"}},
		Store:     &CartStore{Redis: rdb, Retention: time.Hour},
		Catalog:   cat,
		Processor: payment.NewMerchant(payment.Offline{}),
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	id, err := reg.CreateCart(ctx, directory.Credentials{ClientID: "pepe", Password: "pepepass"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	now = now.Add(carts.DefaultTTL)
	// key masih ada (retention 1 jam) tapi cart sudah expired
	if _, err := reg.ListCart(ctx, id); !errors.Is(err, carts.ErrCartExpired) {
		t.Fatalf("expected ErrCartExpired, got %v", err)
	}
}

func TestReplyCache(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	cache := &ReplyCache{Redis: rdb}

	tests := []struct {
		name         string
		cartID       string
		wantReply    string
		wantReserved bool
	}{
		{"first claim", "c1", "", true},
		{"same cart while pending", "c1", "", false},
		{"other cart same key", "c2", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, reserved, err := cache.Reserve(ctx, tt.cartID, "k1")
			if err != nil || reply != tt.wantReply || reserved != tt.wantReserved {
				t.Fatalf("got %q reserved=%v err=%v", reply, reserved, err)
			}
		})
	}
	if ttl := mr.TTL(fmt.Sprintf(KeyIdemCheckout, "c1", "k1")); ttl != TTLIdemPending {
		t.Fatalf("pending ttl = %v", ttl)
	}

	if err := cache.Remember(ctx, "c1", "k1", "0|ref-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	reply, reserved, err := cache.Reserve(ctx, "c1", "k1")
	if err != nil || reserved || reply != "0|ref-1" {
		t.Fatalf("replay: got %q reserved=%v err=%v", reply, reserved, err)
	}
	if ttl := mr.TTL(fmt.Sprintf(KeyIdemCheckout, "c1", "k1")); ttl != TTLIdempotency {
		t.Fatalf("ttl = %v", ttl)
	}

	if err := cache.Release(ctx, "c2", "k1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, reserved, _ := cache.Reserve(ctx, "c2", "k1"); !reserved {
		t.Fatal("released key should be claimable again")
	}
}

func TestSeen(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	if seen, err := Seen(ctx, rdb, "sales", "ev-1"); err != nil || seen {
		t.Fatalf("fresh event: seen=%v err=%v", seen, err)
	}
	if err := MarkSeen(ctx, rdb, "sales", "ev-1"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if seen, err := Seen(ctx, rdb, "sales", "ev-1"); err != nil || !seen {
		t.Fatalf("marked event: seen=%v err=%v", seen, err)
	}
	if ttl := mr.TTL(fmt.Sprintf(KeyDedup, "sales", "ev-1")); ttl != TTLDedup {
		t.Fatalf("ttl = %v", ttl)
	}
}
