package carts

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/checkout"
	"github.com/ariefcatur/go-bookstore-carts/internal/directory"
	"github.com/ariefcatur/go-bookstore-carts/internal/payment"
	"github.com/google/uuid"
	"log/slog"
	"time"
)

// DefaultTTL is the sliding freshness window of a cart.
const DefaultTTL = 30 * time.Minute

// Directory resolves a login pair to a user.
type Directory interface {
	Lookup(ctx context.Context, c directory.Credentials) (directory.User, bool, error)
}

// Prices is both the catalog and the price table.
type Prices interface {
	Catalog
	checkout.PriceTable
}

// Registry owns the live carts and exposes the cart API.
type Registry struct {
	users     Directory
	store     Store
	catalog   Prices
	processor payment.Processor
	events    Publisher
	log       *slog.Logger

	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	service string

	locks stripes
}

// Options: Users, Catalog dan Processor wajib diisi.
type Options struct {
	Users     Directory
	Store     Store // nil -> MemoryStore
	Catalog   Prices
	Processor payment.Processor
	Events    Publisher // nil -> events dibuang
	Log       *slog.Logger
	TTL       time.Duration    // 0 -> DefaultTTL
	Now       func() time.Time // nil -> time.Now
	NewID     func() string    // nil -> uuid
	Service   string
}

func NewRegistry(o Options) (*Registry, error) {
	switch {
	case o.Users == nil:
		return nil, errors.New("carts: registry needs a user directory")
	case o.Catalog == nil:
		return nil, errors.New("carts: registry needs a catalog")
	case o.Processor == nil:
		return nil, errors.New("carts: registry needs a payment processor")
	}
	r := &Registry{
		users:     o.Users,
		store:     o.Store,
		catalog:   o.Catalog,
		processor: o.Processor,
		events:    o.Events,
		log:       o.Log,
		ttl:       o.TTL,
		now:       o.Now,
		newID:     o.NewID,
		service:   o.Service,
	}
	if r.store == nil {
		r.store = NewMemoryStore()
	}
	if r.events == nil {
		r.events = nopPublisher{}
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r, nil
}

func (r *Registry) TTL() time.Duration { return r.ttl }

// CreateOption tweaks a cart at creation.
type CreateOption func(c *Cart, ttl time.Duration)

// WithExpiresAt overrides the end of the first freshness window.
func WithExpiresAt(t time.Time) CreateOption {
	return func(c *Cart, ttl time.Duration) {
		c.LastTouchedAt = t.Add(-ttl)
	}
}

func (r *Registry) ValidateUser(ctx context.Context, creds directory.Credentials) (directory.User, bool, error) {
	return r.users.Lookup(ctx, creds)
}

// CreateCart returns the id of a new empty cart.
func (r *Registry) CreateCart(ctx context.Context, creds directory.Credentials, opts ...CreateOption) (string, error) {
	user, ok, err := r.ValidateUser(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("validate user: %w", err)
	}
	if !ok {
		return "", ErrUnauthorized
	}

	c := NewCart(r.newID(), r.catalog, r.now)
	c.Owner = user.ClientID
	for _, opt := range opts {
		opt(c, r.ttl)
	}
	if err := r.store.Put(ctx, c); err != nil {
		return "", fmt.Errorf("store cart: %w", err)
	}

	r.publish(ctx, TopicCartCreated, EventCartCreated, c.ID, CartCreatedPayload{CartID: c.ID, Owner: c.Owner})
	r.log.Info("cart created", "cart_id", c.ID, "owner", c.Owner)
	return c.ID, nil
}

// GetCart resolves a live cart and extends its freshness window.
func (r *Registry) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	unlock := r.locks.lock(cartID)
	defer unlock()
	return r.getCart(ctx, cartID)
}

// getCart: caller wajib pegang lock cart.
func (r *Registry) getCart(ctx context.Context, cartID string) (*Cart, error) {
	c, err := r.store.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return nil, &NotFoundError{CartID: cartID}
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c.bind(r.catalog, r.now)

	// cart yang sudah expired tidak di-touch, jadi tetap expired selamanya
	if c.IsExpired(r.now(), r.ttl) {
		return nil, ErrCartExpired
	}
	c.touch()
	if err := r.store.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("store cart: %w", err)
	}
	return c, nil
}

// ListCart returns the grouped item listing of a cart.
func (r *Registry) ListCart(ctx context.Context, cartID string) (string, error) {
	c, err := r.GetCart(ctx, cartID)
	if err != nil {
		return "", err
	}
	return c.ItemsToString(), nil
}

// AddToCart adds qty units of itemID. If an add fails partway, the units
// added before the failure stay in the cart.
func (r *Registry) AddToCart(ctx context.Context, cartID, itemID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	unlock := r.locks.lock(cartID)
	defer unlock()

	c, err := r.getCart(ctx, cartID)
	if err != nil {
		return err
	}

	var addErr error
	for i := 0; i < qty; i++ {
		if _, addErr = c.AddItem(itemID); addErr != nil {
			break
		}
	}
	// tetap simpan walau gagal di tengah (tanpa rollback)
	if err := r.store.Put(ctx, c); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return addErr
}

// Checkout prices the cart and debits the instrument. The returned string
// is the processor's transaction reference.
func (r *Registry) Checkout(ctx context.Context, cartID string, card payment.Instrument) (string, error) {
	unlock := r.locks.lock(cartID)
	defer unlock()

	c, err := r.getCart(ctx, cartID)
	if err != nil {
		return "", err
	}

	cashier, err := checkout.New(c, r.catalog, r.processor, card)
	if err != nil {
		r.checkoutFailed(ctx, c.ID, err)
		return "", err
	}
	total, err := cashier.Total()
	if err != nil {
		r.log.Error("pricing invariant broken", "cart_id", c.ID, "err", err)
		return "", err
	}
	ref, err := cashier.Checkout(ctx)
	if err != nil {
		r.checkoutFailed(ctx, c.ID, err)
		return "", err
	}

	r.publish(ctx, TopicCheckoutCompleted, EventCheckoutCompleted, c.ID, CheckoutCompletedPayload{
		CartID:     c.ID,
		Owner:      c.Owner,
		Items:      groupItems(c.Items(), r.catalog),
		Total:      total.String(),
		PaymentRef: ref,
	})
	r.log.Info("checkout completed", "cart_id", c.ID, "total", total.String(), "payment_ref", ref)
	return ref, nil
}

func (r *Registry) checkoutFailed(ctx context.Context, cartID string, err error) {
	r.publish(ctx, TopicCheckoutFailed, EventCheckoutFailed, cartID, CheckoutFailedPayload{
		CartID: cartID,
		Reason: Message(err),
	})
	r.log.Warn("checkout failed", "cart_id", cartID, "err", err)
}

// publish: event bersifat best effort, gagal publish tidak menggagalkan request.
func (r *Registry) publish(ctx context.Context, topic, eventType, cartID string, payload any) {
	ev, err := NewEnvelope(eventType, r.service, cartID, payload, r.now())
	if err != nil {
		r.log.Error("encode event", "event_type", eventType, "err", err)
		return
	}
	if err := r.events.Publish(ctx, topic, PartitionKey(cartID), ev); err != nil {
		r.log.Warn("publish event", "event_type", eventType, "cart_id", cartID, "err", err)
	}
}
