package carts

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Catalog is the set of valid item ids. Shared, read-only.
type Catalog interface {
	Contains(itemID string) bool
}

type Cart struct {
	ID            string
	Owner         string
	CreatedAt     time.Time
	LastTouchedAt time.Time

	items   []string
	catalog Catalog
	now     func() time.Time
}

// snapshot adalah bentuk cart yang disimpan di store (tanpa catalog).
type snapshot struct {
	ID            string    `json:"id"`
	Owner         string    `json:"owner"`
	Items         []string  `json:"items"`
	CreatedAt     time.Time `json:"created_at"`
	LastTouchedAt time.Time `json:"last_touched_at"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		ID:            c.ID,
		Owner:         c.Owner,
		Items:         c.items,
		CreatedAt:     c.CreatedAt,
		LastTouchedAt: c.LastTouchedAt,
	})
}

func (c *Cart) UnmarshalJSON(b []byte) error {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	c.ID, c.Owner, c.items = s.ID, s.Owner, s.Items
	c.CreatedAt, c.LastTouchedAt = s.CreatedAt, s.LastTouchedAt
	return nil
}

// NewCart bikin cart kosong yang terikat ke catalog.
func NewCart(id string, catalog Catalog, now func() time.Time) *Cart {
	c := &Cart{ID: id}
	c.bind(catalog, now)
	t := c.now()
	c.CreatedAt, c.LastTouchedAt = t, t
	return c
}

// bind dipanggil registry tiap kali cart di-load dari store.
func (c *Cart) bind(catalog Catalog, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.catalog = catalog
	c.now = now
}

// AddItem appends one unit. Items outside the catalog are rejected and
// leave the cart untouched.
func (c *Cart) AddItem(itemID string) (string, error) {
	if c.catalog == nil || !c.catalog.Contains(itemID) {
		return "", ErrInvalidItem
	}
	c.items = append(c.items, itemID)
	c.touch()
	return itemID, nil
}

func (c *Cart) touch() { c.LastTouchedAt = c.now() }

// Items returns a copy.
func (c *Cart) Items() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) ItemsCount() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) HasItem(itemID string) bool {
	for _, id := range c.items {
		if id == itemID {
			return true
		}
	}
	return false
}

func (c *Cart) QuantityOf(itemID string) int {
	n := 0
	for _, id := range c.items {
		if id == itemID {
			n++
		}
	}
	return n
}

// ItemsToString: "ISBN_1|QTY_1|ISBN_2|QTY_2", diurutkan per isbn
// supaya hasilnya sama untuk multiset yang sama.
func (c *Cart) ItemsToString() string {
	counts := map[string]int{}
	for _, id := range c.items {
		counts[id]++
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		parts = append(parts, id, strconv.Itoa(counts[id]))
	}
	return strings.Join(parts, "|")
}

// IsExpired: lastTouchedAt + ttl <= now.
func (c *Cart) IsExpired(now time.Time, ttl time.Duration) bool {
	return !c.LastTouchedAt.Add(ttl).After(now)
}

// ExpiresAt is the instant the current freshness window closes.
func (c *Cart) ExpiresAt(ttl time.Duration) time.Time {
	return c.LastTouchedAt.Add(ttl)
}
