package catalog

import (
	"fmt"
	"github.com/shopspring/decimal"
)

type Book struct {
	ISBN  string
	Title string
	Price decimal.Decimal
}

// Catalog is the set of sellable ISBNs plus their unit prices.
// Built once at startup, read-only afterwards.
type Catalog struct {
	books map[string]Book
}

func New(books []Book) (*Catalog, error) {
	m := make(map[string]Book, len(books))
	for _, b := range books {
		if b.ISBN == "" {
			return nil, fmt.Errorf("catalog: empty isbn")
		}
		if b.Price.IsNegative() {
			return nil, fmt.Errorf("catalog: negative price for %s", b.ISBN)
		}
		m[b.ISBN] = b
	}
	return &Catalog{books: m}, nil
}

func (c *Catalog) Contains(isbn string) bool {
	_, ok := c.books[isbn]
	return ok
}

func (c *Catalog) PriceOf(isbn string) (decimal.Decimal, bool) {
	b, ok := c.books[isbn]
	return b.Price, ok
}

func (c *Catalog) Len() int { return len(c.books) }
