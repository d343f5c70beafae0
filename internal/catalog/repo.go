package catalog

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := r.DB.Query(ctx, `SELECT isbn, title, price FROM books ORDER BY isbn`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Price); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Load ambil semua buku dari DB lalu bekukan jadi Catalog.
func Load(ctx context.Context, r *Repo) (*Catalog, error) {
	books, err := r.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return New(books)
}
