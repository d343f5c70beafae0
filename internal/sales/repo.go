package sales

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Line struct {
	ISBN      string
	Qty       int
	UnitPrice decimal.Decimal // harga saat checkout, bukan harga katalog sekarang
}

type Sale struct {
	CartID     string
	Owner      string
	PaymentRef string
	Total      decimal.Decimal
	Lines      []Line
}

type Repo struct{ DB *pgxpool.Pool }

// RecordSale: idempotent via payment_ref.
// - jika payment_ref sudah ada -> return sale id lama (existed=true).
func (r *Repo) RecordSale(ctx context.Context, s Sale) (saleID string, existed bool, err error) {
	row := r.DB.QueryRow(ctx, `SELECT id FROM sales WHERE payment_ref=$1`, s.PaymentRef)
	if err = row.Scan(&saleID); err == nil {
		return saleID, true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO sales(id, cart_id, client_id, payment_ref, total)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_ref) DO NOTHING
		RETURNING id
	`, uuid.NewString(), s.CartID, s.Owner, s.PaymentRef, s.Total).Scan(&saleID)
	if errors.Is(err, pgx.ErrNoRows) {
		// kalah balapan dengan consumer lain, sale sudah tercatat
		if err := r.DB.QueryRow(ctx, `SELECT id FROM sales WHERE payment_ref=$1`, s.PaymentRef).Scan(&saleID); err != nil {
			return "", false, err
		}
		return saleID, true, nil
	}
	if err != nil {
		return "", false, err
	}

	for _, l := range s.Lines {
		if _, err = tx.Exec(ctx, `
			INSERT INTO sale_items(sale_id, isbn, qty, unit_price)
			VALUES ($1, $2, $3, $4)`,
			saleID, l.ISBN, l.Qty, l.UnitPrice,
		); err != nil {
			return "", false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", false, err
	}
	return saleID, false, nil
}
