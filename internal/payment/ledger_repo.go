package payment

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepo is a Gateway backed by the card_accounts table.
type LedgerRepo struct{ DB *pgxpool.Pool }

// Authorize: lock saldo kartu (FOR UPDATE) -> kurangi -> catat authorization.
// Kalau saldo kurang, tidak ada perubahan yg di-commit (rollback).
func (r *LedgerRepo) Authorize(ctx context.Context, amount decimal.Decimal, in Instrument) (string, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT balance FROM card_accounts WHERE number=$1 FOR UPDATE`, in.Number).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInsufficientFunds
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if balance.LessThan(amount) {
		return "", ErrInsufficientFunds
	}

	ct, err := tx.Exec(ctx, `UPDATE card_accounts SET balance = balance - $2 WHERE number=$1`, in.Number, amount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if ct.RowsAffected() != 1 {
		return "", ErrInsufficientFunds
	}

	ref := uuid.NewString()
	if _, err := tx.Exec(ctx, `
		INSERT INTO authorizations(ref, card_number, amount)
		VALUES ($1, $2, $3)
	`, ref, in.Number, amount); err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return ref, nil
}
