package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// LedgerRepository owns user balances and the transactions ledger.
// Balance mutations are single atomic UPDATE statements so the worker's
// refunds tolerate concurrent chat-initiated deposits and deductions.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Debit withdraws amount from the owner's balance. The conditional UPDATE
// rejects the withdrawal atomically when funds are short.
func (r *LedgerRepository) Debit(ctx context.Context, ownerChatID int64, amount int64) error {
	const q = `
UPDATE users SET balance = balance - $2
WHERE chat_id = $1 AND balance >= $2;
`
	tag, err := r.pool.Exec(ctx, q, ownerChatID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// Credit adds amount back to the owner's balance.
func (r *LedgerRepository) Credit(ctx context.Context, ownerChatID int64, amount int64) error {
	const q = `UPDATE users SET balance = balance + $2 WHERE chat_id = $1;`

	tag, err := r.pool.Exec(ctx, q, ownerChatID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LedgerRepository) Balance(ctx context.Context, ownerChatID int64) (int64, error) {
	const q = `SELECT balance FROM users WHERE chat_id = $1;`

	var balance int64
	if err := r.pool.QueryRow(ctx, q, ownerChatID).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// RecordEntry appends one ledger row. Kind is charge|refund|deposit.
func (r *LedgerRepository) RecordEntry(ctx context.Context, ownerChatID int64, kind string, amount int64, description string) error {
	const q = `
INSERT INTO transactions (chat_id, kind, amount, description, status)
VALUES ($1, $2, $3, $4, 'approved');
`
	_, err := r.pool.Exec(ctx, q, ownerChatID, kind, amount, description)
	return err
}
