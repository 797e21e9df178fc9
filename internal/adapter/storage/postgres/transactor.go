package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor hands out pgx transactions from the shared pool. The wallet
// service uses it to scope a balance debit and its ledger entry to one
// transaction.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction. Callers own its lifecycle; a deferred Rollback
// after Commit is a no-op.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
