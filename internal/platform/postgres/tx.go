package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dErrors "estudios/pkg/domain-errors"
	"estudios/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner opens one SQL transaction per unit of work and exposes it to stores
// through the context.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &TxRunner{db: db, timeout: timeout}
}

// RunInTx commits when fn returns nil and rolls back otherwise. A nested call
// joins the transaction already in ctx.
func (t *TxRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return timeoutOr(ctx, err, "begin transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return timeoutOr(ctx, err, "commit transaction")
	}
	return nil
}

func timeoutOr(ctx context.Context, err error, msg string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg+": timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
