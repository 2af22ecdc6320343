package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "matchport/pkg/domain-errors"
)

// Runner provides the transactional boundary for lifecycle mutations. The
// function receives a context that downstream stores use to join the same
// transaction (SQL) or critical section (memory); if fn returns an error
// nothing it did is visible afterwards.
type Runner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// SQLRunner runs fn inside a database transaction injected into the context.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if err := fn(WithTx(ctx, dbTx)); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}

// MemoryRunner serializes mutations with a single mutex. In-memory stores
// have no rollback, so fn must order its writes so a failure leaves no
// partial lifecycle state (guard checks before first write).
type MemoryRunner struct {
	mu sync.Mutex
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
