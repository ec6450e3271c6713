package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/crushcourt/internal/shared"
)

// querier is implemented by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txCtxKey struct{}

// txScope is one attempt of a transaction and the hooks queued against it.
type txScope struct {
	tx       *sql.Tx
	onCommit []func()
}

func withTx(ctx context.Context, scope *txScope) context.Context {
	return context.WithValue(ctx, txCtxKey{}, scope)
}

func scopeFromCtx(ctx context.Context) (*txScope, bool) {
	scope, ok := ctx.Value(txCtxKey{}).(*txScope)
	return scope, ok
}

func txFromCtx(ctx context.Context) (*sql.Tx, bool) {
	scope, ok := scopeFromCtx(ctx)
	if !ok {
		return nil, false
	}
	return scope.tx, true
}

// AfterCommit runs fn once the transaction carried by ctx commits. Without a
// transaction fn runs immediately. Hooks of a rolled back attempt never run.
func AfterCommit(ctx context.Context, fn func()) {
	if scope, ok := scopeFromCtx(ctx); ok {
		scope.onCommit = append(scope.onCommit, fn)
		return
	}
	fn()
}

// q returns the transaction carried by ctx, or the pool.
func (s *SQLiteStore) q(ctx context.Context) querier {
	if tx, ok := txFromCtx(ctx); ok {
		return tx
	}
	return s.db
}

// RunInTx executes fn within a database transaction.
// A call made while ctx already carries a transaction joins it.
// On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
// SQLITE_BUSY failures are retried with exponential backoff.
func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		err = s.runInTxOnce(ctx, fn)
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		if attempt == s.opts.MaxRetries-1 {
			break
		}

		delay := s.opts.RetryBaseDelay * time.Duration(1<<attempt)
		slog.Debug("transaction hit SQLITE_BUSY, retrying", "attempt", attempt+1, "delay", delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry transaction: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", s.opts.MaxRetries, err)
}

func (s *SQLiteStore) runInTxOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	scope := &txScope{tx: tx}
	if err := fn(withTx(ctx, scope)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	for _, hook := range scope.onCommit {
		hook()
	}
	return nil
}
