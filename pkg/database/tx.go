package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TxBeginner starts sqlx transactions; satisfied by *sqlx.DB.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// WithTx runs fn inside a single transaction. The transaction is committed when
// fn returns nil and rolled back on any error or panic.
func WithTx(ctx context.Context, db TxBeginner, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) (err error) {
	if db == nil {
		return errors.New("transaction provider missing")
	}
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetLockTimeout bounds how long statements in tx wait for row locks.
// A zero timeout leaves the server default in place.
func SetLockTimeout(ctx context.Context, tx sqlx.ExecerContext, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}
	return nil
}

// ReadSnapshot is the isolation used for multi-table aggregate reads.
var ReadSnapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
)

// IsContention reports serialization failures, deadlocks, and lock timeouts.
func IsContention(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == codeUniqueViolation
}
