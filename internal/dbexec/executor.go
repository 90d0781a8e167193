// Package dbexec provides database query execution abstractions.
// Catalog initialization runs each discovery task on a short-lived scoped
// connection; request-time callers execute through the same interface.
package dbexec

import (
	"context"
	"database/sql"
	"fmt"
)

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Reducer consumes a result set row by row and accumulates it into a
// caller-owned structure. The executor owns cursor cleanup.
type Reducer func(rows Rows) error

// QueryExecutor abstracts SQL execution so callers can swap in scoped or
// instrumented behavior.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	// QueryReduce runs a query and feeds the result set to reduce,
	// closing the cursor and surfacing iteration errors afterwards.
	QueryReduce(ctx context.Context, query string, reduce Reducer, args ...any) error
}

// StandardExecutor executes queries directly against a database handle.
type StandardExecutor struct {
	db *sql.DB
}

// NewStandardExecutor creates an executor that runs queries directly against
// the database handle's pool.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}

func (e *StandardExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.ExecContext(ctx, query, args...)
}

func (e *StandardExecutor) QueryReduce(ctx context.Context, query string, reduce Reducer, args ...any) error {
	rows, err := e.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return reduceRows(rows, reduce)
}

// WithScopedConnection checks a single connection out of the pool, runs fn
// against it, and returns the connection regardless of outcome. The
// connection is never shared across tasks.
func (e *StandardExecutor) WithScopedConnection(ctx context.Context, fn func(exec QueryExecutor) error) error {
	if e.db == nil {
		return sql.ErrConnDone
	}
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire scoped connection: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()
	return fn(&connExecutor{conn: conn})
}

// connExecutor pins execution to one checked-out connection.
type connExecutor struct {
	conn *sql.Conn
}

func (e *connExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return e.conn.QueryContext(ctx, query, args...)
}

func (e *connExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.conn.ExecContext(ctx, query, args...)
}

func (e *connExecutor) QueryReduce(ctx context.Context, query string, reduce Reducer, args ...any) error {
	rows, err := e.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return reduceRows(rows, reduce)
}

func reduceRows(rows Rows, reduce Reducer) error {
	defer func() {
		_ = rows.Close()
	}()
	if err := reduce(rows); err != nil {
		return err
	}
	return rows.Err()
}
