package dbexec

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockExecutor(t *testing.T) (*StandardExecutor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewStandardExecutor(db), mock
}

func TestQueryReduce(t *testing.T) {
	exec, mock := newMockExecutor(t)

	mock.ExpectQuery("SELECT name FROM widgets").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("alpha").
			AddRow("beta"))

	var names []string
	err := exec.QueryReduce(context.Background(), "SELECT name FROM widgets", func(rows Rows) error {
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("got %v", names)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestQueryReducePropagatesReducerError(t *testing.T) {
	exec, mock := newMockExecutor(t)

	mock.ExpectQuery("SELECT name FROM widgets").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("alpha"))

	boom := errors.New("boom")
	err := exec.QueryReduce(context.Background(), "SELECT name FROM widgets", func(Rows) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected reducer error, got %v", err)
	}
}

func TestQueryReducePropagatesRowError(t *testing.T) {
	exec, mock := newMockExecutor(t)

	rowErr := errors.New("cursor lost")
	mock.ExpectQuery("SELECT name FROM widgets").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("alpha").
			RowError(0, rowErr))

	err := exec.QueryReduce(context.Background(), "SELECT name FROM widgets", func(rows Rows) error {
		for rows.Next() {
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected iteration error")
	}
}

func TestWithScopedConnection(t *testing.T) {
	exec, mock := newMockExecutor(t)

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	err := exec.WithScopedConnection(context.Background(), func(scoped QueryExecutor) error {
		return scoped.QueryReduce(context.Background(), "SELECT 1", func(rows Rows) error {
			if !rows.Next() {
				return errors.New("expected a row")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestNilDatabase(t *testing.T) {
	exec := NewStandardExecutor(nil)
	if _, err := exec.QueryContext(context.Background(), "SELECT 1"); err == nil {
		t.Error("expected error for nil database")
	}
	if err := exec.WithScopedConnection(context.Background(), func(QueryExecutor) error {
		return nil
	}); err == nil {
		t.Error("expected error for nil database")
	}
}
