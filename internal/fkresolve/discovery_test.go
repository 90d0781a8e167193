package fkresolve

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"sqlgateway/internal/dbexec"
	"sqlgateway/internal/engine"
)

func newMockExecutor(t *testing.T) (*dbexec.StandardExecutor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return dbexec.NewStandardExecutor(db), mock
}

var fkColumns = []string{
	"REFERENCING_SCHEMA", "TABLE_NAME",
	"REFERENCED_SCHEMA", "REFERENCED_TABLE_NAME",
	"COLUMN_NAME", "REFERENCED_COLUMN_NAME",
}

func TestDiscoverForeignKeysGroupsCompositeKeys(t *testing.T) {
	exec, mock := newMockExecutor(t)
	eng, err := engine.ForKind(engine.KindMySQL)
	if err != nil {
		t.Fatal(err)
	}

	// Three rows: a two-column composite key plus a single-column key.
	mock.ExpectQuery("KEY_COLUMN_USAGE").
		WithArgs("order_items", "orders").
		WillReturnRows(sqlmock.NewRows(fkColumns).
			AddRow("", "order_items", "", "orders", "order_id", "id").
			AddRow("", "order_items", "", "orders", "order_region", "region").
			AddRow("", "order_items", "", "products", "product_id", "id"))

	tables := []engine.TableID{{Name: "order_items"}, {Name: "orders"}}
	discovered, err := DiscoverForeignKeys(context.Background(), exec, eng, tables)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(discovered) != 2 {
		t.Fatalf("expected 2 grouped definitions, got %d", len(discovered))
	}

	composite := discovered[TablePair{
		Referencing: engine.TableID{Name: "order_items"},
		Referenced:  engine.TableID{Name: "orders"},
	}]
	if composite == nil {
		t.Fatal("missing order_items->orders definition")
	}
	// Column order follows row order: constraint then ordinal.
	wantReferencing := []string{"order_id", "order_region"}
	wantReferenced := []string{"id", "region"}
	for i := range wantReferencing {
		if composite.ReferencingColumns[i] != wantReferencing[i] {
			t.Errorf("referencing[%d] = %q, want %q", i, composite.ReferencingColumns[i], wantReferencing[i])
		}
		if composite.ReferencedColumns[i] != wantReferenced[i] {
			t.Errorf("referenced[%d] = %q, want %q", i, composite.ReferencedColumns[i], wantReferenced[i])
		}
	}

	single := discovered[TablePair{
		Referencing: engine.TableID{Name: "order_items"},
		Referenced:  engine.TableID{Name: "products"},
	}]
	if single == nil || len(single.ReferencingColumns) != 1 {
		t.Fatalf("expected single-column definition, got %+v", single)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDiscoverForeignKeysEmptyTableList(t *testing.T) {
	exec, mock := newMockExecutor(t)
	eng, err := engine.ForKind(engine.KindMySQL)
	if err != nil {
		t.Fatal(err)
	}

	// No tables means no query at all.
	discovered, err := DiscoverForeignKeys(context.Background(), exec, eng, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(discovered) != 0 {
		t.Errorf("expected empty result, got %d", len(discovered))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDiscoverForeignKeysQueryFailure(t *testing.T) {
	exec, mock := newMockExecutor(t)
	eng, err := engine.ForKind(engine.KindMySQL)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectQuery("KEY_COLUMN_USAGE").
		WillReturnError(errors.New("connection reset"))

	_, err = DiscoverForeignKeys(context.Background(), exec, eng,
		[]engine.TableID{{Name: "books"}})
	if err == nil {
		t.Fatal("expected error")
	}
}
