package fkresolve

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sqlgateway/internal/dbexec"
	"sqlgateway/internal/engine"
)

// DiscoverForeignKeys issues one batched metadata query across all given
// tables and groups the per-column rows into merged definitions: rows
// sharing the same ordered table pair contribute to a single
// ForeignKeyDefinition, with columns appended in row order.
func DiscoverForeignKeys(ctx context.Context, exec dbexec.QueryExecutor, eng engine.Engine, tables []engine.TableID) (map[TablePair]*ForeignKeyDefinition, error) {
	discovered := make(map[TablePair]*ForeignKeyDefinition)
	if len(tables) == 0 {
		return discovered, nil
	}

	ctx, span := startSpan(ctx, "fkresolve.discover_foreign_keys",
		attribute.Int("db.table_count", len(tables)),
	)
	defer span.End()

	query, args := eng.ForeignKeysQuery(tables)

	reduce := func(rows dbexec.Rows) error {
		for rows.Next() {
			var referencingSchema, referencingTable string
			var referencedSchema, referencedTable string
			var referencingColumn, referencedColumn string
			if err := rows.Scan(&referencingSchema, &referencingTable,
				&referencedSchema, &referencedTable,
				&referencingColumn, &referencedColumn); err != nil {
				return err
			}
			pair := TablePair{
				Referencing: engine.TableID{Schema: referencingSchema, Name: referencingTable},
				Referenced:  engine.TableID{Schema: referencedSchema, Name: referencedTable},
			}
			def, ok := discovered[pair]
			if !ok {
				def = &ForeignKeyDefinition{Pair: pair}
				discovered[pair] = def
			}
			def.ReferencingColumns = append(def.ReferencingColumns, referencingColumn)
			def.ReferencedColumns = append(def.ReferencedColumns, referencedColumn)
		}
		return nil
	}

	if err := exec.QueryReduce(ctx, query, reduce, args...); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to discover foreign keys: %w", err)
	}
	return discovered, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("sqlgateway/fkresolve")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
