package catalog

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/config"
	"sqlgateway/internal/dbexec"
	"sqlgateway/internal/engine"
)

// populateColumns discovers column, primary key, and procedure parameter
// metadata for every distinct object. Discovery for distinct objects is
// independent, so the tasks run concurrently, bounded by the connection
// pool limit, each on its own short-lived scoped connection. The first
// failure cancels the remaining tasks and aborts the build.
func (b *Builder) populateColumns(ctx context.Context) error {
	if b.phase != PhaseObjectsDiscovered {
		return apperr.Initialization("cannot populate columns in phase %s", b.phase)
	}

	ctx, span := startSpan(ctx, "catalog.populate_columns",
		attribute.Int("db.object_count", len(b.objects)),
	)
	defer span.End()

	limit := b.cfg.Database.Pool.MaxOpen
	if limit <= 0 {
		limit = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for _, obj := range b.objects {
		group.Go(func() error {
			return b.exec.WithScopedConnection(ctx, func(exec dbexec.QueryExecutor) error {
				if obj.Kind == config.ObjectKindStoredProcedure {
					return b.loadProcedureParameters(ctx, exec, obj)
				}
				if err := b.loadColumns(ctx, exec, obj); err != nil {
					return err
				}
				return b.loadPrimaryKey(ctx, exec, obj)
			})
		})
	}

	if err := group.Wait(); err != nil {
		recordSpanError(span, err)
		return err
	}
	return b.advance(PhaseObjectsDiscovered, PhaseColumnsPopulated)
}

func (b *Builder) loadColumns(ctx context.Context, exec dbexec.QueryExecutor, obj *DatabaseObject) error {
	ctx, span := startSpan(ctx, "catalog.load_columns",
		attribute.String("db.object", obj.ID.String()),
	)
	defer span.End()

	query, args := b.eng.ColumnsQuery(obj.ID)
	reduce := func(rows dbexec.Rows) error {
		for rows.Next() {
			var name, nativeType, isNullable, extra string
			var columnDefault sql.NullString
			if err := rows.Scan(&name, &nativeType, &isNullable, &columnDefault, &extra); err != nil {
				return err
			}
			extraLower := strings.ToLower(extra)
			col := &ColumnDefinition{
				Type:       b.eng.MapNativeType(nativeType),
				NativeType: nativeType,
				Nullable:   strings.EqualFold(isNullable, "YES"),
				AutoGenerated: strings.Contains(extraLower, "auto_increment") ||
					strings.Contains(extraLower, "auto_random") ||
					strings.Contains(extraLower, "generated"),
			}
			if columnDefault.Valid {
				col.HasDefault = true
				col.Default = columnDefault.String
			}
			obj.Source.Columns[name] = col
			obj.Source.ColumnOrder = append(obj.Source.ColumnOrder, name)
		}
		return nil
	}

	if err := exec.QueryReduce(ctx, query, reduce, args...); err != nil {
		recordSpanError(span, err)
		return apperr.InitializationWrap(err, "failed to load columns for %s", obj.ID)
	}
	if len(obj.Source.Columns) == 0 {
		err := apperr.Initialization("object %s does not exist or has no columns", obj.ID)
		recordSpanError(span, err)
		return err
	}
	b.logger.Debug("columns loaded", "object", obj.ID.String(), "count", len(obj.Source.Columns))
	return nil
}

// loadPrimaryKey reads the object's primary key from the database, falling
// back to a configuration-declared key-field override. An object left
// without a key cannot be addressed by point operations, so the build fails.
func (b *Builder) loadPrimaryKey(ctx context.Context, exec dbexec.QueryExecutor, obj *DatabaseObject) error {
	ctx, span := startSpan(ctx, "catalog.load_primary_key",
		attribute.String("db.object", obj.ID.String()),
	)
	defer span.End()

	query, args := b.eng.PrimaryKeyQuery(obj.ID)
	var primaryKey []string
	reduce := func(rows dbexec.Rows) error {
		for rows.Next() {
			var column string
			if err := rows.Scan(&column); err != nil {
				return err
			}
			primaryKey = append(primaryKey, column)
		}
		return nil
	}
	if err := exec.QueryReduce(ctx, query, reduce, args...); err != nil {
		recordSpanError(span, err)
		return apperr.InitializationWrap(err, "failed to load primary key for %s", obj.ID)
	}

	if len(primaryKey) == 0 {
		primaryKey = b.keyFieldOverride(obj)
	}
	if len(primaryKey) == 0 {
		err := apperr.Initialization(
			"no primary key found for %s and no key fields configured", obj.ID)
		recordSpanError(span, err)
		return err
	}
	for _, column := range primaryKey {
		if _, ok := obj.Source.Columns[column]; !ok {
			err := apperr.Initialization(
				"key column %q does not exist in %s", column, obj.ID)
			recordSpanError(span, err)
			return err
		}
	}
	obj.Source.PrimaryKey = primaryKey
	return nil
}

// keyFieldOverride returns the configured key fields of the first entity
// (sorted by name) backed by this object that declares any.
func (b *Builder) keyFieldOverride(obj *DatabaseObject) []string {
	var names []string
	for entityName, candidate := range b.entityObjects {
		if candidate == obj && len(b.cfg.Entities[entityName].Source.KeyFields) > 0 {
			names = append(names, entityName)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return append([]string(nil), b.cfg.Entities[names[0]].Source.KeyFields...)
}

// loadProcedureParameters reads parameter metadata from the engine's
// routine catalog and merges configured defaults. A configured procedure
// missing from the database fails initialization.
func (b *Builder) loadProcedureParameters(ctx context.Context, exec dbexec.QueryExecutor, obj *DatabaseObject) error {
	ctx, span := startSpan(ctx, "catalog.load_procedure_parameters",
		attribute.String("db.object", obj.ID.String()),
	)
	defer span.End()

	query, args := b.eng.ProcedureParametersQuery(obj.ID)
	found := false
	reduce := func(rows dbexec.Rows) error {
		for rows.Next() {
			var name, nativeType string
			if err := rows.Scan(&name, &nativeType); err != nil {
				return err
			}
			found = true
			param, ok := obj.Procedure.Parameters[name]
			if !ok {
				param = &ParameterDefinition{}
				obj.Procedure.Parameters[name] = param
			}
			param.Type = b.eng.MapNativeType(nativeType)
		}
		return nil
	}
	if err := exec.QueryReduce(ctx, query, reduce, args...); err != nil {
		recordSpanError(span, err)
		return apperr.InitializationWrap(err, "failed to load parameters for stored procedure %s", obj.ID)
	}
	if !found {
		if exists, err := b.procedureExists(ctx, exec, obj.ID); err != nil {
			recordSpanError(span, err)
			return apperr.InitializationWrap(err, "failed to verify stored procedure %s", obj.ID)
		} else if !exists {
			err := apperr.Initialization("stored procedure %s not found in the database", obj.ID)
			recordSpanError(span, err)
			return err
		}
	}
	return nil
}

// procedureExists distinguishes a parameterless procedure from a missing one.
func (b *Builder) procedureExists(ctx context.Context, exec dbexec.QueryExecutor, id engine.TableID) (bool, error) {
	query, args := b.eng.ProcedureExistsQuery(id)
	exists := false
	reduce := func(rows dbexec.Rows) error {
		exists = rows.Next()
		return nil
	}
	if err := exec.QueryReduce(ctx, query, reduce, args...); err != nil {
		return false, err
	}
	return exists, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("sqlgateway/catalog")
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
