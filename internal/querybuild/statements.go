package querybuild

import (
	"sort"

	sq "github.com/Masterminds/squirrel"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/catalog"
	"sqlgateway/internal/engine"
	"sqlgateway/internal/sqltype"
)

// SQLStatement is a parameterized statement ready for execution.
type SQLStatement struct {
	SQL  string
	Args []any
}

// Assignment is one resolved column assignment of an insert or update.
type Assignment struct {
	Column string
	Value  any
}

// PlanDelete builds a parameterized DELETE addressing one row by primary
// key. The same request with a null key value fails with BadRequest before
// any statement is constructed.
func PlanDelete(eng engine.Engine, snap *catalog.Snapshot, entity string, params map[string]any) (SQLStatement, error) {
	predicates, err := BuildKeyPredicates(snap, entity, params)
	if err != nil {
		return SQLStatement{}, err
	}
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return SQLStatement{}, err
	}

	builder := sq.Delete(qualifiedName(eng, obj)).
		Where(predicateConjunction(eng, predicates)).
		PlaceholderFormat(eng.PlaceholderFormat())

	query, args, err := builder.ToSql()
	if err != nil {
		return SQLStatement{}, err
	}
	return SQLStatement{SQL: query, Args: args}, nil
}

// PlanSelectByKey builds a parameterized point lookup by primary key,
// selecting the entity's columns in ordinal order.
func PlanSelectByKey(eng engine.Engine, snap *catalog.Snapshot, entity string, params map[string]any) (SQLStatement, error) {
	predicates, err := BuildKeyPredicates(snap, entity, params)
	if err != nil {
		return SQLStatement{}, err
	}
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return SQLStatement{}, err
	}

	columns := make([]string, len(obj.Source.ColumnOrder))
	for i, name := range obj.Source.ColumnOrder {
		columns[i] = eng.QuoteIdentifier(name)
	}

	builder := sq.Select(columns...).
		From(qualifiedName(eng, obj)).
		Where(predicateConjunction(eng, predicates)).
		PlaceholderFormat(eng.PlaceholderFormat())

	query, args, err := builder.ToSql()
	if err != nil {
		return SQLStatement{}, err
	}
	return SQLStatement{SQL: query, Args: args}, nil
}

// PlanUpdate builds a parameterized UPDATE of one row by primary key from
// exposed field names.
func PlanUpdate(eng engine.Engine, snap *catalog.Snapshot, entity string, set map[string]any, keyParams map[string]any) (SQLStatement, error) {
	if len(set) == 0 {
		return SQLStatement{}, apperr.BadRequest("update on entity %q has no fields to set", entity)
	}
	assignments, err := ResolveAssignments(snap, entity, set)
	if err != nil {
		return SQLStatement{}, err
	}
	predicates, err := BuildKeyPredicates(snap, entity, keyParams)
	if err != nil {
		return SQLStatement{}, err
	}
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return SQLStatement{}, err
	}

	builder := sq.Update(qualifiedName(eng, obj))
	for _, a := range assignments {
		builder = builder.Set(eng.QuoteIdentifier(a.Column), a.Value)
	}
	builder = builder.
		Where(predicateConjunction(eng, predicates)).
		PlaceholderFormat(eng.PlaceholderFormat())

	query, args, err := builder.ToSql()
	if err != nil {
		return SQLStatement{}, err
	}
	return SQLStatement{SQL: query, Args: args}, nil
}

// PlanInsert builds a parameterized single-row INSERT from exposed field
// names.
func PlanInsert(eng engine.Engine, snap *catalog.Snapshot, entity string, values map[string]any) (SQLStatement, error) {
	if len(values) == 0 {
		return SQLStatement{}, apperr.BadRequest("insert on entity %q has no values", entity)
	}
	assignments, err := ResolveAssignments(snap, entity, values)
	if err != nil {
		return SQLStatement{}, err
	}
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return SQLStatement{}, err
	}

	columns := make([]string, len(assignments))
	args := make([]any, len(assignments))
	for i, a := range assignments {
		columns[i] = eng.QuoteIdentifier(a.Column)
		args[i] = a.Value
	}

	builder := sq.Insert(qualifiedName(eng, obj)).
		Columns(columns...).
		Values(args...).
		PlaceholderFormat(eng.PlaceholderFormat())

	query, sqlArgs, err := builder.ToSql()
	if err != nil {
		return SQLStatement{}, err
	}
	return SQLStatement{SQL: query, Args: sqlArgs}, nil
}

// ResolveAssignments resolves exposed field names to backing columns and
// coerces each value to the column's declared type. Auto-generated columns
// are read-only and rejected. Assignments come back sorted by column name
// for deterministic SQL.
func ResolveAssignments(snap *catalog.Snapshot, entity string, values map[string]any) ([]Assignment, error) {
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return nil, err
	}

	assignments := make([]Assignment, 0, len(values))
	for field, value := range values {
		backing, ok := snap.TryGetBackingColumn(entity, field)
		if !ok {
			return nil, apperr.BadRequest("field %q cannot be resolved for entity %q", field, entity)
		}
		column := obj.Source.Columns[backing]
		if column.AutoGenerated {
			return nil, apperr.BadRequest(
				"field %q of entity %q is auto-generated and read-only", field, entity)
		}
		coerced, err := sqltype.Coerce(value, column.Type)
		if err != nil {
			return nil, apperr.BadRequest(
				"invalid value for field %q of entity %q: %v", field, entity, err)
		}
		if coerced == nil && !column.Nullable {
			return nil, apperr.BadRequest(
				"field %q of entity %q must not be null", field, entity)
		}
		assignments = append(assignments, Assignment{Column: backing, Value: coerced})
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Column < assignments[j].Column
	})
	return assignments, nil
}

// predicateConjunction renders key predicates as an ANDed squirrel
// expression with quoted column identifiers and bound values.
func predicateConjunction(eng engine.Engine, predicates []Predicate) sq.And {
	and := make(sq.And, 0, len(predicates))
	for _, p := range predicates {
		and = append(and, sq.Expr(
			eng.QuoteIdentifier(p.Left.Column.Name)+" "+p.Op.String()+" ?",
			p.Right.Param.Value,
		))
	}
	return and
}

func qualifiedName(eng engine.Engine, obj *catalog.DatabaseObject) string {
	if obj.ID.Schema == "" {
		return eng.QuoteIdentifier(obj.ID.Name)
	}
	return eng.QuoteIdentifier(obj.ID.Schema) + "." + eng.QuoteIdentifier(obj.ID.Name)
}

// CoerceProcedureParameters resolves a stored procedure call's parameters,
// applying configuration-declared defaults for omitted parameters and
// coercing supplied values to their discovered types.
func CoerceProcedureParameters(snap *catalog.Snapshot, entity string, supplied map[string]any) (map[string]any, error) {
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return nil, err
	}
	if obj.Procedure == nil {
		return nil, apperr.BadRequest("entity %q is not a stored procedure", entity)
	}

	out := make(map[string]any, len(obj.Procedure.Parameters))
	for name, param := range obj.Procedure.Parameters {
		value, ok := supplied[name]
		if !ok {
			if !param.HasConfigDefault {
				return nil, apperr.BadRequest(
					"parameter %q of stored procedure entity %q is missing", name, entity)
			}
			value = param.Default
		}
		coerced, err := sqltype.Coerce(value, param.Type)
		if err != nil {
			return nil, apperr.BadRequest(
				"invalid value for parameter %q of entity %q: %v", name, entity, err)
		}
		out[name] = coerced
	}
	for name := range supplied {
		if _, ok := obj.Procedure.Parameters[name]; !ok {
			return nil, apperr.BadRequest(
				"parameter %q is not declared by stored procedure entity %q", name, entity)
		}
	}
	return out, nil
}
