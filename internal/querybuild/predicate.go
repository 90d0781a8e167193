// Package querybuild translates caller-supplied field/value maps into
// parameterized predicate trees and mutation statements, using the resolved
// catalog snapshot for name resolution and typing. It holds no state of its
// own and is safe for unlimited concurrent invocation.
package querybuild

import (
	"sqlgateway/internal/apperr"
	"sqlgateway/internal/catalog"
	"sqlgateway/internal/sqltype"
)

// Column references one physical column.
type Column struct {
	Schema string
	Object string
	Name   string
}

// Operator is a predicate comparison operator.
type Operator int

const (
	// OpEqual is the only operator key predicates need.
	OpEqual Operator = iota
)

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	default:
		return "?"
	}
}

// Parameter is a bound query parameter. Values are always bound, never
// inlined as literals.
type Parameter struct {
	Name  string
	Value any
}

// Operand is either a column reference or a bound parameter.
type Operand struct {
	Column *Column
	Param  *Parameter
}

// Predicate compares two operands. Key predicates are combined with
// logical AND.
type Predicate struct {
	Left  Operand
	Op    Operator
	Right Operand
}

// BuildKeyPredicates resolves a field/value map against an entity's primary
// key and returns one bound equality predicate per key column, in key
// order. Composite keys are fully supported. All violations are caller
// errors:
//
//   - a field name that does not resolve to a backing column,
//   - a field that is not part of the primary key,
//   - a missing primary key column,
//   - a null value for a key column,
//   - a value that cannot be coerced to the column's declared type.
func BuildKeyPredicates(snap *catalog.Snapshot, entity string, params map[string]any) ([]Predicate, error) {
	obj, err := snap.GetDatabaseObject(entity)
	if err != nil {
		return nil, err
	}
	source := obj.Source

	keyValues := make(map[string]any, len(params))
	for field, value := range params {
		backing, ok := snap.TryGetBackingColumn(entity, field)
		if !ok {
			return nil, apperr.BadRequest("field %q cannot be resolved for entity %q", field, entity)
		}
		if !isPrimaryKeyColumn(source, backing) {
			return nil, apperr.BadRequest(
				"field %q is not part of the primary key of entity %q", field, entity)
		}
		if value == nil {
			return nil, apperr.BadRequest("primary key value must not be null")
		}
		keyValues[backing] = value
	}

	predicates := make([]Predicate, 0, len(source.PrimaryKey))
	for _, keyColumn := range source.PrimaryKey {
		value, ok := keyValues[keyColumn]
		if !ok {
			exposed, found := snap.TryGetExposedColumnName(entity, keyColumn)
			if !found {
				exposed = keyColumn
			}
			return nil, apperr.BadRequest(
				"primary key field %q of entity %q is missing", exposed, entity)
		}
		column := source.Columns[keyColumn]
		coerced, err := sqltype.Coerce(value, column.Type)
		if err != nil {
			return nil, apperr.BadRequest(
				"invalid value for field %q of entity %q: %v", keyColumn, entity, err)
		}
		predicates = append(predicates, Predicate{
			Left: Operand{Column: &Column{
				Schema: obj.ID.Schema,
				Object: obj.ID.Name,
				Name:   keyColumn,
			}},
			Op:    OpEqual,
			Right: Operand{Param: &Parameter{Name: keyColumn, Value: coerced}},
		})
	}
	return predicates, nil
}

func isPrimaryKeyColumn(source *catalog.SourceDefinition, column string) bool {
	for _, key := range source.PrimaryKey {
		if key == column {
			return true
		}
	}
	return false
}
