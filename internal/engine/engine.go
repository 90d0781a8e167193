// Package engine provides per-database-engine capabilities: identifier
// quoting, native type mapping, and the SQL text used to discover columns,
// primary keys, foreign keys, and stored procedure parameters. One concrete
// engine is selected at startup from the configured engine kind.
package engine

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/sqltype"
)

// Kind identifies a supported database engine.
type Kind string

const (
	KindMySQL      Kind = "mysql"
	KindPostgreSQL Kind = "postgresql"
	KindSQLite     Kind = "sqlite"
)

// KindFromString parses a configured engine kind.
func KindFromString(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql":
		return KindMySQL, nil
	case "postgresql", "postgres":
		return KindPostgreSQL, nil
	case "sqlite", "sqlite3":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("unsupported engine kind %q", s)
	}
}

// TableID identifies a physical database object by schema and name.
// Schema is empty for engines without a schema concept.
type TableID struct {
	Schema string
	Name   string
}

func (t TableID) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Engine is the capability surface the catalog loader and query builder
// depend on. Implementations are stateless and safe for concurrent use.
type Engine interface {
	Kind() Kind
	// DriverName is the database/sql driver this engine connects through.
	DriverName() string
	SupportsSchemas() bool
	DefaultSchemaName() string
	SupportsProcedures() bool
	QuoteIdentifier(name string) string
	PlaceholderFormat() sq.PlaceholderFormat
	MapNativeType(nativeType string) sqltype.LogicalType

	// ColumnsQuery returns SQL producing one row per column:
	// (column_name, data_type, is_nullable YES/NO, column_default, extra)
	// in ordinal position order. extra carries auto-generation markers.
	ColumnsQuery(table TableID) (string, []any)
	// PrimaryKeyQuery returns SQL producing ordered primary key column names.
	PrimaryKeyQuery(table TableID) (string, []any)
	// ForeignKeysQuery returns one batched SQL statement over all given
	// tables, producing one row per FK column pair:
	// (referencing_schema, referencing_table, referenced_schema,
	// referenced_table, referencing_column, referenced_column)
	// ordered by constraint then column ordinal.
	ForeignKeysQuery(tables []TableID) (string, []any)
	// ProcedureParametersQuery returns SQL producing
	// (parameter_name, data_type) rows in ordinal order.
	ProcedureParametersQuery(proc TableID) (string, []any)
	// ProcedureExistsQuery returns SQL producing at least one row when the
	// procedure exists, distinguishing a parameterless procedure from a
	// missing one.
	ProcedureExistsQuery(proc TableID) (string, []any)
}

// ForKind returns the concrete engine for a configured kind.
func ForKind(kind Kind) (Engine, error) {
	switch kind {
	case KindMySQL:
		return mysqlEngine{}, nil
	case KindPostgreSQL:
		return postgresEngine{}, nil
	case KindSQLite:
		return sqliteEngine{}, nil
	default:
		return nil, fmt.Errorf("unsupported engine kind %q", kind)
	}
}

// ParseSourceName splits a configured source name into schema and object
// name under the engine's schema rules. A non-empty schema qualifier for an
// engine without schema support fails initialization.
func ParseSourceName(e Engine, source string) (TableID, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return TableID{}, apperr.ConfigValidation("source name must not be empty")
	}
	parts := strings.Split(source, ".")
	switch len(parts) {
	case 1:
		return TableID{Schema: e.DefaultSchemaName(), Name: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return TableID{}, apperr.Initialization("source name %q has an empty schema or object part", source)
		}
		if !e.SupportsSchemas() {
			return TableID{}, apperr.Initialization(
				"source name %q has a schema qualifier, but engine %s has no schema support", source, e.Kind())
		}
		return TableID{Schema: parts[0], Name: parts[1]}, nil
	default:
		return TableID{}, apperr.Initialization("source name %q has too many qualifier parts", source)
	}
}

// pairPlaceholders renders "(?, ?), (?, ?), ..." tuples and the matching
// argument list for an IN clause over (schema, table) pairs.
func pairPlaceholders(tables []TableID, placeholder func(n int) string) (string, []any) {
	tuples := make([]string, 0, len(tables))
	args := make([]any, 0, len(tables)*2)
	n := 1
	for _, t := range tables {
		tuples = append(tuples, "("+placeholder(n)+", "+placeholder(n+1)+")")
		args = append(args, t.Schema, t.Name)
		n += 2
	}
	return strings.Join(tuples, ", "), args
}

func questionPlaceholder(int) string { return "?" }

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }
