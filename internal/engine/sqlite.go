package engine

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"sqlgateway/internal/sqltype"
)

// sqliteEngine targets SQLite. A database file is a single flat namespace:
// no schemas, no stored procedures.
type sqliteEngine struct{}

func (sqliteEngine) Kind() Kind                { return KindSQLite }
func (sqliteEngine) DriverName() string        { return "sqlite" }
func (sqliteEngine) SupportsSchemas() bool     { return false }
func (sqliteEngine) DefaultSchemaName() string { return "" }
func (sqliteEngine) SupportsProcedures() bool  { return false }

func (sqliteEngine) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteEngine) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (sqliteEngine) MapNativeType(nativeType string) sqltype.LogicalType {
	return sqltype.MapNativeType(nativeType)
}

func (sqliteEngine) ColumnsQuery(table TableID) (string, []any) {
	query := `
		SELECT
			name,
			type,
			CASE "notnull" WHEN 0 THEN 'YES' ELSE 'NO' END AS is_nullable,
			dflt_value,
			'' AS extra
		FROM pragma_table_info(?)
		ORDER BY cid
	`
	return query, []any{table.Name}
}

func (sqliteEngine) PrimaryKeyQuery(table TableID) (string, []any) {
	query := `
		SELECT name
		FROM pragma_table_info(?)
		WHERE pk > 0
		ORDER BY pk
	`
	return query, []any{table.Name}
}

// ForeignKeysQuery unions one pragma_foreign_key_list scan per table because
// SQLite has no cross-table foreign key catalog. A NULL "to" column means
// the constraint references the target's implicit primary key; those rows
// surface with an empty referenced column and are left to configuration.
func (sqliteEngine) ForeignKeysQuery(tables []TableID) (string, []any) {
	selects := make([]string, 0, len(tables))
	args := make([]any, 0, len(tables))
	for _, t := range tables {
		selects = append(selects, `
		SELECT
			'' AS referencing_schema,
			? AS referencing_table,
			'' AS referenced_schema,
			f."table" AS referenced_table,
			f."from" AS referencing_column,
			COALESCE(f."to", '') AS referenced_column,
			f.id AS constraint_id,
			f.seq AS ordinal
		FROM pragma_foreign_key_list(?) f`)
		args = append(args, t.Name, t.Name)
	}
	query := `
		SELECT referencing_schema, referencing_table, referenced_schema,
			referenced_table, referencing_column, referenced_column
		FROM (` + strings.Join(selects, " UNION ALL ") + `)
		ORDER BY referencing_table, constraint_id, ordinal
	`
	return query, args
}

func (sqliteEngine) ProcedureParametersQuery(proc TableID) (string, []any) {
	// SQLite has no stored procedures; config validation rejects procedure
	// entities for this engine before any query is issued.
	return "", nil
}

func (sqliteEngine) ProcedureExistsQuery(proc TableID) (string, []any) {
	return "", nil
}
