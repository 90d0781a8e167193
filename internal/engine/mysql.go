package engine

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"sqlgateway/internal/sqltype"
)

// mysqlEngine targets MySQL and MySQL-compatible servers. MySQL databases
// act as the top-level namespace, so the engine carries no separate schema
// concept; the connected database scopes every metadata query instead.
type mysqlEngine struct{}

func (mysqlEngine) Kind() Kind                { return KindMySQL }
func (mysqlEngine) DriverName() string        { return "mysql" }
func (mysqlEngine) SupportsSchemas() bool     { return false }
func (mysqlEngine) DefaultSchemaName() string { return "" }
func (mysqlEngine) SupportsProcedures() bool  { return true }

func (mysqlEngine) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlEngine) PlaceholderFormat() sq.PlaceholderFormat { return sq.Question }

func (mysqlEngine) MapNativeType(nativeType string) sqltype.LogicalType {
	return sqltype.MapNativeType(nativeType)
}

func (mysqlEngine) ColumnsQuery(table TableID) (string, []any) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	return query, []any{table.Name}
}

func (mysqlEngine) PrimaryKeyQuery(table TableID) (string, []any) {
	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
			AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`
	return query, []any{table.Name}
}

func (mysqlEngine) ForeignKeysQuery(tables []TableID) (string, []any) {
	names := make([]string, 0, len(tables))
	args := make([]any, 0, len(tables))
	for _, t := range tables {
		names = append(names, "?")
		args = append(args, t.Name)
	}
	query := `
		SELECT
			'' AS REFERENCING_SCHEMA,
			TABLE_NAME,
			'' AS REFERENCED_SCHEMA,
			REFERENCED_TABLE_NAME,
			COLUMN_NAME,
			REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE()
			AND REFERENCED_TABLE_NAME IS NOT NULL
			AND TABLE_NAME IN (` + strings.Join(names, ", ") + `)
		ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION
	`
	return query, args
}

func (mysqlEngine) ProcedureParametersQuery(proc TableID) (string, []any) {
	query := `
		SELECT PARAMETER_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.PARAMETERS
		WHERE SPECIFIC_SCHEMA = DATABASE()
			AND SPECIFIC_NAME = ?
			AND PARAMETER_NAME IS NOT NULL
		ORDER BY ORDINAL_POSITION
	`
	return query, []any{proc.Name}
}

func (mysqlEngine) ProcedureExistsQuery(proc TableID) (string, []any) {
	query := `
		SELECT ROUTINE_NAME
		FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = DATABASE() AND ROUTINE_NAME = ?
	`
	return query, []any{proc.Name}
}
