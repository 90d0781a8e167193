package engine

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"sqlgateway/internal/sqltype"
)

// postgresEngine targets PostgreSQL. Objects live under a schema namespace;
// unqualified source names resolve to the "public" schema.
type postgresEngine struct{}

func (postgresEngine) Kind() Kind                { return KindPostgreSQL }
func (postgresEngine) DriverName() string        { return "pgx" }
func (postgresEngine) SupportsSchemas() bool     { return true }
func (postgresEngine) DefaultSchemaName() string { return "public" }
func (postgresEngine) SupportsProcedures() bool  { return true }

func (postgresEngine) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresEngine) PlaceholderFormat() sq.PlaceholderFormat { return sq.Dollar }

func (postgresEngine) MapNativeType(nativeType string) sqltype.LogicalType {
	return sqltype.MapNativeType(nativeType)
}

func (postgresEngine) ColumnsQuery(table TableID) (string, []any) {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			column_default,
			CASE
				WHEN is_identity = 'YES' OR column_default LIKE 'nextval(%' THEN 'auto_increment'
				WHEN is_generated = 'ALWAYS' THEN 'generated'
				ELSE ''
			END AS extra
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	return query, []any{table.Schema, table.Name}
}

func (postgresEngine) PrimaryKeyQuery(table TableID) (string, []any) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.constraint_schema = tc.constraint_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`
	return query, []any{table.Schema, table.Name}
}

// ForeignKeysQuery uses pg_constraint instead of information_schema because
// constraint_column_usage does not preserve the positional pairing of
// composite foreign key columns.
func (postgresEngine) ForeignKeysQuery(tables []TableID) (string, []any) {
	tuples, args := pairPlaceholders(tables, dollarPlaceholder)
	query := `
		SELECT
			ns.nspname AS referencing_schema,
			cl.relname AS referencing_table,
			fns.nspname AS referenced_schema,
			fcl.relname AS referenced_table,
			att.attname AS referencing_column,
			fatt.attname AS referenced_column
		FROM pg_constraint c
		CROSS JOIN LATERAL unnest(c.conkey) WITH ORDINALITY AS sk(attnum, ord)
		JOIN LATERAL unnest(c.confkey) WITH ORDINALITY AS fk(attnum, ord)
			ON fk.ord = sk.ord
		JOIN pg_class cl ON cl.oid = c.conrelid
		JOIN pg_namespace ns ON ns.oid = cl.relnamespace
		JOIN pg_class fcl ON fcl.oid = c.confrelid
		JOIN pg_namespace fns ON fns.oid = fcl.relnamespace
		JOIN pg_attribute att
			ON att.attrelid = c.conrelid AND att.attnum = sk.attnum
		JOIN pg_attribute fatt
			ON fatt.attrelid = c.confrelid AND fatt.attnum = fk.attnum
		WHERE c.contype = 'f'
			AND (ns.nspname, cl.relname) IN (` + tuples + `)
		ORDER BY c.conname, sk.ord
	`
	return query, args
}

func (postgresEngine) ProcedureParametersQuery(proc TableID) (string, []any) {
	query := `
		SELECT parameter_name, data_type
		FROM information_schema.parameters
		WHERE specific_schema = $1
			AND specific_name IN (
				SELECT specific_name
				FROM information_schema.routines
				WHERE routine_schema = $1 AND routine_name = $2
			)
			AND parameter_name IS NOT NULL
		ORDER BY ordinal_position
	`
	return query, []any{proc.Schema, proc.Name}
}

func (postgresEngine) ProcedureExistsQuery(proc TableID) (string, []any) {
	query := `
		SELECT routine_name
		FROM information_schema.routines
		WHERE routine_schema = $1 AND routine_name = $2
	`
	return query, []any{proc.Schema, proc.Name}
}
