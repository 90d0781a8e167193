package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig    `mapstructure:"database"`
	Runtime  RuntimeConfig     `mapstructure:"runtime"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	Entities map[string]Entity `mapstructure:"entities"`
}

// DatabaseConfig holds database connection parameters.
type DatabaseConfig struct {
	// Engine selects the database engine kind: mysql, postgresql, or sqlite.
	Engine string `mapstructure:"engine"`
	// ConnectionString is a complete driver DSN. Configured via "dsn" in
	// YAML or the SQLGW_DATABASE_DSN env var.
	ConnectionString string `mapstructure:"dsn"`
	// ConnectionStringFile is a path to a file containing the DSN
	// (for secrets management).
	ConnectionStringFile string `mapstructure:"dsn_file"`

	// Connection pool settings. Pool.MaxOpen also bounds the number of
	// concurrent metadata discovery tasks during catalog initialization.
	Pool PoolConfig `mapstructure:"pool"`

	// ConnectionTimeout is the max time to wait for the initial catalog build.
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
}

// PoolConfig holds connection pool parameters.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// RuntimeConfig holds settings for the exposed request surfaces.
type RuntimeConfig struct {
	// GraphQLEnabled turns on GraphQL exposure. When set, every exposed
	// column name is validated against GraphQL reserved-name rules during
	// catalog initialization.
	GraphQLEnabled bool `mapstructure:"graphql_enabled"`
	// RESTEnabled turns on REST exposure and REST path collision checks.
	RESTEnabled bool `mapstructure:"rest_enabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// ObjectKind classifies the physical database object behind an entity.
type ObjectKind string

const (
	ObjectKindTable           ObjectKind = "table"
	ObjectKindView            ObjectKind = "view"
	ObjectKindStoredProcedure ObjectKind = "stored-procedure"
)

// ParseObjectKind parses a configured object kind. An empty value defaults
// to table.
func ParseObjectKind(s string) (ObjectKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return ObjectKindTable, nil
	case "view":
		return ObjectKindView, nil
	case "stored-procedure", "procedure":
		return ObjectKindStoredProcedure, nil
	default:
		return "", fmt.Errorf("unknown object kind %q", s)
	}
}

// Cardinality is the declared multiplicity of the target side of a relationship.
type Cardinality string

const (
	// CardinalityOne declares the target side holds at most one row.
	CardinalityOne Cardinality = "one"
	// CardinalityMany declares the target side holds many rows.
	CardinalityMany Cardinality = "many"
)

// Entity describes one configured logical object exposed to callers.
type Entity struct {
	Source        EntitySource            `mapstructure:"source"`
	REST          EntityRESTConfig        `mapstructure:"rest"`
	Relationships map[string]Relationship `mapstructure:"relationships"`
	// Mappings maps backing column names to exposed field names.
	// Unmapped columns default to an identity mapping.
	Mappings map[string]string `mapstructure:"mappings"`
}

// EntitySource describes the physical database object behind an entity.
type EntitySource struct {
	// Object is the source name, optionally schema-qualified ("dbo.books").
	Object string `mapstructure:"object"`
	// Type is the object kind: table (default), view, or stored-procedure.
	Type string `mapstructure:"type"`
	// KeyFields overrides primary key discovery. Required for views on
	// engines that do not expose view key metadata.
	KeyFields []string `mapstructure:"key_fields"`
	// Parameters declares stored procedure parameter defaults.
	Parameters map[string]any `mapstructure:"parameters"`
}

// EntityRESTConfig holds per-entity REST exposure settings.
type EntityRESTConfig struct {
	// Path overrides the REST collection path. Defaults to the entity name.
	Path string `mapstructure:"path"`
}

// Relationship declares a configured relationship to another entity.
type Relationship struct {
	Cardinality  string `mapstructure:"cardinality"`
	TargetEntity string `mapstructure:"target_entity"`
	// SourceFields/TargetFields are the ordered column lists joining the
	// two entities. Empty lists are filled from database foreign keys.
	SourceFields []string `mapstructure:"source_fields"`
	TargetFields []string `mapstructure:"target_fields"`
	// LinkingObject names a junction table mediating a many-to-many
	// relationship, with its ordered FK column lists toward each side.
	LinkingObject       string   `mapstructure:"linking_object"`
	LinkingSourceFields []string `mapstructure:"linking_source_fields"`
	LinkingTargetFields []string `mapstructure:"linking_target_fields"`
}

// ParseCardinality parses a declared relationship cardinality.
func ParseCardinality(s string) (Cardinality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one":
		return CardinalityOne, nil
	case "many":
		return CardinalityMany, nil
	default:
		return "", fmt.Errorf("unknown cardinality %q", s)
	}
}

// RESTPath returns the effective REST collection path for an entity.
func (e Entity) RESTPath(entityName string) string {
	if e.REST.Path != "" {
		return strings.Trim(e.REST.Path, "/")
	}
	return entityName
}
