// Package catalog materializes the resolved schema model: one database
// object per distinct physical source, its column and key metadata, and the
// relationship definitions reconciled against the live database. The
// catalog is assembled once by a mutable Builder and published as an
// immutable Snapshot; request-time readers only ever see snapshots.
package catalog

import (
	"fmt"

	"sqlgateway/internal/config"
	"sqlgateway/internal/engine"
	"sqlgateway/internal/fkresolve"
	"sqlgateway/internal/sqltype"
)

// DatabaseObject is one physical database object. Entities sharing a source
// name share the identical DatabaseObject instance; objects are
// deduplicated by (schema, name).
type DatabaseObject struct {
	ID   engine.TableID
	Kind config.ObjectKind
	// Source holds the resolved schema description. Exactly one per object.
	Source *SourceDefinition
	// Procedure is non-nil for stored procedure objects.
	Procedure *StoredProcedureDefinition
}

// ColumnDefinition describes one column of a source.
type ColumnDefinition struct {
	Type       sqltype.LogicalType
	NativeType string
	Nullable   bool
	// AutoGenerated marks identity/auto-increment or generated columns.
	AutoGenerated bool
	HasDefault    bool
	Default       any
}

// SourceDefinition is the resolved schema description of an object.
type SourceDefinition struct {
	Columns map[string]*ColumnDefinition
	// ColumnOrder preserves ordinal column order for deterministic iteration.
	ColumnOrder []string
	// PrimaryKey is the ordered key column list. Non-empty for every table
	// and view once the catalog is ready.
	PrimaryKey []string
	// Relationships maps a source entity name to its resolved relationship
	// metadata. Aliased entities sharing this object each get their own key.
	Relationships map[string]*RelationshipMetadata
}

// RelationshipMetadata maps target entity names to their ordered resolved
// foreign key definitions.
type RelationshipMetadata struct {
	TargetForeignKeys map[string][]*fkresolve.ForeignKeyDefinition
}

// ParameterDefinition describes one stored procedure parameter.
type ParameterDefinition struct {
	Type             sqltype.LogicalType
	HasConfigDefault bool
	Default          any
}

// StoredProcedureDefinition describes a stored procedure's parameters.
// Result columns are populated separately from configuration mappings since
// procedure result shapes are not discoverable without execution.
type StoredProcedureDefinition struct {
	Parameters    map[string]*ParameterDefinition
	ResultColumns []string
}

// Phase tracks catalog initialization progress. Each transition is a
// one-way gate; a failure in any phase aborts startup and the catalog never
// reaches PhaseReady.
type Phase int

const (
	PhaseUnresolved Phase = iota
	PhaseObjectsDiscovered
	PhaseColumnsPopulated
	PhaseNamesMapped
	PhaseForeignKeysResolved
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUnresolved:
		return "Unresolved"
	case PhaseObjectsDiscovered:
		return "ObjectsDiscovered"
	case PhaseColumnsPopulated:
		return "ColumnsPopulated"
	case PhaseNamesMapped:
		return "NamesMapped"
	case PhaseForeignKeysResolved:
		return "ForeignKeysResolved"
	case PhaseReady:
		return "Ready"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
