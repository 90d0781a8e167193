package fkresolve

import (
	"sqlgateway/internal/apperr"
)

// Resolved is the outcome of merging candidates with discovered foreign keys.
type Resolved struct {
	// PairMap is the shared pair→definition map. It is populated exactly
	// once here and must be treated as read-only afterwards; request-time
	// foreign key verification reads it without locks.
	PairMap map[TablePair]*ForeignKeyDefinition
	// ByRelationship holds the resolved definitions per source entity and
	// target entity, in candidate order, keeping only candidates that
	// ended up with columns.
	ByRelationship map[string]map[string][]*ForeignKeyDefinition
}

// Resolve merges candidates with discovered ground truth and validates that
// every configured relationship resolved. Candidates that already carry
// explicitly configured columns are left untouched; empty candidates are
// filled from the discovered definition matching their exact ordered table
// pair. There is no swapping of a candidate's assigned referencing and
// referenced tables.
func Resolve(candidates []*Candidate, discovered map[TablePair]*ForeignKeyDefinition) (*Resolved, error) {
	for _, c := range candidates {
		if c.Definition.HasColumns() {
			continue
		}
		found, ok := discovered[c.Definition.Pair]
		if !ok || !resolvable(found) {
			continue
		}
		c.Definition.ReferencingColumns = append([]string(nil), found.ReferencingColumns...)
		c.Definition.ReferencedColumns = append([]string(nil), found.ReferencedColumns...)
	}

	if err := validate(candidates); err != nil {
		return nil, err
	}

	result := &Resolved{
		PairMap:        make(map[TablePair]*ForeignKeyDefinition, len(discovered)),
		ByRelationship: make(map[string]map[string][]*ForeignKeyDefinition),
	}
	for pair, def := range discovered {
		if !resolvable(def) {
			continue
		}
		result.PairMap[pair] = def
	}
	for _, c := range candidates {
		if !c.Definition.HasColumns() {
			continue
		}
		// Configured columns take precedence over discovered ones for the
		// same pair.
		result.PairMap[c.Definition.Pair] = c.Definition

		byTarget := result.ByRelationship[c.SourceEntity]
		if byTarget == nil {
			byTarget = make(map[string][]*ForeignKeyDefinition)
			result.ByRelationship[c.SourceEntity] = byTarget
		}
		byTarget[c.TargetEntity] = append(byTarget[c.TargetEntity], c.Definition)
	}
	return result, nil
}

// resolvable reports whether a definition can back a relationship: parallel
// column lists of equal non-zero length with no empty names. SQLite reports a
// foreign key against a table's implicit primary key with an empty referenced
// column; such keys stay unresolved unless configuration names the columns.
func resolvable(d *ForeignKeyDefinition) bool {
	if len(d.ReferencingColumns) == 0 ||
		len(d.ReferencingColumns) != len(d.ReferencedColumns) {
		return false
	}
	for i := range d.ReferencingColumns {
		if d.ReferencingColumns[i] == "" || d.ReferencedColumns[i] == "" {
			return false
		}
	}
	return true
}

// validate requires every configured relationship to end with at least one
// candidate carrying non-empty referencing columns, with parallel column
// lists of equal length.
func validate(candidates []*Candidate) error {
	type relKey struct {
		sourceEntity string
		relName      string
	}
	resolved := make(map[relKey]bool)
	targets := make(map[relKey]string)

	for _, c := range candidates {
		key := relKey{sourceEntity: c.SourceEntity, relName: c.RelationshipName}
		targets[key] = c.TargetEntity
		if !c.Definition.HasColumns() {
			continue
		}
		if len(c.Definition.ReferencingColumns) != len(c.Definition.ReferencedColumns) {
			return apperr.Initialization(
				"relationship %q from entity %q to entity %q resolved with %d referencing columns but %d referenced columns",
				c.RelationshipName, c.SourceEntity, c.TargetEntity,
				len(c.Definition.ReferencingColumns), len(c.Definition.ReferencedColumns))
		}
		if !resolvable(c.Definition) {
			return apperr.Initialization(
				"relationship %q from entity %q to entity %q resolved with an empty column name",
				c.RelationshipName, c.SourceEntity, c.TargetEntity)
		}
		resolved[key] = true
	}

	for key, target := range targets {
		if !resolved[key] {
			return apperr.Initialization(
				"relationship %q from entity %q to entity %q could not be resolved: no configured columns and no matching foreign key in the database",
				key.relName, key.sourceEntity, target)
		}
	}
	return nil
}
