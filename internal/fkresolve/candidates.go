// Package fkresolve reconciles configuration-declared relationships with
// foreign keys discovered from the database. Candidate synthesis and
// resolution are separate pure steps so each is testable without a live
// database: synthesis is a deterministic function of configuration, and
// resolution is a deterministic function of candidates plus discovered
// ground truth.
package fkresolve

import (
	"sort"

	"sqlgateway/internal/config"
	"sqlgateway/internal/engine"
)

// TablePair is an ordered (referencing, referenced) table pair.
type TablePair struct {
	Referencing engine.TableID
	Referenced  engine.TableID
}

// ForeignKeyDefinition holds an ordered table pair with parallel ordered
// referencing/referenced column lists. Once resolved, the lists have equal
// length.
type ForeignKeyDefinition struct {
	Pair               TablePair
	ReferencingColumns []string
	ReferencedColumns  []string
}

// HasColumns reports whether the definition carries resolved columns.
func (d *ForeignKeyDefinition) HasColumns() bool {
	return len(d.ReferencingColumns) > 0
}

// Candidate ties a tentative FK definition to the configured relationship
// that produced it.
type Candidate struct {
	SourceEntity     string
	TargetEntity     string
	RelationshipName string
	Definition       *ForeignKeyDefinition
}

// EntityTables maps entity names to their resolved physical tables.
type EntityTables map[string]engine.TableID

// SynthesizeCandidates emits tentative FK definitions for every configured
// relationship:
//
//   - With a linking object, two directional candidates: linking→source and
//     linking→target, carrying whatever linking column lists the
//     configuration declares.
//   - Without a linking object and cardinality "one", the side holding the
//     physical key is unknown until verified against the database, so
//     candidates are emitted optimistically in both directions. Configured
//     source/target fields ride on the source→target candidate; the reverse
//     candidate starts empty and is only filled by discovery.
//   - Cardinality "many" puts the foreign key on the target's table, so a
//     single target→source candidate is emitted.
//
// Entity iteration is sorted so candidate order is deterministic.
func SynthesizeCandidates(eng engine.Engine, entities map[string]config.Entity, tables EntityTables) ([]*Candidate, error) {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)

	var candidates []*Candidate
	for _, entityName := range names {
		entity := entities[entityName]

		relNames := make([]string, 0, len(entity.Relationships))
		for relName := range entity.Relationships {
			relNames = append(relNames, relName)
		}
		sort.Strings(relNames)

		for _, relName := range relNames {
			rel := entity.Relationships[relName]
			got, err := synthesizeRelationship(eng, entityName, relName, rel, tables)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, got...)
		}
	}
	return candidates, nil
}

func synthesizeRelationship(eng engine.Engine, entityName, relName string, rel config.Relationship, tables EntityTables) ([]*Candidate, error) {
	sourceTable := tables[entityName]
	targetTable := tables[rel.TargetEntity]

	if rel.LinkingObject != "" {
		linking, err := engine.ParseSourceName(eng, rel.LinkingObject)
		if err != nil {
			return nil, err
		}
		return []*Candidate{
			newCandidate(entityName, rel.TargetEntity, relName,
				linking, sourceTable, rel.LinkingSourceFields, rel.SourceFields),
			newCandidate(entityName, rel.TargetEntity, relName,
				linking, targetTable, rel.LinkingTargetFields, rel.TargetFields),
		}, nil
	}

	cardinality, err := config.ParseCardinality(rel.Cardinality)
	if err != nil {
		return nil, err
	}

	if cardinality == config.CardinalityOne {
		return []*Candidate{
			newCandidate(entityName, rel.TargetEntity, relName,
				sourceTable, targetTable, rel.SourceFields, rel.TargetFields),
			newCandidate(entityName, rel.TargetEntity, relName,
				targetTable, sourceTable, nil, nil),
		}, nil
	}

	// One-to-many: the foreign key lives on the target's table.
	return []*Candidate{
		newCandidate(entityName, rel.TargetEntity, relName,
			targetTable, sourceTable, rel.TargetFields, rel.SourceFields),
	}, nil
}

func newCandidate(sourceEntity, targetEntity, relName string, referencing, referenced engine.TableID, referencingCols, referencedCols []string) *Candidate {
	return &Candidate{
		SourceEntity:     sourceEntity,
		TargetEntity:     targetEntity,
		RelationshipName: relName,
		Definition: &ForeignKeyDefinition{
			Pair: TablePair{
				Referencing: referencing,
				Referenced:  referenced,
			},
			ReferencingColumns: append([]string(nil), referencingCols...),
			ReferencedColumns:  append([]string(nil), referencedCols...),
		},
	}
}

// ImplicatedTables returns the distinct referencing-side tables across all
// candidates, sorted for deterministic discovery queries.
func ImplicatedTables(candidates []*Candidate) []engine.TableID {
	seen := make(map[engine.TableID]struct{})
	var tables []engine.TableID
	for _, c := range candidates {
		for _, t := range []engine.TableID{c.Definition.Pair.Referencing, c.Definition.Pair.Referenced} {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tables = append(tables, t)
		}
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Schema != tables[j].Schema {
			return tables[i].Schema < tables[j].Schema
		}
		return tables[i].Name < tables[j].Name
	})
	return tables
}
