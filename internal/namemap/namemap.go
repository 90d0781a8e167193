// Package namemap builds the bidirectional exposed-name to backing-column
// maps for every entity from configuration-declared aliases.
package namemap

import (
	"strings"

	"github.com/jinzhu/inflection"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/config"
)

// Mapper holds per-entity name maps. The two directions are strict inverses
// of each other; both are built in one pass and never mutated afterwards.
type Mapper struct {
	backingToExposed map[string]map[string]string
	exposedToBacking map[string]map[string]string
	collectionNames  map[string]string
}

// Build constructs name maps for all entities. columns supplies the backing
// column names per entity in ordinal order; every column without a
// configured alias defaults to an identity mapping. With GraphQL exposure
// enabled, each exposed name is validated against reserved-name rules and
// entity collection names must not collide.
func Build(entities map[string]config.Entity, columns map[string][]string, graphqlEnabled bool) (*Mapper, error) {
	m := &Mapper{
		backingToExposed: make(map[string]map[string]string, len(entities)),
		exposedToBacking: make(map[string]map[string]string, len(entities)),
		collectionNames:  make(map[string]string, len(entities)),
	}
	collectionOwner := make(map[string]string, len(entities))
	for entityName, entity := range entities {
		collection := DefaultCollectionName(entityName)
		if graphqlEnabled {
			if other, taken := collectionOwner[collection]; taken {
				first, second := other, entityName
				if second < first {
					first, second = second, first
				}
				return nil, apperr.Initialization(
					"entities %q and %q share the collection name %q", first, second, collection)
			}
			collectionOwner[collection] = entityName
		}
		m.collectionNames[entityName] = collection
		forward := make(map[string]string)
		inverse := make(map[string]string)

		for _, backing := range columns[entityName] {
			exposed, aliased := entity.Mappings[backing]
			if !aliased {
				exposed = backing
			}
			if graphqlEnabled && isReservedExposedName(exposed) {
				return nil, apperr.Initialization(
					"entity %q column %q maps to reserved name %q", entityName, backing, exposed)
			}
			if other, taken := inverse[exposed]; taken {
				return nil, apperr.Initialization(
					"entity %q columns %q and %q both map to exposed name %q", entityName, other, backing, exposed)
			}
			forward[backing] = exposed
			inverse[exposed] = backing
		}

		m.backingToExposed[entityName] = forward
		m.exposedToBacking[entityName] = inverse
	}
	return m, nil
}

// TryGetBackingColumn resolves an exposed field name to its backing column.
func (m *Mapper) TryGetBackingColumn(entity, exposed string) (string, bool) {
	backing, ok := m.exposedToBacking[entity][exposed]
	return backing, ok
}

// TryGetExposedColumnName resolves a backing column to its exposed field name.
func (m *Mapper) TryGetExposedColumnName(entity, backing string) (string, bool) {
	exposed, ok := m.backingToExposed[entity][backing]
	return exposed, ok
}

// CollectionName returns the exposed collection field name for an entity.
func (m *Mapper) CollectionName(entity string) string {
	return m.collectionNames[entity]
}

// ExposedNames returns all exposed field names for an entity.
func (m *Mapper) ExposedNames(entity string) []string {
	fields := m.exposedToBacking[entity]
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}

// DefaultCollectionName derives the exposed collection field name for an
// entity: pluralized camelCase of the entity name.
func DefaultCollectionName(entityName string) string {
	return inflection.Plural(toCamelCase(entityName))
}

// toCamelCase converts snake_case to camelCase.
func toCamelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
