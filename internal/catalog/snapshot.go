package catalog

import (
	"time"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/engine"
	"sqlgateway/internal/fkresolve"
	"sqlgateway/internal/namemap"
)

// Snapshot is the immutable, fully resolved catalog published after a
// successful build. All methods are pure reads safe for unbounded
// concurrent callers; downstream request layers trust the snapshot without
// further validation.
type Snapshot struct {
	version  string
	builtAt  time.Time
	entities map[string]*DatabaseObject
	mapper   *namemap.Mapper
	pairFK   map[fkresolve.TablePair]*fkresolve.ForeignKeyDefinition
}

// Version is the unique identifier of this snapshot build.
func (s *Snapshot) Version() string { return s.version }

// BuiltAt is the completion time of this snapshot build.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// GetDatabaseObject returns the physical object backing an entity.
// A miss after the catalog is ready indicates a programming error.
func (s *Snapshot) GetDatabaseObject(entity string) (*DatabaseObject, error) {
	obj, ok := s.entities[entity]
	if !ok {
		return nil, apperr.EntityNotFound(entity)
	}
	return obj, nil
}

// GetSourceDefinition returns the resolved schema description for an entity.
func (s *Snapshot) GetSourceDefinition(entity string) (*SourceDefinition, error) {
	obj, err := s.GetDatabaseObject(entity)
	if err != nil {
		return nil, err
	}
	return obj.Source, nil
}

// GetDatabaseObjectName returns the unqualified object name for an entity.
func (s *Snapshot) GetDatabaseObjectName(entity string) (string, error) {
	obj, err := s.GetDatabaseObject(entity)
	if err != nil {
		return "", err
	}
	return obj.ID.Name, nil
}

// GetSchemaName returns the schema name for an entity. Empty for engines
// without schema support.
func (s *Snapshot) GetSchemaName(entity string) (string, error) {
	obj, err := s.GetDatabaseObject(entity)
	if err != nil {
		return "", err
	}
	return obj.ID.Schema, nil
}

// CollectionName returns the exposed collection field name for an entity.
func (s *Snapshot) CollectionName(entity string) (string, error) {
	if _, err := s.GetDatabaseObject(entity); err != nil {
		return "", err
	}
	return s.mapper.CollectionName(entity), nil
}

// TryGetBackingColumn resolves an exposed field name to its backing column.
func (s *Snapshot) TryGetBackingColumn(entity, exposed string) (string, bool) {
	return s.mapper.TryGetBackingColumn(entity, exposed)
}

// TryGetExposedColumnName resolves a backing column to its exposed name.
func (s *Snapshot) TryGetExposedColumnName(entity, backing string) (string, bool) {
	return s.mapper.TryGetExposedColumnName(entity, backing)
}

// VerifyForeignKeyExistsInDB reports whether a resolved foreign key
// definition exists for the ordered (referencing, referenced) table pair.
// The lookup is a lock-free read of the immutable pair map.
func (s *Snapshot) VerifyForeignKeyExistsInDB(referencing, referenced engine.TableID) bool {
	pair := fkresolve.TablePair{Referencing: referencing, Referenced: referenced}
	def, ok := s.pairFK[pair]
	return ok && def.HasColumns()
}

// ForeignKeyDefinition returns the resolved definition for an ordered table
// pair, if any.
func (s *Snapshot) ForeignKeyDefinition(referencing, referenced engine.TableID) (*fkresolve.ForeignKeyDefinition, bool) {
	def, ok := s.pairFK[fkresolve.TablePair{Referencing: referencing, Referenced: referenced}]
	return def, ok
}

// GetEntityNamesAndDbObjects returns every configured entity name with its
// backing database object. Entities sharing a source share the identical
// object pointer.
func (s *Snapshot) GetEntityNamesAndDbObjects() map[string]*DatabaseObject {
	out := make(map[string]*DatabaseObject, len(s.entities))
	for name, obj := range s.entities {
		out[name] = obj
	}
	return out
}
