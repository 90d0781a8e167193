package config

import (
	"sqlgateway/internal/apperr"
	"sqlgateway/internal/engine"
)

// Validate performs structural validation of the configuration. It checks
// only what can be decided without touching the database; schema-dependent
// checks happen during catalog initialization.
func Validate(cfg *Config) error {
	kind, err := engine.KindFromString(cfg.Database.Engine)
	if err != nil {
		return apperr.ConfigValidation("invalid database engine: %v", err)
	}
	eng, err := engine.ForKind(kind)
	if err != nil {
		return apperr.ConfigValidation("invalid database engine: %v", err)
	}

	if len(cfg.Entities) == 0 {
		return apperr.ConfigValidation("configuration declares no entities")
	}

	restPaths := make(map[string]string)
	for name, entity := range cfg.Entities {
		if err := validateEntity(eng, name, entity, cfg.Entities); err != nil {
			return err
		}
		if cfg.Runtime.RESTEnabled {
			path := entity.RESTPath(name)
			if other, seen := restPaths[path]; seen {
				return apperr.ConfigValidation(
					"entities %q and %q expose the same REST path %q", other, name, path)
			}
			restPaths[path] = name
		}
	}
	return nil
}

func validateEntity(eng engine.Engine, name string, entity Entity, all map[string]Entity) error {
	if entity.Source.Object == "" {
		return apperr.ConfigValidation("entity %q has no source object", name)
	}

	kind, err := ParseObjectKind(entity.Source.Type)
	if err != nil {
		return apperr.ConfigValidation("entity %q: %v", name, err)
	}
	if kind == ObjectKindStoredProcedure {
		if !eng.SupportsProcedures() {
			return apperr.ConfigValidation(
				"entity %q is a stored procedure, but engine %s does not support procedures", name, eng.Kind())
		}
		if len(entity.Relationships) > 0 {
			return apperr.ConfigValidation(
				"entity %q is a stored procedure and cannot declare relationships", name)
		}
	}

	for relName, rel := range entity.Relationships {
		if _, err := ParseCardinality(rel.Cardinality); err != nil {
			return apperr.ConfigValidation("entity %q relationship %q: %v", name, relName, err)
		}
		if rel.TargetEntity == "" {
			return apperr.ConfigValidation(
				"entity %q relationship %q has no target entity", name, relName)
		}
		target, ok := all[rel.TargetEntity]
		if !ok {
			return apperr.ConfigValidation(
				"entity %q relationship %q targets unknown entity %q", name, relName, rel.TargetEntity)
		}
		// The target entity's own kind error is reported when it is validated.
		if targetKind, err := ParseObjectKind(target.Source.Type); err == nil &&
			targetKind == ObjectKindStoredProcedure {
			return apperr.ConfigValidation(
				"entity %q relationship %q targets stored procedure entity %q", name, relName, rel.TargetEntity)
		}
		if rel.LinkingObject == "" &&
			(len(rel.LinkingSourceFields) > 0 || len(rel.LinkingTargetFields) > 0) {
			return apperr.ConfigValidation(
				"entity %q relationship %q declares linking fields without a linking object", name, relName)
		}
		if len(rel.SourceFields) != len(rel.TargetFields) {
			return apperr.ConfigValidation(
				"entity %q relationship %q has %d source fields but %d target fields",
				name, relName, len(rel.SourceFields), len(rel.TargetFields))
		}
	}

	// Two backing columns must not share an exposed name.
	exposed := make(map[string]string, len(entity.Mappings))
	for backing, alias := range entity.Mappings {
		if alias == "" {
			return apperr.ConfigValidation(
				"entity %q maps column %q to an empty exposed name", name, backing)
		}
		if other, seen := exposed[alias]; seen {
			return apperr.ConfigValidation(
				"entity %q maps columns %q and %q to the same exposed name %q", name, other, backing, alias)
		}
		exposed[alias] = backing
	}
	return nil
}
