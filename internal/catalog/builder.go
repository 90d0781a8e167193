package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/config"
	"sqlgateway/internal/dbexec"
	"sqlgateway/internal/engine"
	"sqlgateway/internal/fkresolve"
	"sqlgateway/internal/logging"
	"sqlgateway/internal/namemap"
)

// Builder assembles a catalog snapshot through the initialization phases.
// It is single-use and not safe for concurrent use; the Snapshot it
// produces is.
type Builder struct {
	cfg    *config.Config
	eng    engine.Engine
	exec   *dbexec.StandardExecutor
	logger *logging.Logger

	phase Phase

	objects       map[engine.TableID]*DatabaseObject
	entityObjects map[string]*DatabaseObject

	mapper   *namemap.Mapper
	resolved *fkresolve.Resolved
}

// NewBuilder creates a catalog builder over a validated configuration.
func NewBuilder(cfg *config.Config, eng engine.Engine, exec *dbexec.StandardExecutor, logger *logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	return &Builder{
		cfg:           cfg,
		eng:           eng,
		exec:          exec,
		logger:        logger,
		phase:         PhaseUnresolved,
		objects:       make(map[engine.TableID]*DatabaseObject),
		entityObjects: make(map[string]*DatabaseObject),
	}
}

// Build runs all initialization phases and seals the result into an
// immutable snapshot. Any phase failure aborts the build; there are no
// retries, and no snapshot is published from a partially-resolved state.
func (b *Builder) Build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	if err := b.discoverObjects(); err != nil {
		return nil, err
	}
	if err := b.populateColumns(ctx); err != nil {
		return nil, err
	}
	if err := b.buildNameMaps(); err != nil {
		return nil, err
	}
	if err := b.resolveForeignKeys(ctx); err != nil {
		return nil, err
	}
	snapshot, err := b.seal()
	if err != nil {
		return nil, err
	}

	b.logger.Info("catalog built",
		"entities", len(b.entityObjects),
		"objects", len(b.objects),
		"version", snapshot.Version(),
		"duration", time.Since(start).String(),
	)
	return snapshot, nil
}

// advance enforces the one-way phase gate.
func (b *Builder) advance(from, to Phase) error {
	if b.phase != from {
		return fmt.Errorf("catalog phase %s cannot advance to %s (expected %s)", b.phase, to, from)
	}
	b.phase = to
	return nil
}

// discoverObjects materializes one DatabaseObject per distinct source name
// and attaches definition skeletons by object kind.
func (b *Builder) discoverObjects() error {
	for _, entityName := range b.sortedEntityNames() {
		entity := b.cfg.Entities[entityName]

		kind, err := config.ParseObjectKind(entity.Source.Type)
		if err != nil {
			return apperr.ConfigValidation("entity %q: %v", entityName, err)
		}
		id, err := engine.ParseSourceName(b.eng, entity.Source.Object)
		if err != nil {
			return err
		}

		obj, ok := b.objects[id]
		if ok {
			if obj.Kind != kind {
				return apperr.ConfigValidation(
					"entity %q declares source %q as %s, but it is already configured as %s",
					entityName, entity.Source.Object, kind, obj.Kind)
			}
		} else {
			obj = &DatabaseObject{
				ID:   id,
				Kind: kind,
				Source: &SourceDefinition{
					Columns:       make(map[string]*ColumnDefinition),
					Relationships: make(map[string]*RelationshipMetadata),
				},
			}
			if kind == config.ObjectKindStoredProcedure {
				obj.Procedure = &StoredProcedureDefinition{
					Parameters: make(map[string]*ParameterDefinition),
				}
			}
			b.objects[id] = obj
		}
		b.entityObjects[entityName] = obj

		// Record configured parameter defaults on the shared procedure
		// definition before database discovery fills in types.
		if kind == config.ObjectKindStoredProcedure {
			for param, value := range entity.Source.Parameters {
				obj.Procedure.Parameters[param] = &ParameterDefinition{
					HasConfigDefault: true,
					Default:          value,
				}
			}
		}
	}
	return b.advance(PhaseUnresolved, PhaseObjectsDiscovered)
}

// buildNameMaps constructs the exposed/backing column maps for all entities.
func (b *Builder) buildNameMaps() error {
	if b.phase != PhaseColumnsPopulated {
		return fmt.Errorf("cannot build name maps in phase %s", b.phase)
	}

	columns := make(map[string][]string, len(b.entityObjects))
	for entityName, obj := range b.entityObjects {
		columns[entityName] = obj.Source.ColumnOrder
	}

	mapper, err := namemap.Build(b.cfg.Entities, columns, b.cfg.Runtime.GraphQLEnabled)
	if err != nil {
		return err
	}
	b.mapper = mapper
	return b.advance(PhaseColumnsPopulated, PhaseNamesMapped)
}

// resolveForeignKeys synthesizes relationship candidates from configuration,
// discovers actual foreign keys, and merges the two. It runs strictly after
// all per-entity column data is available.
func (b *Builder) resolveForeignKeys(ctx context.Context) error {
	if b.phase != PhaseNamesMapped {
		return fmt.Errorf("cannot resolve foreign keys in phase %s", b.phase)
	}

	tables := make(fkresolve.EntityTables, len(b.entityObjects))
	for entityName, obj := range b.entityObjects {
		if obj.Kind == config.ObjectKindStoredProcedure {
			continue
		}
		tables[entityName] = obj.ID
	}

	candidates, err := fkresolve.SynthesizeCandidates(b.eng, b.cfg.Entities, tables)
	if err != nil {
		return err
	}

	discovered := make(map[fkresolve.TablePair]*fkresolve.ForeignKeyDefinition)
	if len(candidates) > 0 {
		discovered, err = fkresolve.DiscoverForeignKeys(ctx, b.exec, b.eng, fkresolve.ImplicatedTables(candidates))
		if err != nil {
			return apperr.InitializationWrap(err, "foreign key discovery failed")
		}
	}

	resolved, err := fkresolve.Resolve(candidates, discovered)
	if err != nil {
		return err
	}
	b.resolved = resolved

	for sourceEntity, byTarget := range resolved.ByRelationship {
		obj := b.entityObjects[sourceEntity]
		obj.Source.Relationships[sourceEntity] = &RelationshipMetadata{
			TargetForeignKeys: byTarget,
		}
	}
	return b.advance(PhaseNamesMapped, PhaseForeignKeysResolved)
}

// seal converts the builder's state into an immutable snapshot.
func (b *Builder) seal() (*Snapshot, error) {
	if err := b.advance(PhaseForeignKeysResolved, PhaseReady); err != nil {
		return nil, err
	}

	pairMap := make(map[fkresolve.TablePair]*fkresolve.ForeignKeyDefinition)
	if b.resolved != nil {
		pairMap = b.resolved.PairMap
	}

	entities := make(map[string]*DatabaseObject, len(b.entityObjects))
	for name, obj := range b.entityObjects {
		entities[name] = obj
	}

	return &Snapshot{
		version:  uuid.NewString(),
		builtAt:  time.Now(),
		entities: entities,
		mapper:   b.mapper,
		pairFK:   pairMap,
	}, nil
}

func (b *Builder) sortedEntityNames() []string {
	names := make([]string, 0, len(b.cfg.Entities))
	for name := range b.cfg.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
