package fkresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlgateway/internal/config"
	"sqlgateway/internal/engine"
)

func mysqlEngine(t *testing.T) engine.Engine {
	t.Helper()
	eng, err := engine.ForKind(engine.KindMySQL)
	require.NoError(t, err)
	return eng
}

func TestSynthesizeCandidatesCardinalityOne(t *testing.T) {
	eng := mysqlEngine(t)
	entities := map[string]config.Entity{
		"Book": {
			Source: config.EntitySource{Object: "books"},
			Relationships: map[string]config.Relationship{
				"publisher": {
					Cardinality:  "one",
					TargetEntity: "Publisher",
					SourceFields: []string{"publisher_id"},
					TargetFields: []string{"id"},
				},
			},
		},
		"Publisher": {Source: config.EntitySource{Object: "publishers"}},
	}
	tables := EntityTables{
		"Book":      {Name: "books"},
		"Publisher": {Name: "publishers"},
	}

	candidates, err := SynthesizeCandidates(eng, entities, tables)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Forward candidate carries the configured columns.
	forward := candidates[0]
	assert.Equal(t, "Book", forward.SourceEntity)
	assert.Equal(t, "Publisher", forward.TargetEntity)
	assert.Equal(t, engine.TableID{Name: "books"}, forward.Definition.Pair.Referencing)
	assert.Equal(t, engine.TableID{Name: "publishers"}, forward.Definition.Pair.Referenced)
	assert.Equal(t, []string{"publisher_id"}, forward.Definition.ReferencingColumns)
	assert.Equal(t, []string{"id"}, forward.Definition.ReferencedColumns)

	// Reverse candidate starts empty; only database discovery may fill it.
	reverse := candidates[1]
	assert.Equal(t, engine.TableID{Name: "publishers"}, reverse.Definition.Pair.Referencing)
	assert.Equal(t, engine.TableID{Name: "books"}, reverse.Definition.Pair.Referenced)
	assert.False(t, reverse.Definition.HasColumns())
}

func TestSynthesizeCandidatesCardinalityMany(t *testing.T) {
	eng := mysqlEngine(t)
	entities := map[string]config.Entity{
		"Publisher": {
			Source: config.EntitySource{Object: "publishers"},
			Relationships: map[string]config.Relationship{
				"books": {
					Cardinality:  "many",
					TargetEntity: "Book",
				},
			},
		},
		"Book": {Source: config.EntitySource{Object: "books"}},
	}
	tables := EntityTables{
		"Book":      {Name: "books"},
		"Publisher": {Name: "publishers"},
	}

	candidates, err := SynthesizeCandidates(eng, entities, tables)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	// To-many: the foreign key lives on the target's table, pointing back.
	c := candidates[0]
	assert.Equal(t, engine.TableID{Name: "books"}, c.Definition.Pair.Referencing)
	assert.Equal(t, engine.TableID{Name: "publishers"}, c.Definition.Pair.Referenced)
	assert.False(t, c.Definition.HasColumns())
}

func TestSynthesizeCandidatesLinkingObject(t *testing.T) {
	eng := mysqlEngine(t)
	entities := map[string]config.Entity{
		"Book": {
			Source: config.EntitySource{Object: "books"},
			Relationships: map[string]config.Relationship{
				"authors": {
					Cardinality:         "many",
					TargetEntity:        "Author",
					LinkingObject:       "book_authors",
					LinkingSourceFields: []string{"book_id"},
					SourceFields:        []string{"id"},
					LinkingTargetFields: []string{"author_id"},
					TargetFields:        []string{"id"},
				},
			},
		},
		"Author": {Source: config.EntitySource{Object: "authors"}},
	}
	tables := EntityTables{
		"Book":   {Name: "books"},
		"Author": {Name: "authors"},
	}

	candidates, err := SynthesizeCandidates(eng, entities, tables)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	toSource := candidates[0]
	assert.Equal(t, engine.TableID{Name: "book_authors"}, toSource.Definition.Pair.Referencing)
	assert.Equal(t, engine.TableID{Name: "books"}, toSource.Definition.Pair.Referenced)
	assert.Equal(t, []string{"book_id"}, toSource.Definition.ReferencingColumns)
	assert.Equal(t, []string{"id"}, toSource.Definition.ReferencedColumns)

	toTarget := candidates[1]
	assert.Equal(t, engine.TableID{Name: "book_authors"}, toTarget.Definition.Pair.Referencing)
	assert.Equal(t, engine.TableID{Name: "authors"}, toTarget.Definition.Pair.Referenced)
	assert.Equal(t, []string{"author_id"}, toTarget.Definition.ReferencingColumns)
}

func TestSynthesizeCandidatesRejectsQualifiedLinkingObject(t *testing.T) {
	eng := mysqlEngine(t)
	entities := map[string]config.Entity{
		"Book": {
			Source: config.EntitySource{Object: "books"},
			Relationships: map[string]config.Relationship{
				"authors": {
					Cardinality:   "many",
					TargetEntity:  "Author",
					LinkingObject: "library.book_authors",
				},
			},
		},
		"Author": {Source: config.EntitySource{Object: "authors"}},
	}
	tables := EntityTables{
		"Book":   {Name: "books"},
		"Author": {Name: "authors"},
	}

	_, err := SynthesizeCandidates(eng, entities, tables)
	assert.Error(t, err)
}

func TestImplicatedTables(t *testing.T) {
	candidates := []*Candidate{
		{Definition: &ForeignKeyDefinition{Pair: TablePair{
			Referencing: engine.TableID{Name: "books"},
			Referenced:  engine.TableID{Name: "publishers"},
		}}},
		{Definition: &ForeignKeyDefinition{Pair: TablePair{
			Referencing: engine.TableID{Name: "publishers"},
			Referenced:  engine.TableID{Name: "books"},
		}}},
		{Definition: &ForeignKeyDefinition{Pair: TablePair{
			Referencing: engine.TableID{Name: "book_authors"},
			Referenced:  engine.TableID{Name: "books"},
		}}},
	}

	tables := ImplicatedTables(candidates)
	assert.Equal(t, []engine.TableID{
		{Name: "book_authors"},
		{Name: "books"},
		{Name: "publishers"},
	}, tables)
}
