package namemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlgateway/internal/apperr"
	"sqlgateway/internal/config"
)

func TestBuildIdentityDefaults(t *testing.T) {
	entities := map[string]config.Entity{
		"Book": {},
	}
	columns := map[string][]string{
		"Book": {"id", "title", "publisher_id"},
	}

	m, err := Build(entities, columns, true)
	require.NoError(t, err)

	for _, col := range columns["Book"] {
		exposed, ok := m.TryGetExposedColumnName("Book", col)
		require.True(t, ok)
		assert.Equal(t, col, exposed)
	}
}

func TestBuildAliases(t *testing.T) {
	entities := map[string]config.Entity{
		"Book": {
			Mappings: map[string]string{
				"pub_id": "publisherId",
			},
		},
	}
	columns := map[string][]string{
		"Book": {"id", "pub_id"},
	}

	m, err := Build(entities, columns, true)
	require.NoError(t, err)

	exposed, ok := m.TryGetExposedColumnName("Book", "pub_id")
	require.True(t, ok)
	assert.Equal(t, "publisherId", exposed)

	backing, ok := m.TryGetBackingColumn("Book", "publisherId")
	require.True(t, ok)
	assert.Equal(t, "pub_id", backing)

	// The old backing name is not exposed once aliased.
	_, ok = m.TryGetBackingColumn("Book", "pub_id")
	assert.False(t, ok)
}

// Round-tripping any backing column through the exposed name must return the
// original column; the two maps are strict inverses.
func TestBuildMapsAreInverses(t *testing.T) {
	entities := map[string]config.Entity{
		"Book": {
			Mappings: map[string]string{
				"pub_id":     "publisherId",
				"created_ts": "createdAt",
			},
		},
	}
	columns := map[string][]string{
		"Book": {"id", "title", "pub_id", "created_ts"},
	}

	m, err := Build(entities, columns, true)
	require.NoError(t, err)

	for _, backing := range columns["Book"] {
		exposed, ok := m.TryGetExposedColumnName("Book", backing)
		require.True(t, ok, "no exposed name for %s", backing)
		roundTripped, ok := m.TryGetBackingColumn("Book", exposed)
		require.True(t, ok, "no backing column for %s", exposed)
		assert.Equal(t, backing, roundTripped)
	}
	assert.Len(t, m.ExposedNames("Book"), len(columns["Book"]))
}

func TestBuildRejectsReservedNames(t *testing.T) {
	entities := map[string]config.Entity{
		"Book": {
			Mappings: map[string]string{
				"typename": "__typename",
			},
		},
	}
	columns := map[string][]string{
		"Book": {"id", "typename"},
	}

	_, err := Build(entities, columns, true)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInitialization))
	// The failure must name the offending entity and column.
	assert.Contains(t, err.Error(), "Book")
	assert.Contains(t, err.Error(), "typename")

	// Without GraphQL exposure the same mapping is allowed.
	_, err = Build(entities, columns, false)
	assert.NoError(t, err)
}

func TestBuildRejectsDuplicateExposedNames(t *testing.T) {
	entities := map[string]config.Entity{
		"Book": {
			Mappings: map[string]string{
				"pub_id": "id",
			},
		},
	}
	columns := map[string][]string{
		"Book": {"id", "pub_id"},
	}

	_, err := Build(entities, columns, true)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInitialization))
}

func TestBuildAssignsCollectionNames(t *testing.T) {
	entities := map[string]config.Entity{
		"book":        {},
		"book_author": {},
	}
	columns := map[string][]string{
		"book":        {"id"},
		"book_author": {"book_id", "author_id"},
	}

	m, err := Build(entities, columns, true)
	require.NoError(t, err)
	assert.Equal(t, "books", m.CollectionName("book"))
	assert.Equal(t, "bookAuthors", m.CollectionName("book_author"))
}

func TestBuildRejectsCollidingCollectionNames(t *testing.T) {
	entities := map[string]config.Entity{
		"book":  {},
		"books": {},
	}
	columns := map[string][]string{
		"book":  {"id"},
		"books": {"id"},
	}

	// Both entities pluralize to "books".
	_, err := Build(entities, columns, true)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInitialization))
	assert.Contains(t, err.Error(), "book")
	assert.Contains(t, err.Error(), "books")

	// Without GraphQL exposure the collision is tolerated.
	_, err = Build(entities, columns, false)
	assert.NoError(t, err)
}

func TestDefaultCollectionName(t *testing.T) {
	tests := []struct {
		entity   string
		expected string
	}{
		{"book", "books"},
		{"book_author", "bookAuthors"},
		{"person", "people"},
		{"series", "series"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DefaultCollectionName(tt.entity), "entity %s", tt.entity)
	}
}
