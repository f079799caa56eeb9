package datatable_test

import (
	"encoding/json"
	"testing"

	"github.com/enciclo/control"
	"github.com/enciclo/control/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Query(t *testing.T) {
	t.Parallel()
	filters := control.DefaultFilters()

	t.Run("page from first and rows with first sort key", func(t *testing.T) {
		t.Parallel()
		s := datatable.State{
			First: 50,
			Rows:  25,
			MultiSortMeta: []datatable.SortMeta{
				{Field: "user", Order: -1},
				{Field: "ts", Order: 1},
			},
			Filters: filters,
		}
		assert.Equal(t, control.Query{Page: 3, Items: 25, Order: "user desc", Filter: filters}, s.Query())
	})

	t.Run("ascending", func(t *testing.T) {
		t.Parallel()
		s := datatable.State{Rows: 10, MultiSortMeta: []datatable.SortMeta{{Field: "ts", Order: 1}}}
		assert.Equal(t, "ts asc", s.Query().Order)
		assert.Equal(t, 1, s.Query().Page)
	})

	t.Run("zero order is descending", func(t *testing.T) {
		t.Parallel()
		s := datatable.State{Rows: 10, MultiSortMeta: []datatable.SortMeta{{Field: "ts"}}}
		assert.Equal(t, "ts desc", s.Query().Order)
	})

	t.Run("no sort", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, datatable.State{Rows: 10, First: 19}.Query().Order)
		assert.Equal(t, 2, datatable.State{Rows: 10, First: 19}.Query().Page)
	})

	t.Run("zero rows", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1, datatable.State{First: 40}.Query().Page)
	})

	t.Run("negative offset", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 1, datatable.State{First: -25, Rows: 25}.Query().Page)
		assert.Equal(t, 1, datatable.State{First: -100, Rows: 25}.Query().Page)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		s := datatable.State{First: 75, Rows: 25, Filters: filters}
		assert.Equal(t, s.Query(), s.Query())
	})
}

func TestState_Reset(t *testing.T) {
	t.Parallel()
	s := datatable.State{
		First:         200,
		Rows:          100,
		Page:          2,
		SortField:     "user",
		SortOrder:     1,
		MultiSortMeta: []datatable.SortMeta{{Field: "user", Order: 1}},
		Filters:       control.DefaultFilters(),
	}
	s.Reset(25, map[string]control.Filter{})

	assert.Zero(t, s.First)
	assert.Zero(t, s.Page)
	assert.Equal(t, 25, s.Rows)
	assert.Empty(t, s.SortField)
	assert.Empty(t, s.MultiSortMeta)
	assert.Empty(t, s.Filters)
	assert.Equal(t, 1, s.Query().Page)

	b, err := json.Marshal(s.Query())
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"items":25,"filter":{},"order":null}`, string(b))
}
