package control_test

import (
	"encoding/json"
	"testing"

	"github.com/enciclo/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Validate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, control.Query{Page: 1, Items: 10}.Validate())
	assert.ErrorIs(t, control.Query{Page: 0, Items: 10}.Validate(), control.ErrValidation)
	assert.ErrorIs(t, control.Query{Page: 1, Items: 0}.Validate(), control.ErrValidation)
}

func TestFilter_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("single predicate", func(t *testing.T) {
		t.Parallel()
		b, err := json.Marshal(control.Match(control.MatchContains, "ana"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"value":"ana","matchMode":"contains"}`, string(b))
	})

	t.Run("operator", func(t *testing.T) {
		t.Parallel()
		f := control.All(control.OperatorAnd, control.Constraint{Value: "jo", MatchMode: control.MatchStartsWith})
		b, err := json.Marshal(f)
		require.NoError(t, err)
		assert.JSONEq(t, `{"operator":"and","constraints":[{"value":"jo","matchMode":"startsWith"}]}`, string(b))
	})

	t.Run("operator without constraints", func(t *testing.T) {
		t.Parallel()
		b, err := json.Marshal(control.All(control.OperatorOr))
		require.NoError(t, err)
		assert.JSONEq(t, `{"operator":"or","constraints":[]}`, string(b))
	})
}

func TestQuery_RoundTrip(t *testing.T) {
	t.Parallel()
	q := control.Query{
		Page:  3,
		Items: 25,
		Order: "user desc",
		Filter: map[string]control.Filter{
			"global": control.Match(control.MatchContains, "wiki"),
			"user": control.All(control.OperatorAnd,
				control.Constraint{Value: "ana", MatchMode: control.MatchStartsWith},
				control.Constraint{Value: "x", MatchMode: control.MatchNotContain},
			),
		},
	}
	b, err := json.Marshal(q)
	require.NoError(t, err)

	var got control.Query
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, q, got)
}

func TestQuery_EmptyFilterAndOrder(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(control.Query{Page: 1, Items: 10})
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1,"items":10,"filter":{},"order":null}`, string(b))

	var got control.Query
	require.NoError(t, json.Unmarshal(b, &got))
	assert.NotNil(t, got.Filter)
	assert.Empty(t, got.Filter)
	assert.Empty(t, got.Order)
}

func TestDefaultFilters(t *testing.T) {
	t.Parallel()
	f := control.DefaultFilters()
	require.Contains(t, f, "global")
	require.Contains(t, f, "user")
	assert.Equal(t, control.MatchContains, f["global"].MatchMode)
	assert.Nil(t, f["global"].Value)
	assert.Equal(t, control.OperatorAnd, f["user"].Operator)
	require.Len(t, f["user"].Constraints, 1)
	assert.Equal(t, control.MatchStartsWith, f["user"].Constraints[0].MatchMode)

	// Each call returns a fresh map.
	f["global"] = control.Match(control.MatchEquals, "x")
	assert.Equal(t, control.MatchContains, control.DefaultFilters()["global"].MatchMode)
}
