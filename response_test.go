package control_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/enciclo/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_VariantsAreExclusive(t *testing.T) {
	t.Parallel()

	var ok control.Response[int] = control.Ok[int]{Data: 7}
	v, has := ok.Value()
	assert.True(t, has)
	assert.Equal(t, 7, v)
	assert.Equal(t, control.StatusSuccess, ok.Status())
	assert.Nil(t, ok.Err())

	var fail control.Response[int] = control.Failf[int](control.KindHTTP, 500, "boom")
	v, has = fail.Value()
	assert.False(t, has)
	assert.Zero(t, v)
	assert.Equal(t, control.StatusError, fail.Status())
	require.NotNil(t, fail.Err())
	assert.Equal(t, 500, fail.Err().Code)
	assert.Equal(t, control.Reply{}, fail.Reply())
}

func TestReply_Failed(t *testing.T) {
	t.Parallel()
	yes, no := true, false
	tests := []struct {
		name  string
		reply control.Reply
		want  bool
	}{
		{"missing success", control.Reply{}, false},
		{"success true", control.Reply{Success: &yes}, false},
		{"success false", control.Reply{Success: &no, Message: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.reply.Failed())
		})
	}
}

func TestError_Error(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "HTTP 403: forbidden", (&control.Error{Message: "forbidden", Code: 403}).Error())
	assert.Equal(t, "connection refused", (&control.Error{Message: "connection refused"}).Error())
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		v, err := control.Unwrap[string](control.Ok[string]{Data: "x"})
		require.NoError(t, err)
		assert.Equal(t, "x", v)
	})

	t.Run("fail", func(t *testing.T) {
		t.Parallel()
		_, err := control.Unwrap[string](control.Failf[string](control.KindTransport, 0, "dial tcp"))
		var apiErr *control.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "dial tcp", apiErr.Message)
	})

	t.Run("fail without error", func(t *testing.T) {
		t.Parallel()
		_, err := control.Unwrap[string](control.Fail[string]{})
		require.Error(t, err)
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()
	type page struct {
		List  []string `json:"list"`
		Total int      `json:"total"`
	}

	t.Run("decodes payload and keeps header", func(t *testing.T) {
		t.Parallel()
		yes := true
		raw := control.Ok[json.RawMessage]{
			Data:   json.RawMessage(`{"success":true,"list":["a","b"],"total":2}`),
			Header: control.Reply{Success: &yes},
		}
		got := control.Decode[page](raw)
		v, ok := got.Value()
		require.True(t, ok)
		assert.Equal(t, page{List: []string{"a", "b"}, Total: 2}, v)
		assert.Equal(t, &yes, got.Reply().Success)
	})

	t.Run("bad payload becomes decode failure", func(t *testing.T) {
		t.Parallel()
		raw := control.Ok[json.RawMessage]{Data: json.RawMessage(`{"total":"many"}`)}
		got := control.Decode[page](raw)
		assert.Equal(t, control.StatusError, got.Status())
		assert.Equal(t, control.KindDecode, got.Err().Kind)
	})

	t.Run("carries failure", func(t *testing.T) {
		t.Parallel()
		raw := control.Failf[json.RawMessage](control.KindHTTP, 403, "forbidden")
		got := control.Decode[page](raw)
		assert.Equal(t, 403, got.Err().Code)
	})
}
