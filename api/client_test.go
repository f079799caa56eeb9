package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enciclo/control"
	"github.com/enciclo/control/api"
	"github.com/enciclo/control/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSession(t *testing.T, id string) *control.Session {
	t.Helper()
	s := control.NewSession(nil)
	if id != "" {
		require.NoError(t, s.Establish(id))
	}
	return s
}

func TestClient_RequestFormat(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		assert.Contains(t, r.Header.Get("Cache-Control"), "no-store")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"success":true,"list":[],"total":0}`))
	}))
	defer srv.Close()

	client := api.New(newSession(t, "sess-1"), api.WithBaseURL(srv.URL), api.WithLogger(zaptest.NewLogger(t)))
	resp := client.Call(context.Background(), "user", control.Query{Page: 2, Items: 10})

	require.Equal(t, control.StatusSuccess, resp.Status())
	assert.Equal(t, "sess-1", captured["session_id"])
	assert.Equal(t, float64(2), captured["page"])
	assert.Equal(t, float64(10), captured["items"])
}

func TestClient_NilParamsSendsObject(t *testing.T) {
	t.Parallel()
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := api.New(newSession(t, ""), api.WithBaseURL(srv.URL))
	resp := client.Call(context.Background(), "collections", nil)
	require.Equal(t, control.StatusSuccess, resp.Status())
	assert.JSONEq(t, `{}`, body)
}

func TestClient_LazyTokenLoad(t *testing.T) {
	t.Parallel()
	var loads atomic.Int32
	store := &mock.TokenStore{LoadFn: func() (string, error) {
		loads.Add(1)
		return "from-disk", nil
	}}
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		ids = append(ids, body["session_id"].(string))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := api.New(control.NewSession(store), api.WithBaseURL(srv.URL))
	client.Call(context.Background(), "collections", nil)
	client.Call(context.Background(), "collections", control.Params{"a": 1})

	assert.Equal(t, []string{"from-disk", "from-disk"}, ids)
	assert.Equal(t, int32(1), loads.Load())
}

func TestClient_CallerHeadersWin(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.enciclo+json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := api.New(newSession(t, "s"), api.WithBaseURL(srv.URL))
	resp := client.Call(context.Background(), "x", nil, control.WithHeader("Content-Type", "application/vnd.enciclo+json"))
	assert.Equal(t, control.StatusSuccess, resp.Status())
}

func TestClient_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantKind control.ErrorKind
		wantMsg  string
	}{
		{"forbidden with json message", 403, `{"message":"Sesión caducada"}`, 403, control.KindHTTP, "Sesión caducada"},
		{"server error plain body", 500, `boom`, 500, control.KindHTTP, "boom"},
		{"unauthorized empty body", 401, ``, 401, control.KindHTTP, "Unauthorized"},
		{"invalid json on 200", 200, `<html>`, 0, control.KindDecode, "decode response: invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := api.New(newSession(t, "s"), api.WithBaseURL(srv.URL))
			resp := client.Call(context.Background(), "x", nil)
			require.Equal(t, control.StatusError, resp.Status())
			_, ok := resp.Value()
			assert.False(t, ok)
			assert.Equal(t, tt.wantCode, resp.Err().Code)
			assert.Equal(t, tt.wantKind, resp.Err().Kind)
			assert.Equal(t, tt.wantMsg, resp.Err().Message)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := api.New(newSession(t, "s"), api.WithBaseURL(url))
	resp := client.Call(context.Background(), "x", nil)
	require.Equal(t, control.StatusError, resp.Status())
	assert.Equal(t, control.KindTransport, resp.Err().Kind)
	assert.Zero(t, resp.Err().Code)
}

func TestClient_BusinessFailureIsSuccessResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Duplicate user"}`))
	}))
	defer srv.Close()

	client := api.New(newSession(t, "s"), api.WithBaseURL(srv.URL))
	resp := client.Call(context.Background(), "user", nil)
	require.Equal(t, control.StatusSuccess, resp.Status())
	assert.True(t, resp.Reply().Failed())
	assert.Equal(t, "Duplicate user", resp.Reply().Message)
}

func TestClient_NonObjectParams(t *testing.T) {
	t.Parallel()
	client := api.New(newSession(t, "s"), api.WithBaseURL("http://127.0.0.1:1"))
	resp := client.Call(context.Background(), "x", []int{1, 2})
	require.Equal(t, control.StatusError, resp.Status())
	assert.Equal(t, control.KindRequest, resp.Err().Kind)
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := api.New(newSession(t, "s"), api.WithBaseURL(srv.URL))
	resp := client.Call(context.Background(), "x", nil, control.WithTimeout(20*time.Millisecond))
	require.Equal(t, control.StatusError, resp.Status())
	assert.Equal(t, control.KindTransport, resp.Err().Kind)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := api.New(newSession(t, "s"), api.WithBaseURL(srv.URL), api.WithRateLimit(0.001, 1))
	require.Equal(t, control.StatusSuccess, client.Call(context.Background(), "x", nil).Status())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	resp := client.Call(ctx, "x", nil)
	require.Equal(t, control.StatusError, resp.Status())
	assert.Equal(t, control.KindTransport, resp.Err().Kind)
}

func TestClient_LongTask(t *testing.T) {
	t.Parallel()
	var hits []string
	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, "default")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer fast.Close()
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, "long")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer slow.Close()

	r := api.NewResolver(fast.URL, slow.URL, "")
	s := newSession(t, "s")
	api.New(s, api.WithResolver(r)).Call(context.Background(), "user", nil)
	long := api.New(s, api.WithResolver(r), api.LongTask())
	long.Call(context.Background(), "importexcel", nil)

	assert.Equal(t, []string{"default", "long"}, hits)
	assert.Equal(t, slow.URL, long.BaseURL())
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	t.Run("success establishes session", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/login", r.URL.Path)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "ana", body["username"])
			assert.Equal(t, "pw", body["secret"])
			assert.NotContains(t, body, "session_id")
			_, _ = w.Write([]byte(`{"success":true,"session_id":"sess-9"}`))
		}))
		defer srv.Close()

		var saved string
		store := &mock.TokenStore{SaveFn: func(tok string) error { saved = tok; return nil }}
		s := control.NewSession(store)
		client := api.New(s, api.WithBaseURL(srv.URL))

		require.NoError(t, client.Login(context.Background(), api.Credentials{Username: "ana", Secret: "pw"}))
		assert.True(t, s.Authenticated())
		assert.Equal(t, "sess-9", s.ID())
		assert.Equal(t, "sess-9", saved)
	})

	t.Run("rejection records message", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"message":"Usuario o clave incorrectos"}`))
		}))
		defer srv.Close()

		s := newSession(t, "old")
		client := api.New(s, api.WithBaseURL(srv.URL))
		err := client.Login(context.Background(), api.Credentials{Username: "ana", Secret: "bad"})
		assert.ErrorIs(t, err, control.ErrLoginFailed)
		assert.False(t, s.Authenticated())
		assert.Empty(t, s.ID())
		assert.Equal(t, "Usuario o clave incorrectos", s.LastError())
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		s := newSession(t, "")
		err := api.New(s, api.WithBaseURL(srv.URL)).Login(context.Background(), api.Credentials{Username: "ana"})
		var apiErr *control.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 500, apiErr.Code)
		assert.NotEmpty(t, s.LastError())
	})

	t.Run("requires username", func(t *testing.T) {
		t.Parallel()
		err := api.New(nil).Login(context.Background(), api.Credentials{})
		assert.ErrorIs(t, err, control.ErrValidation)
	})
}

func TestClient_Logout(t *testing.T) {
	t.Parallel()
	s := newSession(t, "sess")
	client := api.New(s)
	require.NoError(t, client.Logout())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.ID())
}
