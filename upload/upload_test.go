package upload_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enciclo/control"
	"github.com/enciclo/control/fs"
	"github.com/enciclo/control/mock"
	"github.com/enciclo/control/service"
	"github.com/enciclo/control/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(paths[i], []byte("content of "+n), 0o644))
	}
	return paths
}

func ok(url string) control.Response[service.Export] {
	return control.Decode[service.Export](mock.JSON(`{"success":true,"url":"` + url + `"}`))
}

func TestUploader_Run(t *testing.T) {
	t.Parallel()

	paths := files(t, "a.pdf", "b.pdf")
	var mu sync.Mutex
	got := map[string]string{}
	u := upload.New(func(_ context.Context, f service.FileOp) control.Response[service.Export] {
		mu.Lock()
		defer mu.Unlock()
		got[f.Name] = f.File
		return ok("http://files.invalid/" + f.Name)
	}, control.Guard{}, upload.WithConcurrency(2))

	results, err := u.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, upload.Result{Path: paths[0], URL: "http://files.invalid/a.pdf"}, results[0])
	assert.Equal(t, upload.Result{Path: paths[1], URL: "http://files.invalid/b.pdf"}, results[1])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("content of a.pdf")), got["a.pdf"])
}

func TestUploader_FailuresAreReportedPerFile(t *testing.T) {
	t.Parallel()

	paths := files(t, "good.pdf", "bad.pdf", "big.pdf")
	require.NoError(t, os.WriteFile(paths[2], make([]byte, 1024), 0o644))

	var notices []control.Notice
	var mu sync.Mutex
	guard := control.Guard{Notifier: &mock.Notifier{NotifyFn: func(n control.Notice) {
		mu.Lock()
		defer mu.Unlock()
		notices = append(notices, n)
	}}}
	u := upload.New(func(_ context.Context, f service.FileOp) control.Response[service.Export] {
		switch f.Name {
		case "bad.pdf":
			return control.Decode[service.Export](mock.JSON(`{"success":false,"message":"Formato no soportado"}`))
		case "good.pdf":
			return ok("http://files.invalid/good.pdf")
		}
		t.Errorf("unexpected upload of %s", f.Name)
		return ok("")
	}, guard, upload.WithMaxSize(100))

	results, err := u.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.NoError(t, results[0].Err)
	assert.EqualError(t, results[1].Err, "Formato no soportado")
	assert.ErrorIs(t, results[2].Err, fs.ErrTooLarge)
	require.Len(t, notices, 1)
	assert.Equal(t, "Formato no soportado", notices[0].Detail)
}

func TestUploader_ServerError(t *testing.T) {
	t.Parallel()

	paths := files(t, "a.pdf")
	u := upload.New(func(context.Context, service.FileOp) control.Response[service.Export] {
		return control.Decode[service.Export](mock.Failure(500, "boom"))
	}, control.Guard{})
	results, err := u.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.EqualError(t, results[0].Err, "boom")
}

func TestUploader_RevokedSessionStops(t *testing.T) {
	t.Parallel()

	paths := files(t, "a.pdf", "b.pdf", "c.pdf")
	var calls atomic.Int32
	logins := 0
	session := control.NewSession(nil)
	require.NoError(t, session.Establish("abc"))
	guard := control.Guard{Session: session, Navigator: &mock.Navigator{ToLoginFn: func() { logins++ }}}
	u := upload.New(func(context.Context, service.FileOp) control.Response[service.Export] {
		calls.Add(1)
		return control.Decode[service.Export](mock.Failure(403, "Forbidden"))
	}, guard)

	results, err := u.Run(context.Background(), paths)
	require.ErrorIs(t, err, control.ErrNotLoggedIn)
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, results[0].Err, control.ErrNotLoggedIn)
	assert.ErrorIs(t, results[1].Err, context.Canceled)
	assert.ErrorIs(t, results[2].Err, context.Canceled)
	assert.False(t, session.Authenticated())
	assert.Equal(t, 1, logins)
}

func TestUploader_RateLimit(t *testing.T) {
	t.Parallel()

	paths := files(t, "a.pdf", "b.pdf", "c.pdf")
	var times []time.Time
	var mu sync.Mutex
	u := upload.New(func(_ context.Context, f service.FileOp) control.Response[service.Export] {
		mu.Lock()
		defer mu.Unlock()
		times = append(times, time.Now())
		return ok("http://files.invalid/" + f.Name)
	}, control.Guard{}, upload.WithRateLimit(20), upload.WithConcurrency(3))

	start := time.Now()
	_, err := u.Run(context.Background(), paths)
	require.NoError(t, err)
	// Burst 1 at 20/s: the third upload waits at least ~100ms.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, times, 3)
}

func TestUploader_CancelledContext(t *testing.T) {
	t.Parallel()

	paths := files(t, "a.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := upload.New(func(context.Context, service.FileOp) control.Response[service.Export] {
		t.Error("upload must not be called")
		return ok("")
	}, control.Guard{})
	results, err := u.Run(ctx, paths)
	require.NoError(t, err)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
