// Package upload sends local files to the document repository. Uploads run
// concurrently up to a limit and are paced by a rate limiter.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"

	"github.com/enciclo/control"
	"github.com/enciclo/control/fs"
	"github.com/enciclo/control/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Func sends one file. It matches [service.Repository.Upload].
type Func func(ctx context.Context, f service.FileOp) control.Response[service.Export]

// Result is the outcome of one file.
type Result struct {
	Path string
	URL  string
	Err  error
}

// Uploader sends files through Func, checking each response with a guard.
type Uploader struct {
	upload      Func
	guard       control.Guard
	limiter     *rate.Limiter
	concurrency int
	maxSize     int64
	logger      *zap.Logger
}

// Option configures an [Uploader].
type Option func(*Uploader)

// WithRateLimit allows perSecond uploads per second. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(u *Uploader) {
		if perSecond <= 0 {
			u.limiter = nil
			return
		}
		u.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithConcurrency bounds the number of uploads in flight.
func WithConcurrency(n int) Option {
	return func(u *Uploader) { u.concurrency = n }
}

// WithMaxSize refuses files larger than n bytes.
func WithMaxSize(n int64) Option {
	return func(u *Uploader) { u.maxSize = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// New returns an Uploader sending through upload.
func New(upload Func, guard control.Guard, opts ...Option) *Uploader {
	u := &Uploader{
		upload:      upload,
		guard:       guard,
		concurrency: 1,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Run uploads every path and returns one Result per path, in order. A
// failed file does not stop the others; a revoked session does, and Run
// then returns [control.ErrNotLoggedIn] along with the results so far.
func (u *Uploader) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i].Path = p
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(u.concurrency, 1))
	var mu sync.Mutex
	for i, p := range paths {
		g.Go(func() error {
			url, err := u.one(ctx, p)
			mu.Lock()
			results[i].URL, results[i].Err = url, err
			mu.Unlock()
			if errors.Is(err, control.ErrNotLoggedIn) {
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

func (u *Uploader) one(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := fs.Read(path, u.maxSize)
	if err != nil {
		return "", err
	}
	if u.limiter != nil {
		if err := u.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	resp := u.upload(ctx, service.FileOp{
		Name: f.Name,
		File: base64.StdEncoding.EncodeToString(f.Content),
	})
	if e := resp.Err(); e != nil && e.Code == http.StatusForbidden {
		u.guard.Check(resp)
		return "", control.ErrNotLoggedIn
	}
	if !u.guard.Check(resp) {
		msg := resp.Reply().Message
		if e := resp.Err(); e != nil {
			msg = control.ErrorMessage(e, "")
		}
		if msg == "" {
			msg = "upload failed"
		}
		return "", errors.New(msg)
	}
	v, err := control.Unwrap(resp)
	if err != nil {
		return "", err
	}
	u.logger.Info("uploaded", zap.String("path", path), zap.String("url", v.URL))
	return v.URL, nil
}
