package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/farmkeep/shell/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSettings struct {
	override string
}

func (s fakeSettings) RemoteURLField() string       { return "host" }
func (s fakeSettings) RemoteEndpointField() string  { return "path" }
func (s fakeSettings) BackendURLField() string      { return "burl" }
func (s fakeSettings) BackendEndpointField() string { return "bep" }
func (s fakeSettings) HardcodedURL() string         { return s.override }

type fakeRemote struct {
	doc   map[string]any
	err   error
	delay time.Duration
	block bool

	mu    sync.Mutex
	calls int
}

func (f *fakeRemote) Fetch(ctx context.Context) (map[string]any, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.doc, f.err
}

func (f *fakeRemote) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIdentity struct {
	snapshot domain.IdentitySnapshot
	block    bool

	mu         sync.Mutex
	calls      int
	credential []byte
}

func (f *fakeIdentity) Collect(ctx context.Context, credential []byte) domain.IdentitySnapshot {
	f.mu.Lock()
	f.calls++
	f.credential = credential
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
	}
	return f.snapshot
}

func (f *fakeIdentity) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type resolveCall struct {
	baseURL     string
	snapshot    domain.IdentitySnapshot
	urlKey      string
	endpointKey string
}

type fakeResolver struct {
	url string
	err error

	mu    sync.Mutex
	calls []resolveCall
}

func (f *fakeResolver) Resolve(ctx context.Context, baseURL string, s domain.IdentitySnapshot, urlKey, endpointKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, resolveCall{baseURL, s, urlKey, endpointKey})
	return f.url, f.err
}

func (f *fakeResolver) Calls() []resolveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]resolveCall(nil), f.calls...)
}

type fakeStore struct {
	checked  bool
	accepted string
	err      error
	writes   int
}

func (s *fakeStore) WasChecked() bool    { return s.checked }
func (s *fakeStore) AcceptedURL() string { return s.accepted }
func (s *fakeStore) SetDecision(url string) error {
	s.writes++
	if s.err != nil {
		return s.err
	}
	s.checked, s.accepted = true, url
	return nil
}

type fakeRouter struct {
	routes []string
	err    error
}

func (r *fakeRouter) Route(url string) error {
	r.routes = append(r.routes, url)
	return r.err
}

type fakeRecorder struct {
	decisions []domain.Decision
}

func (r *fakeRecorder) Decided(d domain.Decision, _ time.Duration) {
	r.decisions = append(r.decisions, d)
}

var errBoom = errors.New("boom")
