package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/farmkeep/shell/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launchFixture struct {
	remote   *fakeRemote
	identity *fakeIdentity
	resolver *fakeResolver
	router   *fakeRouter
	recorder *fakeRecorder
}

func newLaunchFixture() *launchFixture {
	return &launchFixture{
		remote:   &fakeRemote{doc: usableDoc()},
		identity: &fakeIdentity{snapshot: testSnapshot()},
		resolver: &fakeResolver{url: "https://api.example.com/go"},
		router:   &fakeRouter{},
		recorder: &fakeRecorder{},
	}
}

func (f *launchFixture) launcher(settings Settings, state DecisionStore) *Launcher {
	o := NewOrchestrator(f.remote, f.identity, f.resolver, settings, time.Second, discardLogger())
	return NewLauncher(settings, state, o, f.router, f.recorder, discardLogger())
}

func TestLaunchOverrideSkipsEverything(t *testing.T) {
	f := newLaunchFixture()
	state := &fakeStore{}

	d, err := f.launcher(fakeSettings{override: "https://override.example"}, state).Launch(context.Background(), []byte{1})
	require.NoError(t, err)

	assert.Equal(t, domain.Decision{URL: "https://override.example", Source: domain.SourceOverride}, d)
	assert.Zero(t, f.remote.Calls())
	assert.Zero(t, f.identity.Calls())
	assert.Empty(t, f.resolver.Calls())
	assert.Zero(t, state.writes)
	assert.Equal(t, []string{"https://override.example"}, f.router.routes)
}

func TestLaunchOverrideWinsOverPersistedDecision(t *testing.T) {
	f := newLaunchFixture()
	state := &fakeStore{checked: true, accepted: ""}

	d, err := f.launcher(fakeSettings{override: "https://override.example"}, state).Launch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceOverride, d.Source)
	assert.Zero(t, state.writes)
}

func TestLaunchBootstrapPersistsAndRoutes(t *testing.T) {
	f := newLaunchFixture()
	state := &fakeStore{}

	d, err := f.launcher(fakeSettings{}, state).Launch(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.Decision{URL: "https://api.example.com/go", Source: domain.SourceBootstrap}, d)
	assert.Equal(t, 1, state.writes)
	assert.True(t, state.checked)
	assert.Equal(t, "https://api.example.com/go", state.accepted)
	assert.Equal(t, []string{"https://api.example.com/go"}, f.router.routes)
	assert.Equal(t, []domain.Decision{d}, f.recorder.decisions)
}

func TestLaunchDeclinePersistsEmptyURL(t *testing.T) {
	f := newLaunchFixture()
	f.resolver.url, f.resolver.err = "", errBoom
	state := &fakeStore{}

	d, err := f.launcher(fakeSettings{}, state).Launch(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, d.Native())
	assert.True(t, state.checked)
	assert.Empty(t, state.accepted)
	assert.Equal(t, []string{""}, f.router.routes)
}

func TestLaunchIsIdempotentAcrossRuns(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store, err := storage.NewStore(dir)
	require.NoError(t, err)

	first := newLaunchFixture()
	d, err := first.launcher(fakeSettings{}, store).Launch(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, domain.SourceBootstrap, d.Source)

	reopened, err := storage.NewStore(dir)
	require.NoError(t, err)
	second := newLaunchFixture()
	second.resolver.url = "https://different.example"

	d, err = second.launcher(fakeSettings{}, reopened).Launch(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.Decision{URL: "https://api.example.com/go", Source: domain.SourcePersisted}, d)
	assert.Zero(t, second.remote.Calls())
	assert.Zero(t, second.identity.Calls())
	assert.Empty(t, second.resolver.Calls())
	assert.Equal(t, []string{"https://api.example.com/go"}, second.router.routes)
}

func TestLaunchRoutesEvenWhenPersistFails(t *testing.T) {
	f := newLaunchFixture()
	state := &fakeStore{err: errBoom}

	d, err := f.launcher(fakeSettings{}, state).Launch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/go", d.URL)
	assert.Equal(t, []string{"https://api.example.com/go"}, f.router.routes)
}

func TestLaunchReportsRouterError(t *testing.T) {
	f := newLaunchFixture()
	f.router.err = domain.ErrAlreadyRouted

	_, err := f.launcher(fakeSettings{}, &fakeStore{checked: true}).Launch(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyRouted)
}
