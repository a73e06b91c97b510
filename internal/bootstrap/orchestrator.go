package bootstrap

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/farmkeep/shell/internal/domain"
	"github.com/farmkeep/shell/internal/remoteconfig"
)

// Phase is the orchestrator state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseResolving
	PhaseDecided
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseResolving:
		return "resolving"
	case PhaseDecided:
		return "decided"
	default:
		return "unknown"
	}
}

// RemoteConfig reads the remote config document.
type RemoteConfig interface {
	Fetch(ctx context.Context) (map[string]any, error)
}

// IdentityCollector builds the identity snapshot.
type IdentityCollector interface {
	Collect(ctx context.Context, pushCredential []byte) domain.IdentitySnapshot
}

// Resolver exchanges the snapshot for the final destination.
type Resolver interface {
	Resolve(ctx context.Context, baseURL string, s domain.IdentitySnapshot, urlKey, endpointKey string) (string, error)
}

// Settings names the fields read from remote documents.
type Settings interface {
	RemoteURLField() string
	RemoteEndpointField() string
	BackendURLField() string
	BackendEndpointField() string
	HardcodedURL() string
}

// Orchestrator runs the one-time bootstrap that picks the destination URL.
type Orchestrator struct {
	remote   RemoteConfig
	identity IdentityCollector
	resolver Resolver
	settings Settings
	budget   time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	phase Phase
}

// NewOrchestrator creates an orchestrator. budget caps the wait for the
// remote candidate and the identity snapshot; it does not cap the resolve call.
func NewOrchestrator(remote RemoteConfig, identity IdentityCollector, resolver Resolver, settings Settings, budget time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		remote:   remote,
		identity: identity,
		resolver: resolver,
		settings: settings,
		budget:   budget,
		logger:   logger,
	}
}

// Phase returns the current state.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

type candidate struct {
	url string
	ok  bool
	err error
}

// Run starts the remote config read and identity collection together, waits
// for both within the budget, then resolves. It returns the destination URL,
// or "" when any step fails or the budget runs out.
func (o *Orchestrator) Run(ctx context.Context, pushCredential []byte) string {
	o.setPhase(PhaseChecking)

	waitCtx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	candidates := make(chan candidate, 1)
	snapshots := make(chan domain.IdentitySnapshot, 1)
	go func() { candidates <- o.fetchCandidate(waitCtx) }()
	go func() { snapshots <- o.identity.Collect(waitCtx, pushCredential) }()

	var (
		baseURL       string
		snapshot      domain.IdentitySnapshot
		haveCandidate bool
		haveSnapshot  bool
	)
	for !haveCandidate || !haveSnapshot {
		select {
		case c := <-candidates:
			if !c.ok {
				o.logger.Info("no usable remote candidate", "err", c.err)
				return o.decide("")
			}
			baseURL, haveCandidate = c.url, true
		case s := <-snapshots:
			snapshot, haveSnapshot = s, true
		case <-waitCtx.Done():
			o.logger.Warn("bootstrap inputs not ready within budget",
				"budget", o.budget.String(),
				"have_candidate", haveCandidate,
				"have_snapshot", haveSnapshot,
			)
			return o.decide("")
		}
	}

	o.setPhase(PhaseResolving)
	url, err := o.resolver.Resolve(ctx, baseURL, snapshot, o.settings.BackendURLField(), o.settings.BackendEndpointField())
	if err != nil {
		o.logger.Warn("resolve failed", "err", err)
		return o.decide("")
	}
	return o.decide(url)
}

func (o *Orchestrator) fetchCandidate(ctx context.Context) candidate {
	doc, err := o.remote.Fetch(ctx)
	if err != nil {
		return candidate{err: err}
	}
	result, ok := remoteconfig.Candidate(doc, o.settings.RemoteURLField(), o.settings.RemoteEndpointField())
	if !ok {
		return candidate{}
	}
	return candidate{url: result.URL(), ok: true}
}

func (o *Orchestrator) decide(url string) string {
	o.setPhase(PhaseDecided)
	o.logger.Info("bootstrap decided", "accepted", url != "")
	return url
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phase = p
}
