package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/farmkeep/shell/internal/domain"
)

// DecisionStore persists the bootstrap outcome across launches.
type DecisionStore interface {
	WasChecked() bool
	AcceptedURL() string
	SetDecision(url string) error
}

// Runner runs bootstrap and returns the accepted URL.
type Runner interface {
	Run(ctx context.Context, pushCredential []byte) string
}

// Router switches the visible screen.
type Router interface {
	Route(url string) error
}

// Recorder observes launch outcomes.
type Recorder interface {
	Decided(d domain.Decision, elapsed time.Duration)
}

// Launcher decides the destination of a launch and routes to it.
type Launcher struct {
	settings Settings
	state    DecisionStore
	runner   Runner
	router   Router
	recorder Recorder
	logger   *slog.Logger
}

// NewLauncher creates a launcher. recorder may be nil.
func NewLauncher(settings Settings, state DecisionStore, runner Runner, router Router, recorder Recorder, logger *slog.Logger) *Launcher {
	return &Launcher{
		settings: settings,
		state:    state,
		runner:   runner,
		router:   router,
		recorder: recorder,
		logger:   logger,
	}
}

// Launch picks the destination and routes to it:
//   - a configured override wins and is never persisted;
//   - a persisted decision is reused as is;
//   - otherwise bootstrap runs once and its outcome is persisted.
func (l *Launcher) Launch(ctx context.Context, pushCredential []byte) (domain.Decision, error) {
	start := time.Now()

	var decision domain.Decision
	switch override := l.settings.HardcodedURL(); {
	case override != "":
		decision = domain.Decision{URL: override, Source: domain.SourceOverride}
	case l.state.WasChecked():
		decision = domain.Decision{URL: l.state.AcceptedURL(), Source: domain.SourcePersisted}
	default:
		url := l.runner.Run(ctx, pushCredential)
		if err := l.state.SetDecision(url); err != nil {
			l.logger.Warn("failed to persist decision", "err", err)
		}
		decision = domain.Decision{URL: url, Source: domain.SourceBootstrap}
	}

	l.logger.Info("launch decided",
		"source", string(decision.Source),
		"native", decision.Native(),
		"elapsed", time.Since(start).String(),
	)
	if l.recorder != nil {
		l.recorder.Decided(decision, time.Since(start))
	}

	if err := l.router.Route(decision.URL); err != nil {
		return decision, fmt.Errorf("route: %w", err)
	}
	return decision, nil
}
