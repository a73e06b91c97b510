package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/farmkeep/shell/internal/backend"
	"github.com/farmkeep/shell/internal/bootstrap"
	"github.com/farmkeep/shell/internal/config"
	"github.com/farmkeep/shell/internal/httpx"
	"github.com/farmkeep/shell/internal/identity"
	"github.com/farmkeep/shell/internal/metrics"
	"github.com/farmkeep/shell/internal/platform"
	"github.com/farmkeep/shell/internal/records"
	"github.com/farmkeep/shell/internal/remoteconfig"
	"github.com/farmkeep/shell/internal/router"
	"github.com/farmkeep/shell/internal/server"
	"github.com/farmkeep/shell/internal/settings"
	"github.com/farmkeep/shell/internal/storage"
	"github.com/farmkeep/shell/internal/system"
)

// App is the composition root of the shell.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	launcher *bootstrap.Launcher
	screen   *server.Screen
	animals  *records.AnimalStore
	sales    *records.SaleStore
	metrics  *metrics.Metrics

	httpServer *server.Server
}

// New creates and wires all shell subsystems.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	src := settings.Bundled()
	if cfg.SettingsPath != "" {
		src = settings.FromFile(cfg.SettingsPath)
	}
	for _, problem := range src.Diagnose() {
		logger.Warn("settings", "problem", problem)
	}

	httpClient := httpx.NewClient(cfg.HTTPRetryMax, nil)

	tokens := platform.NewClient(platform.Config{
		MessagingURL:     cfg.MessagingURL,
		InstallationsURL: cfg.InstallationsURL,
		APIKey:           cfg.PlatformAPIKey,
		AppID:            cfg.AppID,
		BundleID:         cfg.BundleID,
		SDKVersion:       "farmkeep-shell/" + config.Version,
		Sandbox:          cfg.PushSandbox,
	}, store, httpClient, logger)

	probe := system.NewProbe(system.Identity{
		BundleID:         cfg.BundleID,
		AttributionToken: cfg.AttributionToken,
		AdvertisingID:    cfg.AdvertisingID,
	})

	orchestrator := bootstrap.NewOrchestrator(
		remoteconfig.NewClient(cfg.RemoteConfigURL, cfg.RemoteConfigPath, cfg.RemoteConfigAuth, httpClient, logger),
		identity.NewCollector(tokens, probe, logger),
		backend.NewClient(httpClient, logger),
		src,
		cfg.BootstrapBudget(),
		logger,
	)

	m := metrics.New()
	screen := server.NewScreen()
	rt := router.New(screen, logger)
	animals := records.NewAnimalStore()
	sales := records.NewSaleStore()

	return &App{
		cfg:      cfg,
		logger:   logger,
		launcher: bootstrap.NewLauncher(src, store, orchestrator, rt, m, logger),
		screen:   screen,
		animals:  animals,
		sales:    sales,
		metrics:  m,
		httpServer: server.New(server.Options{
			Addr:        cfg.ListenAddr,
			APIToken:    cfg.APIToken,
			Debug:       cfg.Debug,
			Screen:      screen,
			Orientation: rt,
			Animals:     animals,
			Sales:       sales,
			Metrics:     m,
			Logger:      logger,
		}),
	}, nil
}

// Run serves the HTTP surface, decides the launch destination and routes to
// it. It blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.httpServer.Start()
	}()

	go a.metrics.Track(ctx, a.animals, a.sales)

	decision, err := a.launcher.Launch(ctx, a.cfg.PushCredential)
	if err != nil {
		a.logger.Error("launch failed", "err", err)
	}

	kind, url := a.screen.Current()
	a.logger.Info("shell ready",
		"version", config.Version,
		"source", string(decision.Source),
		"screen", string(kind),
		"url", url,
		"addr", a.cfg.ListenAddr,
	)

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down shell")
		return a.shutdown()
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown error", "err", err)
	}

	a.logger.Info("shell stopped")
	return nil
}
