package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/farmkeep/shell/internal/records"
	"github.com/gin-gonic/gin"
)

// Options configures the HTTP surface.
type Options struct {
	Addr        string
	APIToken    string
	Debug       bool
	Screen      *Screen
	Orientation OrientationSource
	Animals     *records.AnimalStore
	Sales       *records.SaleStore
	// Metrics is optional.
	Metrics Instrumentation
	Logger  *slog.Logger
}

// Instrumentation provides request metrics and their exposition.
type Instrumentation interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

func New(opts Options) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	h := NewHandler(opts.Screen, opts.Orientation, opts.Animals, opts.Sales, opts.Logger)

	engine := gin.New()
	engine.Use(RecoveryMiddleware(opts.Logger), LoggingMiddleware(opts.Logger))
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	engine.GET("/ping", h.Ping)
	engine.GET("/state", h.State)
	engine.GET("/", ScreenMiddleware(opts.Screen, ScreenWeb), h.Index)
	engine.NoRoute(h.NoRoute)

	api := engine.Group("/api/v1", ScreenMiddleware(opts.Screen, ScreenNative))
	if opts.APIToken != "" {
		api.Use(AuthMiddleware(opts.APIToken))
	}
	api.GET("/animals", h.ListAnimals)
	api.POST("/animals", h.CreateAnimal)
	api.PUT("/animals/:id", h.UpdateAnimal)
	api.DELETE("/animals/:id", h.DeleteAnimal)
	api.GET("/sales", h.ListSales)
	api.POST("/sales", h.CreateSale)
	api.PUT("/sales/:id", h.UpdateSale)
	api.DELETE("/sales/:id", h.DeleteSale)
	api.GET("/statistics", h.Statistics)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: opts.Logger,
	}
}

// Handler returns the routed engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
