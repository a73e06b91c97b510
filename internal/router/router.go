package router

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/farmkeep/shell/internal/domain"
)

// Mask is the set of allowed interface orientations.
type Mask string

const (
	MaskPortrait Mask = "portrait"
	MaskAll      Mask = "all"
)

// Orientation is the rotation policy of the visible screen.
type Orientation struct {
	Mask       Mask `json:"mask"`
	AutoRotate bool `json:"auto_rotate"`
}

// Presenter shows one of the two root screens.
type Presenter interface {
	PresentNative() error
	PresentWeb(url string) error
}

// Router switches the root screen once per process.
type Router struct {
	presenter Presenter
	logger    *slog.Logger

	mu          sync.Mutex
	routed      bool
	orientation Orientation
}

// New creates a router. Until Route is called the decision flow holds the
// screen in portrait.
func New(presenter Presenter, logger *slog.Logger) *Router {
	return &Router{
		presenter:   presenter,
		logger:      logger,
		orientation: Orientation{Mask: MaskPortrait},
	}
}

// Route presents the native screen for an empty url and the web screen otherwise.
// Only the first call has an effect.
func (r *Router) Route(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.routed {
		return domain.ErrAlreadyRouted
	}
	r.routed = true

	if url == "" {
		r.orientation = Orientation{Mask: MaskPortrait, AutoRotate: false}
		r.logger.Info("presenting native screen")
		if err := r.presenter.PresentNative(); err != nil {
			return fmt.Errorf("present native: %w", err)
		}
		return nil
	}

	r.orientation = Orientation{Mask: MaskAll, AutoRotate: true}
	r.logger.Info("presenting web screen", "url", url)
	if err := r.presenter.PresentWeb(url); err != nil {
		return fmt.Errorf("present web: %w", err)
	}
	return nil
}

// Orientation returns the current rotation policy.
func (r *Router) Orientation() Orientation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orientation
}
