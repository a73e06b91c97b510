package server

import (
	"errors"
	"net/url"
	"sync"

	"github.com/farmkeep/shell/internal/domain"
)

// ScreenKind names the root screen currently presented.
type ScreenKind string

const (
	ScreenNone   ScreenKind = "none"
	ScreenNative ScreenKind = "native"
	ScreenWeb    ScreenKind = "web"
)

// Screen is the presented root screen. It implements router.Presenter and
// is the web renderer of the shell.
type Screen struct {
	mu   sync.RWMutex
	kind ScreenKind
	url  string
}

func NewScreen() *Screen {
	return &Screen{kind: ScreenNone}
}

func (s *Screen) PresentNative() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = ScreenNative
	s.url = ""
	return nil
}

func (s *Screen) PresentWeb(rawURL string) error {
	return s.Load(rawURL)
}

// Load points the web screen at rawURL. Only absolute URLs are accepted.
func (s *Screen) Load(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.ErrMalformedURL{URL: rawURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return domain.ErrMalformedURL{URL: rawURL, Err: errors.New("missing scheme or host")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = ScreenWeb
	s.url = u.String()
	return nil
}

// Current returns the presented screen and, for the web screen, its URL.
func (s *Screen) Current() (ScreenKind, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind, s.url
}
