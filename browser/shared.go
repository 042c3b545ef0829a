// Package browser drives a headless browser against a running editor.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"reeledit/logging"
)

const pageTimeout = 30 * time.Second

// ErrNoEditor is returned when the loaded page has no editor root.
var ErrNoEditor = errors.New("page has no editor root")

// Session represents a headless browser session.
type Session struct {
	Launcher *launcher.Launcher
	Browser  *rod.Browser
	Page     *rod.Page
	log      *zap.SugaredLogger
}

// NewSession launches a headless browser and opens a blank page.
func NewSession(ctx context.Context, log *zap.SugaredLogger) (*Session, error) {
	log = logging.OrNop(log)

	l := launcher.New().Headless(true).Context(ctx)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(url).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.Close()
		l.Cleanup()
		return nil, fmt.Errorf("create page: %w", err)
	}

	log.Debugw("browser launched", "control", url)
	return &Session{
		Launcher: l,
		Browser:  b,
		Page:     page.Timeout(pageTimeout),
		log:      log,
	}, nil
}

// Close cleans up the browser session.
func (s *Session) Close() {
	if s.Page != nil {
		s.Page.Close()
	}
	if s.Browser != nil {
		s.Browser.Close()
	}
	if s.Launcher != nil {
		s.Launcher.Cleanup()
	}
}

// SetViewport resizes the page's layout viewport.
func (s *Session) SetViewport(width, height int) error {
	err := s.Page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// NavigateAndWait navigates to a URL and waits for it to load.
func (s *Session) NavigateAndWait(url string) error {
	if err := s.Page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := s.Page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for page load: %w", err)
	}

	// Let the viewport report and first fetches settle.
	s.Page.WaitRequestIdle(time.Second, nil, nil, nil)()
	return nil
}
