// Package gate decides whether the editor can be shown at a given viewport
// width.
package gate

import "sync"

// BlockedMaxWidth is the widest viewport, in logical pixels, that is still
// blocked.
const BlockedMaxWidth = 768

// Mode is the editor's display state.
type Mode string

const (
	// ModeDesktop renders the full editor.
	ModeDesktop Mode = "desktop"
	// ModeBlocked renders the unsupported-device message instead.
	ModeBlocked Mode = "blocked"
)

// String returns the string representation of Mode
func (m Mode) String() string {
	return string(m)
}

// IsBlocked reports whether the editor is hidden.
func (m Mode) IsBlocked() bool {
	return m == ModeBlocked
}

func modeFor(width, maxBlocked int) Mode {
	if width <= maxBlocked {
		return ModeBlocked
	}
	return ModeDesktop
}

// Gate tracks the mode across mount and resize events. There is no
// hysteresis: every observation is a pure threshold check.
type Gate struct {
	mu         sync.Mutex
	maxBlocked int
	mode       Mode
	observed   bool
}

// New creates a gate with the given threshold; non-positive values fall
// back to BlockedMaxWidth.
func New(maxBlocked int) *Gate {
	if maxBlocked <= 0 {
		maxBlocked = BlockedMaxWidth
	}
	return &Gate{maxBlocked: maxBlocked, mode: ModeDesktop}
}

// Observe records a viewport width and returns the resulting mode. changed
// is true on the first observation and whenever the mode flips.
func (g *Gate) Observe(width int) (mode Mode, changed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := modeFor(width, g.maxBlocked)
	changed = !g.observed || next != g.mode
	g.mode, g.observed = next, true
	return next, changed
}

// Mode returns the current mode. Before any observation the editor is
// assumed to be on a desktop.
func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Threshold returns the widest blocked width.
func (g *Gate) Threshold() int {
	return g.maxBlocked
}
