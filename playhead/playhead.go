// Package playhead samples the player's reported frame at a fixed cadence
// and forwards changes to the on-screen marker.
package playhead

import (
	"context"
	"sync"
	"time"

	"reeledit/layout"
)

// FrameSource reports the player's current frame. ok is false while the
// player has no frame to report, and that sample is skipped.
type FrameSource interface {
	CurrentFrame() (frame int, ok bool)
}

// Sample is a frame together with the timeline length it was taken
// against. The marker position depends on both.
type Sample struct {
	Frame int
	Total int
}

// Fraction is the marker position as a fraction of the track width.
func (s Sample) Fraction() float64 {
	return layout.PlayheadFraction(s.Frame, s.Total)
}

// Left is the marker's CSS left offset.
func (s Sample) Left() string {
	return layout.PlayheadCSS(s.Frame, s.Total)
}

// Poller reads Source every Interval and calls OnSample whenever the frame
// or the timeline length differs from the last sample delivered. The marker
// can therefore lag the player by at most one interval.
type Poller struct {
	Source   FrameSource
	Total    func() int
	Interval time.Duration
	OnSample func(Sample)
}

// Run samples until ctx is done. The ticker is released on every return path.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = layout.PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last Sample
	delivered := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame, ok := p.Source.CurrentFrame()
			if !ok {
				continue
			}
			sample := Sample{Frame: frame}
			if p.Total != nil {
				sample.Total = p.Total()
			}
			if delivered && sample == last {
				continue
			}
			last, delivered = sample, true
			if p.OnSample != nil {
				p.OnSample(sample)
			}
		}
	}
}

// Reported is a FrameSource fed by pushes from the player.
type Reported struct {
	mu    sync.Mutex
	frame int
	ok    bool
}

// Report records the player's latest frame.
func (r *Reported) Report(frame int) {
	r.mu.Lock()
	r.frame, r.ok = frame, true
	r.mu.Unlock()
}

// CurrentFrame implements FrameSource.
func (r *Reported) CurrentFrame() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame, r.ok
}
