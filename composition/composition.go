// Package composition turns a timeline snapshot into the declarative scene
// the browser player renders: a time-ordered list of segments plus the
// fixed output format.
package composition

import (
	"sort"

	"reeledit/timeline"
)

// Output format handed to the player.
const (
	FPS    = 30
	Width  = 1920
	Height = 1080

	// FadeInFrames is the length of the text opacity ramp.
	FadeInFrames = 30
)

// SegmentKind selects how a segment is drawn.
type SegmentKind string

const (
	SegmentMedia SegmentKind = "media"
	SegmentText  SegmentKind = "text"
)

// Segment is one renderable, time-bounded unit. It is active over
// [From, From+DurationInFrames).
type Segment struct {
	ID               string      `json:"id"`
	Kind             SegmentKind `json:"kind"`
	From             int         `json:"from"`
	DurationInFrames int         `json:"durationInFrames"`
	Src              string      `json:"src,omitempty"`
	Text             string      `json:"text,omitempty"`
	Row              int         `json:"row"`
}

// End returns the first frame after the segment.
func (s Segment) End() int {
	return s.From + s.DurationInFrames
}

// Active reports whether the segment is visible at a global frame.
func (s Segment) Active(frame int) bool {
	return frame >= s.From && frame < s.End()
}

// LocalFrame converts a global frame into the segment's own timeline.
func (s Segment) LocalFrame(frame int) int {
	return frame - s.From
}

// Opacity returns the segment opacity at a global frame. Media is always
// opaque; text fades in.
func (s Segment) Opacity(frame int) float64 {
	if s.Kind != SegmentText {
		return 1
	}
	return TextOpacity(s.LocalFrame(frame))
}

// TextOpacity ramps linearly from 0 at local frame 0 to 1 at FadeInFrames
// and clamps outside that range.
func TextOpacity(localFrame int) float64 {
	switch {
	case localFrame <= 0:
		return 0
	case localFrame >= FadeInFrames:
		return 1
	}
	return float64(localFrame) / float64(FadeInFrames)
}

// Composition is the full payload for the player.
type Composition struct {
	Segments         []Segment `json:"segments"`
	DurationInFrames int       `json:"durationInFrames"`
	FPS              int       `json:"fps"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	FadeInFrames     int       `json:"fadeInFrames"`
	FadeCurve        []float64 `json:"fadeCurve"`
}

// New builds the composition for a snapshot.
func New(snap timeline.Snapshot) Composition {
	return Composition{
		Segments:         Build(snap.Clips, snap.TextOverlays),
		DurationInFrames: snap.PlayerDuration(),
		FPS:              FPS,
		Width:            Width,
		Height:           Height,
		FadeInFrames:     FadeInFrames,
		FadeCurve:        FadeCurve(),
	}
}

// FadeCurve tabulates TextOpacity for local frames 0 through FadeInFrames.
// The player indexes into it and holds the last value afterwards.
func FadeCurve() []float64 {
	curve := make([]float64, FadeInFrames+1)
	for i := range curve {
		curve[i] = TextOpacity(i)
	}
	return curve
}

// Build merges clips and overlays into segments sorted by start frame.
// Equal starts keep union order: clips before overlays, each in creation
// order.
func Build(clips []timeline.Clip, overlays []timeline.TextOverlay) []Segment {
	segments := make([]Segment, 0, len(clips)+len(overlays))
	for _, c := range clips {
		segments = append(segments, Segment{
			ID:               c.ID,
			Kind:             SegmentMedia,
			From:             c.Start,
			DurationInFrames: c.Duration,
			Src:              c.Src,
			Row:              c.Row,
		})
	}
	for _, o := range overlays {
		segments = append(segments, Segment{
			ID:               o.ID,
			Kind:             SegmentText,
			From:             o.Start,
			DurationInFrames: o.Duration,
			Text:             o.Text,
			Row:              o.Row,
		})
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].From < segments[j].From
	})
	return segments
}

// ActiveAt returns the segments visible at a global frame, in composition
// order.
func (c Composition) ActiveAt(frame int) []Segment {
	var active []Segment
	for _, s := range c.Segments {
		if s.Active(frame) {
			active = append(active, s)
		}
	}
	return active
}

// LastFrame is the final frame the player can show.
func (c Composition) LastFrame() int {
	return c.DurationInFrames - 1
}

// DurationSeconds is the playback length at the composition frame rate.
func (c Composition) DurationSeconds() float64 {
	return float64(c.DurationInFrames) / float64(c.FPS)
}
