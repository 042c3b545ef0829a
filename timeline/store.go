package timeline

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Default durations in frames for appended items.
const (
	DefaultClipDuration = 300
	DefaultTextDuration = 100
)

// DefaultClipSource is the placeholder media every new clip points at.
const DefaultClipSource = "https://hgwavsootdmvmjdvfiwc.supabase.co/storage/v1/object/public/clips/reactvideoeditor-quality.mp4?t=2024-09-03T02%3A09%3A02.395Z"

// Store owns the clips and text overlays of one editing session. All
// mutation goes through AddClip and AddTextOverlay.
type Store struct {
	mu sync.RWMutex

	clips         []Clip
	overlays      []TextOverlay
	totalDuration int

	// Per-collection ID counters. Numbers are never reused.
	nextClip int
	nextText int

	clipSource   string
	clipDuration int
	textDuration int

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	log *zap.SugaredLogger
}

// Option configures a Store.
type Option func(*Store)

// WithClipSource sets the media reference given to new clips.
func WithClipSource(src string) Option {
	return func(s *Store) {
		if src != "" {
			s.clipSource = src
		}
	}
}

// WithClipDuration sets the frame length of new clips. Non-positive values
// are ignored.
func WithClipDuration(frames int) Option {
	return func(s *Store) {
		if frames > 0 {
			s.clipDuration = frames
		}
	}
}

// WithTextDuration sets the frame length of new text overlays. Non-positive
// values are ignored.
func WithTextDuration(frames int) Option {
	return func(s *Store) {
		if frames > 0 {
			s.textDuration = frames
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nextClip:     1,
		nextText:     1,
		clipSource:   DefaultClipSource,
		clipDuration: DefaultClipDuration,
		textDuration: DefaultTextDuration,
		subs:         make(map[int]func(Snapshot)),
		log:          zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddClip appends a clip right after the latest-ending item.
func (s *Store) AddClip() Clip {
	s.mu.Lock()
	start, duration := LastItem(s.clips, s.overlays)
	clip := Clip{
		ID:       fmt.Sprintf("clip-%d", s.nextClip),
		Start:    start + duration,
		Duration: s.clipDuration,
		Src:      s.clipSource,
		Row:      0,
	}
	s.nextClip++
	s.clips = append(s.clips, clip)
	s.totalDuration = UpdateTotalDuration(s.clips, s.overlays)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debugw("clip added", "id", clip.ID, "start", clip.Start, "duration", clip.Duration, "total", snap.TotalDuration)
	s.notify(snap)
	return clip
}

// AddTextOverlay appends a text overlay right after the latest-ending item.
func (s *Store) AddTextOverlay() TextOverlay {
	s.mu.Lock()
	start, duration := LastItem(s.clips, s.overlays)
	overlay := TextOverlay{
		ID:       fmt.Sprintf("text-%d", s.nextText),
		Start:    start + duration,
		Duration: s.textDuration,
		Text:     fmt.Sprintf("Text %d", s.nextText),
		Row:      0,
	}
	s.nextText++
	s.overlays = append(s.overlays, overlay)
	s.totalDuration = UpdateTotalDuration(s.clips, s.overlays)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debugw("text overlay added", "id", overlay.ID, "start", overlay.Start, "duration", overlay.Duration, "total", snap.TotalDuration)
	s.notify(snap)
	return overlay
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// TotalDuration returns the latest end frame, 0 for an empty store.
func (s *Store) TotalDuration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalDuration
}

// Subscribe registers fn to run after every mutation with the new state.
// The returned func removes the subscription and is safe to call twice.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	clips := make([]Clip, len(s.clips))
	copy(clips, s.clips)
	overlays := make([]TextOverlay, len(s.overlays))
	copy(overlays, s.overlays)
	return Snapshot{
		Clips:         clips,
		TextOverlays:  overlays,
		TotalDuration: s.totalDuration,
	}
}
