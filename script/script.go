// Package script replays a list of append operations from a YAML file so a
// timeline can be built without the browser.
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"reeledit/timeline"
)

// Op is one append operation.
type Op string

const (
	OpClip Op = "clip"
	OpText Op = "text"
)

var ErrUnknownOp = errors.New("unknown op")

// Script is the on-disk format:
//
//	clip_source: https://example.com/a.mp4
//	clip_duration: 300
//	text_duration: 100
//	ops: [clip, text, clip]
type Script struct {
	ClipSource   string `yaml:"clip_source,omitempty"`
	ClipDuration int    `yaml:"clip_duration,omitempty"`
	TextDuration int    `yaml:"text_duration,omitempty"`
	Ops          []Op   `yaml:"ops"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates script YAML. Op names are case-insensitive.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, op := range s.Ops {
		norm := Op(strings.ToLower(strings.TrimSpace(string(op))))
		switch norm {
		case OpClip, OpText:
			s.Ops[i] = norm
		default:
			return nil, fmt.Errorf("%w %q at position %d", ErrUnknownOp, op, i)
		}
	}
	if s.ClipDuration < 0 || s.TextDuration < 0 {
		return nil, fmt.Errorf("parse script: durations must not be negative")
	}
	return &s, nil
}

// StoreOptions returns the store settings the script overrides, layered on
// top of base.
func (s *Script) StoreOptions(base ...timeline.Option) []timeline.Option {
	opts := append([]timeline.Option{}, base...)
	return append(opts,
		timeline.WithClipSource(s.ClipSource),
		timeline.WithClipDuration(s.ClipDuration),
		timeline.WithTextDuration(s.TextDuration),
	)
}

// Apply runs the ops against store in order and returns the final state.
func (s *Script) Apply(store *timeline.Store) timeline.Snapshot {
	for _, op := range s.Ops {
		switch op {
		case OpClip:
			store.AddClip()
		case OpText:
			store.AddTextOverlay()
		}
	}
	return store.Snapshot()
}

// FromSnapshot returns the script that rebuilds snap on an empty store.
// Items are appended back to back, so start order is creation order.
func FromSnapshot(snap timeline.Snapshot) *Script {
	items := snap.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartFrame() < items[j].StartFrame()
	})

	s := &Script{Ops: make([]Op, 0, len(items))}
	for _, item := range items {
		switch v := item.(type) {
		case timeline.Clip:
			s.Ops = append(s.Ops, OpClip)
			if s.ClipSource == "" {
				s.ClipSource, s.ClipDuration = v.Src, v.Duration
			}
		case timeline.TextOverlay:
			s.Ops = append(s.Ops, OpText)
			if s.TextDuration == 0 {
				s.TextDuration = v.Duration
			}
		}
	}
	return s
}

// Marshal renders a script back to YAML.
func (s *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
