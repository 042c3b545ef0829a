package script

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"reeledit/timeline"
)

func TestParseAndApply(t *testing.T) {
	s, err := Parse([]byte("ops: [clip, Text, CLIP]\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	snap := s.Apply(timeline.NewStore(s.StoreOptions()...))
	if len(snap.Clips) != 2 || len(snap.TextOverlays) != 1 {
		t.Fatalf("got %d clips, %d overlays", len(snap.Clips), len(snap.TextOverlays))
	}
	if snap.Clips[1].Start != 400 || snap.TotalDuration != 700 {
		t.Errorf("clip-2 start = %d, total = %d; want 400, 700", snap.Clips[1].Start, snap.TotalDuration)
	}
}

func TestScriptOverrides(t *testing.T) {
	data := []byte(`
clip_source: https://example.com/a.mp4
clip_duration: 90
ops:
  - clip
  - text
`)
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	snap := s.Apply(timeline.NewStore(s.StoreOptions()...))
	if snap.Clips[0].Src != "https://example.com/a.mp4" || snap.Clips[0].Duration != 90 {
		t.Errorf("unexpected clip %+v", snap.Clips[0])
	}
	if snap.TextOverlays[0].Start != 90 || snap.TextOverlays[0].Duration != timeline.DefaultTextDuration {
		t.Errorf("unexpected overlay %+v", snap.TextOverlays[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		op   bool
	}{
		{"unknown op", "ops: [clip, sound]\n", true},
		{"bad yaml", "ops: [clip\n", false},
		{"negative duration", "clip_duration: -1\nops: [clip]\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.op != errors.Is(err, ErrUnknownOp) {
				t.Errorf("errors.Is(err, ErrUnknownOp) = %v, want %v (err: %v)", !tt.op, tt.op, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.yaml")
	if err := os.WriteFile(path, []byte("ops: [text, text]\n"), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Ops) != 2 || s.Ops[0] != OpText {
		t.Errorf("unexpected ops %v", s.Ops)
	}

	out, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	again, err := Parse(out)
	if err != nil || len(again.Ops) != 2 {
		t.Errorf("re-parse failed: %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want ErrNotExist", err)
	}
}

func TestFromSnapshotReplays(t *testing.T) {
	src := timeline.NewStore(
		timeline.WithClipSource("https://cdn.example.com/b.mp4"),
		timeline.WithClipDuration(90),
		timeline.WithTextDuration(45),
	)
	src.AddClip()
	src.AddTextOverlay()
	src.AddTextOverlay()
	src.AddClip()
	want := src.Snapshot()

	data, err := FromSnapshot(want).Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v\n%s", err, data)
	}
	wantOps := []Op{OpClip, OpText, OpText, OpClip}
	if !reflect.DeepEqual(s.Ops, wantOps) {
		t.Errorf("ops = %v, want %v", s.Ops, wantOps)
	}

	got := s.Apply(timeline.NewStore(s.StoreOptions()...))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("replayed snapshot = %+v\nwant %+v", got, want)
	}
}

func TestFromSnapshotEmpty(t *testing.T) {
	s := FromSnapshot(timeline.Snapshot{})
	if len(s.Ops) != 0 || s.ClipSource != "" || s.ClipDuration != 0 {
		t.Errorf("unexpected script %+v", s)
	}
	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := Parse(data); err != nil {
		t.Errorf("Parse(%q) failed: %v", data, err)
	}
}
