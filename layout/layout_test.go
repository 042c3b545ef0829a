package layout

import (
	"testing"

	"reeledit/timeline"
)

func TestBlocks(t *testing.T) {
	s := timeline.NewStore()
	s.AddClip()
	s.AddTextOverlay()
	s.AddClip()

	blocks := Blocks(s.Snapshot())
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}

	tests := []struct {
		label string
		left  float64
		width float64
	}{
		{"Clip 1", 0, 300.0 / 700.0},
		{"Clip 2", 400.0 / 700.0, 300.0 / 700.0},
		{"Text 1", 300.0 / 700.0, 100.0 / 700.0},
	}
	for i, tt := range tests {
		b := blocks[i]
		if b.Label != tt.label {
			t.Errorf("block %d label = %q, want %q", i, b.Label, tt.label)
		}
		if b.Left != tt.left {
			t.Errorf("block %d left = %v, want %v", i, b.Left, tt.left)
		}
		if b.Width != tt.width {
			t.Errorf("block %d width = %v, want %v", i, b.Width, tt.width)
		}
		if b.TopPx != 0 || b.GapPx != BlockGapPx {
			t.Errorf("block %d top/gap = %d/%d", i, b.TopPx, b.GapPx)
		}
		if b.Handles != [2]Handle{HandleLeft, HandleRight} {
			t.Errorf("block %d handles = %v", i, b.Handles)
		}
	}
}

func TestBlockRowBanding(t *testing.T) {
	snap := timeline.Snapshot{
		Clips:         []timeline.Clip{{ID: "clip-1", Start: 0, Duration: 100, Row: 2}},
		TotalDuration: 200,
	}
	b := Blocks(snap)[0]
	if b.TopPx != 88 || b.TopCSS() != "88px" {
		t.Errorf("top = %d (%s), want 88px", b.TopPx, b.TopCSS())
	}
}

func TestBlockCSS(t *testing.T) {
	b := Block{Left: 0.25, Width: 0.5, GapPx: 4}
	if got := b.LeftCSS(); got != "25%" {
		t.Errorf("LeftCSS = %q, want 25%%", got)
	}
	if got := b.WidthCSS(); got != "calc(50% - 4px)" {
		t.Errorf("WidthCSS = %q", got)
	}
}

func TestPlayheadFraction(t *testing.T) {
	tests := []struct {
		frame, total int
		want         float64
	}{
		{0, 700, 0},
		{350, 700, 0.5},
		{700, 700, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := PlayheadFraction(tt.frame, tt.total); got != tt.want {
			t.Errorf("PlayheadFraction(%d, %d) = %v, want %v", tt.frame, tt.total, got, tt.want)
		}
	}
	if got := PlayheadCSS(350, 700); got != "50%" {
		t.Errorf("PlayheadCSS = %q, want 50%%", got)
	}
}

func TestPollInterval(t *testing.T) {
	if PollInterval.Milliseconds() != 33 {
		t.Errorf("PollInterval = %v, want ~33ms", PollInterval)
	}
}
