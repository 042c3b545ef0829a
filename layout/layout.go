// Package layout maps timeline items onto the on-screen track: proportional
// horizontal placement, fixed vertical banding and the play-head marker.
package layout

import (
	"fmt"
	"strconv"
	"time"

	"reeledit/timeline"
)

const (
	// RowHeightPx is the vertical band height per row.
	RowHeightPx = 44
	// BlockGapPx is subtracted from every block width to separate neighbours.
	BlockGapPx = 4
	// PollInterval is the play-head sampling cadence, roughly 30 Hz.
	PollInterval = time.Second / 30
)

// Handle is a resize affordance drawn on a block edge. Handles are
// decorative; nothing acts on them.
type Handle string

const (
	HandleLeft  Handle = "left"
	HandleRight Handle = "right"
)

// Block is the placement of one timeline item. Left and Width are fractions
// of the track width.
type Block struct {
	ID      string        `json:"id"`
	Kind    timeline.Kind `json:"kind"`
	Label   string        `json:"label"`
	Left    float64       `json:"left"`
	Width   float64       `json:"width"`
	GapPx   int           `json:"gapPx"`
	TopPx   int           `json:"topPx"`
	Row     int           `json:"row"`
	Handles [2]Handle     `json:"handles"`
}

// Blocks lays out every item of a snapshot, clips first and then overlays.
// Labels number items within their own collection starting at 1.
func Blocks(snap timeline.Snapshot) []Block {
	total := snap.PlayerDuration()
	items := snap.Items()
	blocks := make([]Block, 0, len(items))
	seen := make(map[timeline.Kind]int, 2)
	for _, item := range items {
		blocks = append(blocks, place(item, seen[item.Kind()], total))
		seen[item.Kind()]++
	}
	return blocks
}

func place(item timeline.Item, index, total int) Block {
	return Block{
		ID:      item.ItemID(),
		Kind:    item.Kind(),
		Label:   fmt.Sprintf("%s %d", item.Kind().Title(), index+1),
		Left:    float64(item.StartFrame()) / float64(total),
		Width:   float64(item.DurationFrames()) / float64(total),
		GapPx:   BlockGapPx,
		TopPx:   item.LaneRow() * RowHeightPx,
		Row:     item.LaneRow(),
		Handles: [2]Handle{HandleLeft, HandleRight},
	}
}

// LeftCSS is the CSS left offset, e.g. "42.857%".
func (b Block) LeftCSS() string {
	return percent(b.Left)
}

// WidthCSS is the CSS width with the gap removed, e.g. "calc(50% - 4px)".
func (b Block) WidthCSS() string {
	return fmt.Sprintf("calc(%s - %dpx)", b.WidthPercentCSS(), b.GapPx)
}

// WidthPercentCSS is the width before the gap is removed, e.g. "50%".
// html/template refuses parentheses in style values, so pages build the
// calc() themselves from this.
func (b Block) WidthPercentCSS() string {
	return percent(b.Width)
}

// TopCSS is the CSS top offset, e.g. "44px".
func (b Block) TopCSS() string {
	return fmt.Sprintf("%dpx", b.TopPx)
}

// PlayheadFraction is the marker position as a fraction of the track width.
func PlayheadFraction(currentFrame, total int) float64 {
	return float64(currentFrame) / float64(timeline.PlayerDuration(total))
}

// PlayheadCSS is PlayheadFraction as a CSS percentage.
func PlayheadCSS(currentFrame, total int) string {
	return percent(PlayheadFraction(currentFrame, total))
}

func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', -1, 64) + "%"
}
