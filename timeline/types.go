// Package timeline holds the editor's timeline model: clips and text overlays
// placed on a frame axis, and the store that appends them.
package timeline

// Kind distinguishes the two item collections.
type Kind string

const (
	KindClip Kind = "clip"
	KindText Kind = "text"
)

// Title returns the capitalized kind used in block labels.
func (k Kind) Title() string {
	switch k {
	case KindClip:
		return "Clip"
	case KindText:
		return "Text"
	}
	return string(k)
}

// Item is anything placed on the timeline.
type Item interface {
	ItemID() string
	Kind() Kind
	StartFrame() int
	DurationFrames() int
	EndFrame() int
	LaneRow() int
}

// Clip is a media-backed item.
type Clip struct {
	ID       string `json:"id" yaml:"id"`
	Start    int    `json:"start" yaml:"start"`
	Duration int    `json:"duration" yaml:"duration"`
	Src      string `json:"src" yaml:"src"`
	Row      int    `json:"row" yaml:"row"`
}

func (c Clip) ItemID() string      { return c.ID }
func (c Clip) Kind() Kind          { return KindClip }
func (c Clip) StartFrame() int     { return c.Start }
func (c Clip) DurationFrames() int { return c.Duration }
func (c Clip) EndFrame() int       { return c.Start + c.Duration }
func (c Clip) LaneRow() int        { return c.Row }

// TextOverlay is a literal text label.
type TextOverlay struct {
	ID       string `json:"id" yaml:"id"`
	Start    int    `json:"start" yaml:"start"`
	Duration int    `json:"duration" yaml:"duration"`
	Text     string `json:"text" yaml:"text"`
	Row      int    `json:"row" yaml:"row"`
}

func (o TextOverlay) ItemID() string      { return o.ID }
func (o TextOverlay) Kind() Kind          { return KindText }
func (o TextOverlay) StartFrame() int     { return o.Start }
func (o TextOverlay) DurationFrames() int { return o.Duration }
func (o TextOverlay) EndFrame() int       { return o.Start + o.Duration }
func (o TextOverlay) LaneRow() int        { return o.Row }

// Snapshot is a point-in-time copy of a Store. Slices are owned by the
// snapshot and never aliased by the store.
type Snapshot struct {
	Clips         []Clip        `json:"clips"`
	TextOverlays  []TextOverlay `json:"textOverlays"`
	TotalDuration int           `json:"totalDuration"`
}

// Items returns clips followed by overlays, each in creation order.
func (s Snapshot) Items() []Item {
	items := make([]Item, 0, len(s.Clips)+len(s.TextOverlays))
	for _, c := range s.Clips {
		items = append(items, c)
	}
	for _, o := range s.TextOverlays {
		items = append(items, o)
	}
	return items
}

// PlayerDuration is the frame count handed to the player.
func (s Snapshot) PlayerDuration() int {
	return PlayerDuration(s.TotalDuration)
}
