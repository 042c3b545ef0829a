package timeline

// UpdateTotalDuration returns the latest end frame across both collections,
// or 0 when both are empty.
func UpdateTotalDuration(clips []Clip, overlays []TextOverlay) int {
	lastClipEnd := 0
	for _, c := range clips {
		lastClipEnd = max(lastClipEnd, c.EndFrame())
	}
	lastOverlayEnd := 0
	for _, o := range overlays {
		lastOverlayEnd = max(lastOverlayEnd, o.EndFrame())
	}
	return max(lastClipEnd, lastOverlayEnd)
}

// PlayerDuration floors total at one frame; a player cannot hold a
// zero-length composition.
func PlayerDuration(total int) int {
	return max(1, total)
}

// LastItem returns the start and duration of the item that ends latest.
// Clips are scanned before overlays and only a strictly later end replaces
// the current pick. With no items the {0, 0} sentinel is returned.
func LastItem(clips []Clip, overlays []TextOverlay) (start, duration int) {
	for _, c := range clips {
		if c.EndFrame() > start+duration {
			start, duration = c.Start, c.Duration
		}
	}
	for _, o := range overlays {
		if o.EndFrame() > start+duration {
			start, duration = o.Start, o.Duration
		}
	}
	return start, duration
}
