package fcp

import (
	"fmt"
	"strconv"
	"strings"
)

// FrameRate is the export timebase in frames per second.
const FrameRate = 30

// FrameDuration is the sequence frame duration for FrameRate.
const FrameDuration = "1/30s"

// FormatFrames renders a frame count as an FCPXML rational time.
func FormatFrames(frames int) string {
	if frames == 0 {
		return "0s"
	}
	return fmt.Sprintf("%d/%ds", frames, FrameRate)
}

// ParseFrames converts an FCPXML time back to whole frames at FrameRate.
// It accepts "0s", "N/Ds" and "Ns"; anything else parses as 0.
func ParseFrames(t string) int {
	if !strings.HasSuffix(t, "s") {
		return 0
	}
	t = strings.TrimSuffix(t, "s")

	if num, den, ok := strings.Cut(t, "/"); ok {
		n, err1 := strconv.ParseInt(num, 10, 64)
		d, err2 := strconv.ParseInt(den, 10, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0
		}
		return int(n * FrameRate / d)
	}

	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0
	}
	return int(n * FrameRate)
}
