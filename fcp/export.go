package fcp

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"

	"reeledit/composition"
)

const (
	fcpxmlVersion = "1.11"

	textEffectName = "Text"
	textEffectUID  = ".../Titles.localized/Basic Text.localized/Text.localized/Text.moti"

	opacityParamKey = "9999/10003/13260/3296672360/4/3296673134/1000/1044"
)

// ErrOverlap is returned when two segments overlap; the primary storyline
// can only hold back-to-back elements.
var ErrOverlap = errors.New("segments overlap on the storyline")

// ExportOptions names the event and project in the generated library.
type ExportOptions struct {
	EventName   string
	ProjectName string
}

// FromComposition builds an FCPXML document for c. Media segments become
// asset-clips, text segments become titles with a fade-in opacity ramp, and
// holes between segments become gaps.
func FromComposition(c composition.Composition, opts ExportOptions) (*FCPXML, error) {
	if opts.EventName == "" {
		opts.EventName = "reeledit"
	}
	if opts.ProjectName == "" {
		opts.ProjectName = "Timeline"
	}

	ml := &FCPXML{Version: fcpxmlVersion}
	registry := NewResourceRegistry(ml)

	formatID := registry.ReserveNextID()
	registry.RegisterFormat(Format{
		ID:            formatID,
		Name:          fmt.Sprintf("FFVideoFormat%dp%d", c.Height, c.FPS),
		FrameDuration: FrameDuration,
		Width:         strconv.Itoa(c.Width),
		Height:        strconv.Itoa(c.Height),
		ColorSpace:    "1-1-1 (Rec. 709)",
	})

	var spine Spine
	cursor := 0
	for _, seg := range c.Segments {
		if seg.From < cursor {
			return nil, fmt.Errorf("%w: %s starts at frame %d before frame %d", ErrOverlap, seg.ID, seg.From, cursor)
		}
		if seg.From > cursor {
			spine.Gaps = append(spine.Gaps, Gap{
				Name:     "Gap",
				Offset:   FormatFrames(cursor),
				Duration: FormatFrames(seg.From - cursor),
			})
		}

		switch seg.Kind {
		case composition.SegmentMedia:
			asset := ensureAsset(registry, seg, formatID)
			spine.AssetClips = append(spine.AssetClips, AssetClip{
				Ref:      asset.ID,
				Offset:   FormatFrames(seg.From),
				Name:     asset.Name,
				Start:    "0s",
				Duration: FormatFrames(seg.DurationInFrames),
				Format:   formatID,
				TCFormat: "NDF",
			})
		case composition.SegmentText:
			effectID := ensureTextEffect(registry)
			spine.Titles = append(spine.Titles, createTextTitle(seg, effectID))
		default:
			return nil, fmt.Errorf("segment %s: unknown kind %q", seg.ID, seg.Kind)
		}
		cursor = seg.End()
	}

	ml.Library = Library{
		Events: []Event{
			{
				Name: opts.EventName,
				Projects: []Project{
					{
						Name: opts.ProjectName,
						Sequences: []Sequence{
							{
								Format:      formatID,
								Duration:    FormatFrames(c.DurationInFrames),
								TCStart:     "0s",
								TCFormat:    "NDF",
								AudioLayout: "stereo",
								AudioRate:   "48k",
								Spine:       spine,
							},
						},
					},
				},
			},
		},
	}

	return ml, nil
}

// ensureAsset returns the asset for seg.Src, registering it on first use.
// References that differ only in their query share one asset. An asset
// spans the longest segment that references it.
func ensureAsset(registry *ResourceRegistry, seg composition.Segment, formatID string) *Asset {
	uid := GenerateUID(seg.Src)
	if asset, ok := registry.AssetByUID(uid); ok {
		if ParseFrames(asset.Duration) < seg.DurationInFrames {
			asset.Duration = FormatFrames(seg.DurationInFrames)
		}
		return asset
	}

	registry.RegisterAsset(Asset{
		ID:            registry.ReserveNextID(),
		Name:          MediaName(seg.Src),
		UID:           uid,
		Start:         "0s",
		HasVideo:      "1",
		Format:        formatID,
		HasAudio:      "1",
		AudioSources:  "1",
		AudioChannels: "2",
		AudioRate:     "48000",
		Duration:      FormatFrames(seg.DurationInFrames),
		MediaRep: MediaRep{
			Kind: "original-media",
			Sig:  uid,
			Src:  seg.Src,
		},
	})
	asset, _ := registry.AssetByUID(uid)
	return asset
}

// ensureTextEffect registers the Basic Text effect once and returns its ID.
func ensureTextEffect(registry *ResourceRegistry) string {
	if id, ok := registry.EffectID(textEffectName); ok {
		return id
	}
	id := registry.ReserveNextID()
	registry.RegisterEffect(Effect{
		ID:   id,
		Name: textEffectName,
		UID:  textEffectUID,
	})
	return id
}

// createTextTitle builds a centered title whose opacity ramps from 0 to 1
// over the first composition.FadeInFrames frames.
func createTextTitle(seg composition.Segment, effectID string) Title {
	textStyleID := GenerateTextStyleID(seg.Text, seg.ID)

	return Title{
		Ref:      effectID,
		Offset:   FormatFrames(seg.From),
		Name:     seg.Text,
		Duration: FormatFrames(seg.DurationInFrames),
		Start:    "0s",
		Params: []Param{
			{Name: "Alignment", Key: "9999/10003/13260/3296672360/2/354/3296667315/401", Value: "1 (Center)"},
			{
				Name: "Opacity",
				Key:  opacityParamKey,
				KeyframeAnimation: &KeyframeAnimation{
					Keyframes: []Keyframe{
						{Time: "0s", Value: formatOpacity(seg.Opacity(seg.From)), Curve: "linear"},
						{
							Time:  FormatFrames(composition.FadeInFrames),
							Value: formatOpacity(seg.Opacity(seg.From + composition.FadeInFrames)),
							Curve: "linear",
						},
					},
				},
			},
		},
		Text: &TitleText{
			TextStyle: TextStyleRef{
				Ref:  textStyleID,
				Text: seg.Text,
			},
		},
		TextStyleDef: &TextStyleDef{
			ID: textStyleID,
			TextStyle: TextStyle{
				Font:      "Helvetica Neue",
				FontSize:  "96",
				FontColor: "1 1 1 1",
				Bold:      "1",
				Alignment: "center",
			},
		},
	}
}

func formatOpacity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Marshal serializes a document with the XML header and doctype.
func Marshal(ml *FCPXML) ([]byte, error) {
	output, err := xml.MarshalIndent(ml, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal fcpxml: %w", err)
	}
	return []byte(xml.Header + "<!DOCTYPE fcpxml>\n" + string(output)), nil
}

// WriteToFile writes a document to filename.
func WriteToFile(ml *FCPXML, filename string) error {
	data, err := Marshal(ml)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// ParseFCPXML reads a document back from disk.
func ParseFCPXML(filePath string) (*FCPXML, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var ml FCPXML
	if err := xml.Unmarshal(data, &ml); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return &ml, nil
}
