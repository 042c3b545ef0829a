// Package fcp exports compositions as FCPXML documents.
//
// Documents are always built from the structs below and serialized with
// encoding/xml; no element is ever written as a string template.
package fcp

import (
	"encoding/xml"
	"sort"
)

type FCPXML struct {
	XMLName   xml.Name  `xml:"fcpxml"`
	Version   string    `xml:"version,attr"`
	Resources Resources `xml:"resources"`
	Library   Library   `xml:"library"`
}

// Resources contains all assets, formats and effects. IDs are shared across
// every resource kind and handed out by a ResourceRegistry.
type Resources struct {
	Assets  []Asset  `xml:"asset,omitempty"`
	Formats []Format `xml:"format"`
	Effects []Effect `xml:"effect,omitempty"`
}

// Effect is a title effect referenced by <title ref="…">.
type Effect struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	UID  string `xml:"uid,attr,omitempty"`
}

type Format struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr,omitempty"`
	FrameDuration string `xml:"frameDuration,attr,omitempty"`
	Width         string `xml:"width,attr,omitempty"`
	Height        string `xml:"height,attr,omitempty"`
	ColorSpace    string `xml:"colorSpace,attr,omitempty"`
}

// Asset is a media reference. UID is derived from the source name so the
// same media always imports under the same identity.
type Asset struct {
	ID            string   `xml:"id,attr"`
	Name          string   `xml:"name,attr"`
	UID           string   `xml:"uid,attr"`
	Start         string   `xml:"start,attr"`
	HasVideo      string   `xml:"hasVideo,attr"`
	Format        string   `xml:"format,attr"`
	HasAudio      string   `xml:"hasAudio,attr,omitempty"`
	AudioSources  string   `xml:"audioSources,attr,omitempty"`
	AudioChannels string   `xml:"audioChannels,attr,omitempty"`
	AudioRate     string   `xml:"audioRate,attr,omitempty"`
	Duration      string   `xml:"duration,attr"`
	MediaRep      MediaRep `xml:"media-rep"`
}

type MediaRep struct {
	Kind string `xml:"kind,attr"`
	Sig  string `xml:"sig,attr"`
	Src  string `xml:"src,attr"`
}

type Library struct {
	Location string  `xml:"location,attr,omitempty"`
	Events   []Event `xml:"event"`
}

type Event struct {
	Name     string    `xml:"name,attr"`
	UID      string    `xml:"uid,attr,omitempty"`
	Projects []Project `xml:"project"`
}

type Project struct {
	Name      string     `xml:"name,attr"`
	UID       string     `xml:"uid,attr,omitempty"`
	Sequences []Sequence `xml:"sequence"`
}

type Sequence struct {
	Format      string `xml:"format,attr"`
	Duration    string `xml:"duration,attr"`
	TCStart     string `xml:"tcStart,attr"`
	TCFormat    string `xml:"tcFormat,attr"`
	AudioLayout string `xml:"audioLayout,attr"`
	AudioRate   string `xml:"audioRate,attr"`
	Spine       Spine  `xml:"spine"`
}

// Spine is the primary storyline. Elements are appended to the typed slices
// and serialized in offset order.
type Spine struct {
	XMLName    xml.Name    `xml:"spine"`
	AssetClips []AssetClip `xml:"asset-clip,omitempty"`
	Gaps       []Gap       `xml:"gap,omitempty"`
	Titles     []Title     `xml:"title,omitempty"`
}

// MarshalXML writes spine children in chronological order regardless of
// which slice they live in.
func (s Spine) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	type elementWithOffset struct {
		offset  int
		element interface{}
	}
	var elements []elementWithOffset

	for _, clip := range s.AssetClips {
		elements = append(elements, elementWithOffset{ParseFrames(clip.Offset), clip})
	}
	for _, title := range s.Titles {
		elements = append(elements, elementWithOffset{ParseFrames(title.Offset), title})
	}
	for _, gap := range s.Gaps {
		elements = append(elements, elementWithOffset{ParseFrames(gap.Offset), gap})
	}

	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].offset < elements[j].offset
	})

	for _, elem := range elements {
		if err := e.Encode(elem.element); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// SpineElement summarizes one storyline element. Offset and Duration are
// in frames.
type SpineElement struct {
	Kind     string
	Name     string
	Offset   int
	Duration int
}

// Elements lists the spine children in offset order.
func (s Spine) Elements() []SpineElement {
	elements := make([]SpineElement, 0, s.Len())
	for _, clip := range s.AssetClips {
		elements = append(elements, SpineElement{"asset-clip", clip.Name, ParseFrames(clip.Offset), ParseFrames(clip.Duration)})
	}
	for _, title := range s.Titles {
		elements = append(elements, SpineElement{"title", title.Name, ParseFrames(title.Offset), ParseFrames(title.Duration)})
	}
	for _, gap := range s.Gaps {
		elements = append(elements, SpineElement{"gap", gap.Name, ParseFrames(gap.Offset), ParseFrames(gap.Duration)})
	}
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Offset < elements[j].Offset
	})
	return elements
}

// Len returns the number of spine elements.
func (s Spine) Len() int {
	return len(s.AssetClips) + len(s.Gaps) + len(s.Titles)
}

type AssetClip struct {
	XMLName  xml.Name `xml:"asset-clip"`
	Ref      string   `xml:"ref,attr"`
	Offset   string   `xml:"offset,attr"`
	Name     string   `xml:"name,attr"`
	Start    string   `xml:"start,attr,omitempty"`
	Duration string   `xml:"duration,attr"`
	Format   string   `xml:"format,attr"`
	TCFormat string   `xml:"tcFormat,attr"`
}

type Gap struct {
	XMLName  xml.Name `xml:"gap"`
	Name     string   `xml:"name,attr"`
	Offset   string   `xml:"offset,attr"`
	Duration string   `xml:"duration,attr"`
}

type Title struct {
	XMLName      xml.Name      `xml:"title"`
	Ref          string        `xml:"ref,attr"`
	Offset       string        `xml:"offset,attr"`
	Name         string        `xml:"name,attr"`
	Duration     string        `xml:"duration,attr"`
	Start        string        `xml:"start,attr,omitempty"`
	Params       []Param       `xml:"param,omitempty"`
	Text         *TitleText    `xml:"text,omitempty"`
	TextStyleDef *TextStyleDef `xml:"text-style-def,omitempty"`
}

type Param struct {
	Name              string             `xml:"name,attr"`
	Key               string             `xml:"key,attr,omitempty"`
	Value             string             `xml:"value,attr,omitempty"`
	KeyframeAnimation *KeyframeAnimation `xml:"keyframeAnimation,omitempty"`
}

type KeyframeAnimation struct {
	Keyframes []Keyframe `xml:"keyframe"`
}

type Keyframe struct {
	Time  string `xml:"time,attr"`
	Value string `xml:"value,attr"`
	Curve string `xml:"curve,attr,omitempty"`
}

type TitleText struct {
	TextStyle TextStyleRef `xml:"text-style"`
}

type TextStyleRef struct {
	Ref  string `xml:"ref,attr"`
	Text string `xml:",chardata"`
}

type TextStyleDef struct {
	ID        string    `xml:"id,attr"`
	TextStyle TextStyle `xml:"text-style"`
}

type TextStyle struct {
	Font      string `xml:"font,attr"`
	FontSize  string `xml:"fontSize,attr"`
	FontFace  string `xml:"fontFace,attr,omitempty"`
	FontColor string `xml:"fontColor,attr"`
	Bold      string `xml:"bold,attr,omitempty"`
	Alignment string `xml:"alignment,attr"`
}
