package content

import "slices"

// Document is the user-editable content of one project: the text and image
// references every scene renders. It is stored as the opaque `data` payload
// of a project record.
type Document struct {
	Skate              Skate      `json:"skate"`
	Memories           []Memory   `json:"memories"`
	ComicTexts         []string   `json:"comicTexts"`
	Scene2Skate        Gallery    `json:"scene2Skate"`
	Scene4Collage      Collage    `json:"scene4Collage"`
	LetterText         string     `json:"letterText"`
	LetterTitle        string     `json:"letterTitle"`
	CelebrationMessage string     `json:"celebrationMessage"`
	FinalPanel         FinalPanel `json:"finalPanel"`
}

type Skate struct {
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
	Text   string `json:"text"`
}

// Memory is one gallery entry.
type Memory struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

type Gallery struct {
	Images []string `json:"images"`
}

type Collage struct {
	Images   []string `json:"images"`
	Captions []string `json:"captions"`
}

// Panel is one frame of the final comic panel. Image and Sticker are optional.
type Panel struct {
	Text    string `json:"text"`
	Image   string `json:"image,omitempty"`
	Sticker string `json:"sticker,omitempty"`
}

type FinalPanel struct {
	Panel1 Panel `json:"panel1"`
	Panel2 Panel `json:"panel2"`
	Panel3 Panel `json:"panel3"`
	Panel4 Panel `json:"panel4"`
}

// Top-level section names, as they appear on the wire.
const (
	SectionSkate              = "skate"
	SectionMemories           = "memories"
	SectionComicTexts         = "comicTexts"
	SectionScene2Skate        = "scene2Skate"
	SectionScene4Collage      = "scene4Collage"
	SectionLetterText         = "letterText"
	SectionLetterTitle        = "letterTitle"
	SectionCelebrationMessage = "celebrationMessage"
	SectionFinalPanel         = "finalPanel"
)

// Sections lists every top-level section in declaration order.
var Sections = []string{
	SectionSkate,
	SectionMemories,
	SectionComicTexts,
	SectionScene2Skate,
	SectionScene4Collage,
	SectionLetterText,
	SectionLetterTitle,
	SectionCelebrationMessage,
	SectionFinalPanel,
}

// IsSection reports whether name is a known top-level section.
func IsSection(name string) bool { return slices.Contains(Sections, name) }

// Clone returns a deep copy; the result shares no slices with d.
func (d Document) Clone() Document {
	out := d
	out.Memories = slices.Clone(d.Memories)
	out.ComicTexts = slices.Clone(d.ComicTexts)
	out.Scene2Skate.Images = slices.Clone(d.Scene2Skate.Images)
	out.Scene4Collage.Images = slices.Clone(d.Scene4Collage.Images)
	out.Scene4Collage.Captions = slices.Clone(d.Scene4Collage.Captions)
	return out
}

// Equal reports whether d and o hold the same content. Nil and empty lists
// are equal.
func (d Document) Equal(o Document) bool {
	return d.Skate == o.Skate &&
		slices.Equal(d.Memories, o.Memories) &&
		slices.Equal(d.ComicTexts, o.ComicTexts) &&
		slices.Equal(d.Scene2Skate.Images, o.Scene2Skate.Images) &&
		slices.Equal(d.Scene4Collage.Images, o.Scene4Collage.Images) &&
		slices.Equal(d.Scene4Collage.Captions, o.Scene4Collage.Captions) &&
		d.LetterText == o.LetterText &&
		d.LetterTitle == o.LetterTitle &&
		d.CelebrationMessage == o.CelebrationMessage &&
		d.FinalPanel == o.FinalPanel
}
