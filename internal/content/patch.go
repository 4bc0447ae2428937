package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

// Patch is a partial document keyed by top-level section name. Applying it
// replaces each named section wholesale; it never merges inside a section, so
// callers that change one field of a section send the whole section.
type Patch map[string]json.RawMessage

// PatchOf builds a single-section patch from a Go value.
func PatchOf(section string, v any) (Patch, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", apperr.ErrValidation, section, err)
	}
	return Patch{section: b}, nil
}

// Sections returns the names carried by the patch.
func (p Patch) Sections() []string {
	out := make([]string, 0, len(p))
	for _, s := range Sections {
		if _, ok := p[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that every key is a known section with a non-null value.
func (p Patch) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty patch", apperr.ErrValidation)
	}
	for k, v := range p {
		if !IsSection(k) {
			return fmt.Errorf("%w: unknown section %q", apperr.ErrValidation, k)
		}
		if t := bytes.TrimSpace(v); len(t) == 0 || bytes.Equal(t, []byte("null")) {
			return fmt.Errorf("%w: section %q must not be null", apperr.ErrValidation, k)
		}
	}
	return nil
}

// Apply returns doc with the patch's sections replaced. The merge is
// all-or-nothing: on any error doc is returned untouched.
func Apply(doc Document, p Patch) (Document, error) {
	if err := p.Validate(); err != nil {
		return doc, err
	}
	raw, err := Raw(doc)
	if err != nil {
		return doc, err
	}
	for k, v := range p {
		raw[k] = v
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return doc, fmt.Errorf("%w: encode patch: %v", apperr.ErrValidation, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var out Document
	if err := dec.Decode(&out); err != nil {
		return doc, fmt.Errorf("%w: %s: %v", apperr.ErrValidation, strings.Join(p.Sections(), ","), err)
	}
	return out, nil
}

// Raw splits a document into its encoded top-level sections.
func Raw(doc Document) (map[string]json.RawMessage, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return raw, nil
}

// ImageTarget addresses one image slot in a document.
//
//	skate          Key image1|image2
//	memories       Index
//	scene2Skate    Index
//	scene4Collage  Index
//	finalPanel     Key panel1..panel4
type ImageTarget struct {
	Section string
	Key     string
	Index   int
}

// ImagePatch builds the patch that stores ref in the addressed slot, carrying
// the rest of that section over from doc.
func ImagePatch(doc Document, t ImageTarget, ref string) (Patch, error) {
	bad := func(format string, a ...any) (Patch, error) {
		return nil, fmt.Errorf("%w: image target: "+format, append([]any{apperr.ErrValidation}, a...)...)
	}
	switch t.Section {
	case SectionSkate:
		s := doc.Skate
		switch t.Key {
		case "image1":
			s.Image1 = ref
		case "image2":
			s.Image2 = ref
		default:
			return bad("skate has no image %q", t.Key)
		}
		return PatchOf(SectionSkate, s)
	case SectionMemories:
		if t.Index < 0 || t.Index >= len(doc.Memories) {
			return bad("memory index %d out of range", t.Index)
		}
		m := doc.Clone().Memories
		m[t.Index].Image = ref
		return PatchOf(SectionMemories, m)
	case SectionScene2Skate:
		if t.Index < 0 || t.Index >= len(doc.Scene2Skate.Images) {
			return bad("scene2Skate index %d out of range", t.Index)
		}
		g := doc.Clone().Scene2Skate
		g.Images[t.Index] = ref
		return PatchOf(SectionScene2Skate, g)
	case SectionScene4Collage:
		if t.Index < 0 || t.Index >= len(doc.Scene4Collage.Images) {
			return bad("scene4Collage index %d out of range", t.Index)
		}
		c := doc.Clone().Scene4Collage
		c.Images[t.Index] = ref
		return PatchOf(SectionScene4Collage, c)
	case SectionFinalPanel:
		fp := doc.FinalPanel
		switch t.Key {
		case "panel1":
			fp.Panel1.Image = ref
		case "panel2":
			fp.Panel2.Image = ref
		case "panel3":
			fp.Panel3.Image = ref
		case "panel4":
			fp.Panel4.Image = ref
		default:
			return bad("finalPanel has no panel %q", t.Key)
		}
		return PatchOf(SectionFinalPanel, fp)
	}
	return bad("section %q holds no images", t.Section)
}
