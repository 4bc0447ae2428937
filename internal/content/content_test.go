package content

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

func TestDefaultsAreIndependentCopies(t *testing.T) {
	a := Defaults()
	a.Memories[0].Caption = "changed"
	a.ComicTexts[0] = "changed"
	b := Defaults()
	require.Equal(t, "The day we met", b.Memories[0].Caption)
	require.Equal(t, "You caught me in your web...", b.ComicTexts[0])
}

func TestMergeDefaults_EmptySeed(t *testing.T) {
	for _, seed := range []string{"", "  ", "null"} {
		doc, err := MergeDefaults([]byte(seed))
		require.NoError(t, err)
		if diff := cmp.Diff(Defaults(), doc); diff != "" {
			t.Fatalf("seed %q: unexpected diff (-want +got):\n%s", seed, diff)
		}
	}
}

func TestMergeDefaults_PartialSeed(t *testing.T) {
	seed := `{"skate":{"text":"Our story"},"letterTitle":"Hi you"}`
	doc, err := MergeDefaults([]byte(seed))
	require.NoError(t, err)

	want := Defaults()
	want.Skate.Text = "Our story"
	want.LetterTitle = "Hi you"
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("unexpected diff (-want +got):\n%s", diff)
	}
}

func TestMergeDefaults_MissingMemoriesKeepsDefaults(t *testing.T) {
	doc, err := MergeDefaults([]byte(`{"comicTexts":["one"]}`))
	require.NoError(t, err)
	require.Equal(t, Defaults().Memories, doc.Memories)
	require.Equal(t, []string{"one"}, doc.ComicTexts)
}

func TestMergeDefaults_ArrayElementsMergeByIndex(t *testing.T) {
	seed := `{"memories":[{"caption":"first"},{"image":"/u/2.png"},{"image":"/u/3.png","caption":"third"},{"caption":"extra"}]}`
	doc, err := MergeDefaults([]byte(seed))
	require.NoError(t, err)
	require.Equal(t, []Memory{
		{Image: "/images/s1.png", Caption: "first"},
		{Image: "/u/2.png", Caption: "Our first adventure"},
		{Image: "/u/3.png", Caption: "third"},
		{Image: "", Caption: "extra"},
	}, doc.Memories)
}

func TestMergeDefaults_KindMismatchFallsBack(t *testing.T) {
	seed := `{"memories":"oops","skate":{"text":42,"image1":"/x.png"},"finalPanel":null,"letterText":["no"]}`
	doc, err := MergeDefaults([]byte(seed))
	require.NoError(t, err)
	def := Defaults()
	require.Equal(t, def.Memories, doc.Memories)
	require.Equal(t, def.Skate.Text, doc.Skate.Text)
	require.Equal(t, "/x.png", doc.Skate.Image1)
	require.Equal(t, def.FinalPanel, doc.FinalPanel)
	require.Equal(t, def.LetterText, doc.LetterText)
}

func TestMergeDefaults_OptionalPanelFieldsFromSeed(t *testing.T) {
	doc, err := MergeDefaults([]byte(`{"finalPanel":{"panel1":{"sticker":"star"}}}`))
	require.NoError(t, err)
	require.Equal(t, "star", doc.FinalPanel.Panel1.Sticker)
	require.Equal(t, Defaults().FinalPanel.Panel1.Text, doc.FinalPanel.Panel1.Text)
	require.Equal(t, Defaults().FinalPanel.Panel4, doc.FinalPanel.Panel4)
}

func TestMergeDefaults_MistypedOptionalFieldKeepsRestOfSeed(t *testing.T) {
	seed := `{"letterTitle":"Mine","finalPanel":{"panel1":{"text":"hi","sticker":7},"panel2":{"image":false}},"comicTexts":["a",3],"unknown":{"x":1}}`
	doc, err := MergeDefaults([]byte(seed))
	require.NoError(t, err)

	want := Defaults()
	want.LetterTitle = "Mine"
	want.FinalPanel.Panel1.Text = "hi"
	want.ComicTexts = []string{"a", want.ComicTexts[1]}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("unexpected diff (-want +got):\n%s", diff)
	}
}

func TestMergeDefaults_MalformedSeed(t *testing.T) {
	for _, seed := range []string{`{"skate":`, `[1,2]`, `"text"`} {
		doc, err := MergeDefaults([]byte(seed))
		require.Error(t, err, seed)
		require.True(t, errors.Is(err, apperr.ErrValidation))
		require.Equal(t, Defaults(), doc)
	}
}

func TestApply_ReplacesOnlyNamedSections(t *testing.T) {
	doc := Defaults()
	before, err := Raw(doc)
	require.NoError(t, err)

	skate := doc.Skate
	skate.Text = "X"
	p, err := PatchOf(SectionSkate, skate)
	require.NoError(t, err)

	got, err := Apply(doc, p)
	require.NoError(t, err)
	require.Equal(t, "X", got.Skate.Text)
	require.Equal(t, doc.Skate.Image1, got.Skate.Image1)

	after, err := Raw(got)
	require.NoError(t, err)
	for _, s := range Sections {
		if s == SectionSkate {
			continue
		}
		require.Equal(t, string(before[s]), string(after[s]), "section %s changed", s)
	}
}

func TestApply_ShallowMergeDropsUnsentNestedFields(t *testing.T) {
	got, err := Apply(Defaults(), Patch{SectionSkate: json.RawMessage(`{"text":"only text"}`)})
	require.NoError(t, err)
	require.Equal(t, "only text", got.Skate.Text)
	require.Empty(t, got.Skate.Image1)
}

func TestApply_IsAllOrNothing(t *testing.T) {
	doc := Defaults()
	cases := []Patch{
		{},
		{"heroText": json.RawMessage(`"hi"`)},
		{SectionMemories: json.RawMessage(`null`)},
		{SectionLetterText: json.RawMessage(`"ok"`), SectionMemories: json.RawMessage(`"not a list"`)},
		{SectionSkate: json.RawMessage(`{"image3":"/x.png"}`)},
	}
	for _, p := range cases {
		got, err := Apply(doc, p)
		require.Error(t, err, "patch %v", p)
		require.True(t, errors.Is(err, apperr.ErrValidation))
		require.Equal(t, doc, got)
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	a := Defaults()
	b := a.Clone()
	b.Memories[1].Caption = "x"
	b.Scene4Collage.Captions[0] = "y"
	require.Equal(t, "Our first adventure", a.Memories[1].Caption)
	require.Equal(t, "The day we met", a.Scene4Collage.Captions[0])
}

func TestImagePatch(t *testing.T) {
	doc := Defaults()

	p, err := ImagePatch(doc, ImageTarget{Section: SectionSkate, Key: "image2"}, "data:image/png;base64,AA==")
	require.NoError(t, err)
	got, err := Apply(doc, p)
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,AA==", got.Skate.Image2)
	require.Equal(t, doc.Skate.Text, got.Skate.Text)

	p, err = ImagePatch(doc, ImageTarget{Section: SectionMemories, Index: 2}, "/u/m3.png")
	require.NoError(t, err)
	got, err = Apply(doc, p)
	require.NoError(t, err)
	require.Equal(t, "/u/m3.png", got.Memories[2].Image)
	require.Equal(t, "Forever tangled together", got.Memories[2].Caption)
	require.Equal(t, "/images/s3.png", doc.Memories[2].Image, "source document must not be mutated")

	p, err = ImagePatch(doc, ImageTarget{Section: SectionFinalPanel, Key: "panel4"}, "/u/p4.png")
	require.NoError(t, err)
	got, err = Apply(doc, p)
	require.NoError(t, err)
	require.Equal(t, "/u/p4.png", got.FinalPanel.Panel4.Image)
	require.Equal(t, "heart", got.FinalPanel.Panel4.Sticker)

	_, err = ImagePatch(doc, ImageTarget{Section: SectionMemories, Index: 9}, "x")
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = ImagePatch(doc, ImageTarget{Section: SectionLetterText}, "x")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEqual(t *testing.T) {
	a := Defaults()
	require.True(t, a.Equal(a.Clone()))

	b := a.Clone()
	b.FinalPanel.Panel4.Sticker = ""
	require.False(t, a.Equal(b))

	b = a.Clone()
	b.Memories[2].Image = "/u/3.png"
	require.False(t, a.Equal(b))

	var empty, nilLists Document
	empty.ComicTexts = []string{}
	require.True(t, empty.Equal(nilLists))
}
