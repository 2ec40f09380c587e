package godeck

import (
	"bytes"
	"strings"
	"testing"
)

// helper: build a spec's slides onto its template and write the package
// to memory.
func buildDeckBytes(t *testing.T, spec *DeckSpec, opts *BuildOptions) []byte {
	t.Helper()
	tmpl, slides, clearExisting, err := BuildSlides(spec, opts)
	if err != nil {
		t.Fatalf("BuildSlides failed: %v", err)
	}
	w := NewDeckWriter(tmpl)
	w.SetClearExisting(clearExisting)
	for _, sl := range slides {
		w.AppendSlide(sl)
	}
	var buf bytes.Buffer
	if err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	return buf.Bytes()
}

// helper: build a deck in memory and re-open the result.
func roundTripDeck(t *testing.T, spec *DeckSpec, opts *BuildOptions) *Template {
	t.Helper()
	data := buildDeckBytes(t, spec, opts)
	deck, err := ReadTemplateFrom(bytes.NewReader(data), int64(len(data)), "")
	if err != nil {
		t.Fatalf("ReadTemplateFrom failed: %v", err)
	}
	return deck
}

// helper: a small two-slide spec against the built-in template.
func twoSlideSpec() *DeckSpec {
	return &DeckSpec{
		Meta: &MetaSpec{
			Variables: VarMap{"topic": "Latency"},
			Defaults:  &DefaultsSpec{BodySizePt: 20, TitleSizePt: 32},
		},
		Slides: []*SlideSpec{
			{
				Layout: "Two Content",
				Title:  "{{topic}} Overview",
				Regions: map[string]*RegionSpec{
					"left": {Bullets: []*BulletNode{
						{Text: "p50 steady", Children: []*BulletNode{{Text: "cache hit path"}}},
					}},
					"right": {ListType: "number", StartAt: 2, Bullets: []*BulletNode{
						{Text: "shard by key"},
						{Text: "batch writes"},
					}},
				},
				Notes: "Mention the rollout plan.",
			},
			{
				Layout: "Title and Content",
				Title:  "Next Steps",
				Regions: map[string]*RegionSpec{
					"left": {Bullets: []*BulletNode{{Text: "ship it"}}},
				},
			},
		},
	}
}

func TestDeckRoundTrip(t *testing.T) {
	deck := roundTripDeck(t, twoSlideSpec(), nil)

	if deck.SlideCount() != 2 {
		t.Fatalf("slide count = %d, want 2", deck.SlideCount())
	}

	s1, err := deck.ExtractSlide(1)
	if err != nil {
		t.Fatalf("ExtractSlide failed: %v", err)
	}
	if s1.Title != "Latency Overview" {
		t.Errorf("title = %q, variables not expanded", s1.Title)
	}
	if s1.LayoutName != "Two Content" || s1.LayoutToken != "0:2" {
		t.Errorf("layout = %q [%s]", s1.LayoutName, s1.LayoutToken)
	}
	if s1.BodySlots != 2 {
		t.Errorf("body slots = %d, want 2", s1.BodySlots)
	}
	wantLeft := []LevelText{{0, "p50 steady"}, {1, "cache hit path"}}
	if missing := missingLevelText(s1.Left, wantLeft); len(missing) > 0 {
		t.Errorf("left column missing %v; got %v", missing, s1.Left)
	}
	wantRight := []LevelText{{0, "shard by key"}, {0, "batch writes"}}
	if missing := missingLevelText(s1.Right, wantRight); len(missing) > 0 {
		t.Errorf("right column missing %v; got %v", missing, s1.Right)
	}
	if s1.Notes != "Mention the rollout plan." {
		t.Errorf("notes = %q", s1.Notes)
	}

	s2, err := deck.ExtractSlide(2)
	if err != nil {
		t.Fatalf("ExtractSlide failed: %v", err)
	}
	if s2.Title != "Next Steps" || s2.BodySlots != 1 {
		t.Errorf("slide 2 = %q slots=%d", s2.Title, s2.BodySlots)
	}
}

func TestWrittenSlideHasNoPlaceholderGeometry(t *testing.T) {
	data := buildDeckBytes(t, twoSlideSpec(), nil)
	deck, err := ReadTemplateFrom(bytes.NewReader(data), int64(len(data)), "")
	if err != nil {
		t.Fatalf("ReadTemplateFrom failed: %v", err)
	}
	part, ok := deck.Part("ppt/slides/slide1.xml")
	if !ok {
		t.Fatal("slide1.xml missing from output")
	}
	xml := string(part)
	// The only xfrm allowed is the group shape's zero frame; placeholder
	// shapes inherit geometry from the layout.
	if n := strings.Count(xml, "<a:xfrm>"); n != 1 {
		t.Errorf("found %d xfrm elements, want 1 (group shape only)", n)
	}
	if !strings.Contains(xml, "<p:spPr/>") {
		t.Error("placeholder spPr should stay empty")
	}
}

func TestWrittenDeckContentTypes(t *testing.T) {
	deck := roundTripDeck(t, twoSlideSpec(), nil)
	ct, ok := deck.Part("[Content_Types].xml")
	if !ok {
		t.Fatal("[Content_Types].xml missing")
	}
	for _, want := range []string{
		`PartName="/ppt/slides/slide1.xml"`,
		`PartName="/ppt/slides/slide2.xml"`,
		`PartName="/ppt/notesSlides/notesSlide1.xml"`,
	} {
		if !strings.Contains(string(ct), want) {
			t.Errorf("content types missing %s", want)
		}
	}
}

func TestTemplatePartsPassThrough(t *testing.T) {
	tmpl, err := DefaultTemplate()
	if err != nil {
		t.Fatalf("DefaultTemplate failed: %v", err)
	}
	deck := roundTripDeck(t, twoSlideSpec(), nil)

	// Everything but the three patched parts must survive byte-for-byte.
	patched := map[string]bool{
		"[Content_Types].xml":             true,
		"ppt/presentation.xml":            true,
		"ppt/_rels/presentation.xml.rels": true,
	}
	for _, name := range tmpl.PartNames() {
		if patched[name] {
			continue
		}
		orig, _ := tmpl.Part(name)
		got, ok := deck.Part(name)
		if !ok {
			t.Errorf("template part %s dropped from output", name)
			continue
		}
		if !bytes.Equal(orig, got) {
			t.Errorf("template part %s modified", name)
		}
	}
}

func TestClearExistingSlides(t *testing.T) {
	// First build produces a deck with two slides; the second build uses
	// that deck as its template and asks for a clean start.
	data := buildDeckBytes(t, twoSlideSpec(), nil)
	base, err := ReadTemplateFrom(bytes.NewReader(data), int64(len(data)), "")
	if err != nil {
		t.Fatalf("ReadTemplateFrom failed: %v", err)
	}
	if base.SlideCount() != 2 {
		t.Fatalf("base deck has %d slides, want 2", base.SlideCount())
	}

	spec := &DeckSpec{
		Meta: &MetaSpec{ClearExisting: true},
		Slides: []*SlideSpec{{
			Layout: "Title and Content",
			Title:  "Replacement",
			Regions: map[string]*RegionSpec{
				"left": {Bullets: []*BulletNode{{Text: "fresh content"}}},
			},
		}},
	}

	slides := make([]*Slide, 0, 1)
	for _, slideSpec := range spec.Slides {
		layout, _, err := ResolveLayout(base, slideSpec, spec.Meta, false, nil)
		if err != nil {
			t.Fatalf("ResolveLayout failed: %v", err)
		}
		sl := newSlideFromLayout(layout)
		renderSlideContent(sl, slideSpec, spec.Meta, nil, nil)
		slides = append(slides, sl)
	}

	w := NewDeckWriter(base)
	w.SetClearExisting(true)
	for _, sl := range slides {
		w.AppendSlide(sl)
	}
	var buf bytes.Buffer
	if err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	out, err := ReadTemplateFrom(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "")
	if err != nil {
		t.Fatalf("ReadTemplateFrom failed: %v", err)
	}

	if out.SlideCount() != 1 {
		t.Fatalf("slide count after clear = %d, want 1", out.SlideCount())
	}
	s, err := out.ExtractSlide(1)
	if err != nil {
		t.Fatalf("ExtractSlide failed: %v", err)
	}
	if s.Title != "Replacement" {
		t.Errorf("title = %q", s.Title)
	}
	// Cleared slide parts are gone, and the new slide is numbered past
	// the old ones so stale references can never collide.
	if _, ok := out.Part("ppt/slides/slide1.xml"); ok {
		t.Error("cleared slide part still present")
	}
	if path, _ := out.SlidePartPath(1); path != "ppt/slides/slide3.xml" {
		t.Errorf("new slide part = %s, want ppt/slides/slide3.xml", path)
	}
	// The old notes hanging off cleared slides go too.
	if _, ok := out.Part("ppt/notesSlides/notesSlide1.xml"); ok {
		t.Error("cleared notes slide still present")
	}
}

func TestNotesMasterInjection(t *testing.T) {
	tmpl := templateWithoutNotesMaster(t)
	if tmpl.HasNotesMaster() {
		t.Fatal("fixture template should have no notes master")
	}

	spec := &DeckSpec{Slides: []*SlideSpec{{
		Layout: "Title and Content",
		Title:  "Notes here",
		Notes:  "Injected master required.",
	}}}

	layout, _, err := ResolveLayout(tmpl, spec.Slides[0], nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	sl := newSlideFromLayout(layout)
	renderSlideContent(sl, spec.Slides[0], nil, nil, nil)

	w := NewDeckWriter(tmpl)
	w.AppendSlide(sl)
	var buf bytes.Buffer
	if err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	out, err := ReadTemplateFrom(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "")
	if err != nil {
		t.Fatalf("ReadTemplateFrom failed: %v", err)
	}

	if !out.HasNotesMaster() {
		t.Error("notes master not injected")
	}
	s, err := out.ExtractSlide(1)
	if err != nil {
		t.Fatalf("ExtractSlide failed: %v", err)
	}
	if s.Notes != "Injected master required." {
		t.Errorf("notes = %q", s.Notes)
	}
	ct, _ := out.Part("[Content_Types].xml")
	if !strings.Contains(string(ct), "notesMaster") {
		t.Error("content types missing the injected notes master")
	}
}

// templateWithoutNotesMaster strips the built-in template's notes master,
// leaving a package the writer has to complete itself.
func templateWithoutNotesMaster(t *testing.T) *Template {
	t.Helper()
	tmpl, err := DefaultTemplate()
	if err != nil {
		t.Fatalf("DefaultTemplate failed: %v", err)
	}

	drop := map[string]bool{
		"ppt/notesMasters/notesMaster1.xml":            true,
		"ppt/notesMasters/_rels/notesMaster1.xml.rels": true,
	}
	parts := make(map[string][]byte)
	order := make([]string, 0, len(tmpl.PartNames()))
	for _, name := range tmpl.PartNames() {
		if drop[name] {
			continue
		}
		data, _ := tmpl.Part(name)
		s := string(data)
		switch name {
		case "ppt/presentation.xml":
			s = strings.Replace(s, "<p:notesMasterIdLst>\n    <p:notesMasterId r:id=\"rId6\"/>\n  </p:notesMasterIdLst>", "", 1)
			s = strings.Replace(s, `<p:notesMasterIdLst><p:notesMasterId r:id="rId6"/></p:notesMasterIdLst>`, "", 1)
		case "ppt/_rels/presentation.xml.rels":
			s = strings.Replace(s, `<Relationship Id="rId6" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster" Target="notesMasters/notesMaster1.xml"/>`, "", 1)
		case "[Content_Types].xml":
			s = strings.Replace(s, `<Override PartName="/ppt/notesMasters/notesMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"/>`, "", 1)
		}
		parts[name] = []byte(s)
		order = append(order, name)
	}

	stripped, err := newTemplate(parts, order, "")
	if err != nil {
		t.Fatalf("newTemplate failed: %v", err)
	}
	return stripped
}

func TestRelTargetPath(t *testing.T) {
	cases := []struct{ fromDir, target, want string }{
		{"ppt", "ppt/slides/slide1.xml", "slides/slide1.xml"},
		{"ppt/slides", "ppt/slideLayouts/slideLayout2.xml", "../slideLayouts/slideLayout2.xml"},
		{"ppt/notesSlides", "ppt/slides/slide3.xml", "../slides/slide3.xml"},
		{"ppt/notesMasters", "ppt/theme/theme2.xml", "../theme/theme2.xml"},
	}
	for _, c := range cases {
		if got := relTargetPath(c.fromDir, c.target); got != c.want {
			t.Errorf("relTargetPath(%q, %q) = %q, want %q", c.fromDir, c.target, got, c.want)
		}
	}
}

func TestMaxPartIndex(t *testing.T) {
	names := []string{
		"ppt/slides/slide1.xml",
		"ppt/slides/slide12.xml",
		"ppt/slides/slide3.xml",
		"ppt/notesSlides/notesSlide4.xml",
		"ppt/slides/_rels/slide99.xml.rels",
	}
	if got := maxPartIndex(names, slidePartPattern); got != 12 {
		t.Errorf("maxPartIndex slides = %d, want 12", got)
	}
	if got := maxPartIndex(names, notesSlidePartPattern); got != 4 {
		t.Errorf("maxPartIndex notes = %d, want 4", got)
	}
	if got := maxPartIndex(nil, slidePartPattern); got != 0 {
		t.Errorf("maxPartIndex empty = %d, want 0", got)
	}
}

func TestPatchPresentationXMLSelfClosing(t *testing.T) {
	pres := []byte(`<p:presentation><p:sldIdLst/><p:sldSz cx="1" cy="1"/></p:presentation>`)
	out, err := patchPresentationXML(pres, []sldIDEntry{{id: 256, relID: "rId9"}}, false, "")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	want := `<p:sldIdLst><p:sldId id="256" r:id="rId9"/></p:sldIdLst>`
	if !strings.Contains(string(out), want) {
		t.Errorf("self-closing list not expanded:\n%s", out)
	}
}

func TestPatchPresentationXMLMissingList(t *testing.T) {
	pres := []byte(`<p:presentation><p:sldSz cx="1" cy="1"/></p:presentation>`)
	out, err := patchPresentationXML(pres, []sldIDEntry{{id: 256, relID: "rId9"}}, false, "")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<p:sldIdLst>") || strings.Index(s, "<p:sldIdLst>") > strings.Index(s, "<p:sldSz") {
		t.Errorf("list not inserted before sldSz:\n%s", s)
	}
}

func TestPatchPresentationXMLClearKeepsAppend(t *testing.T) {
	pres := []byte(`<p:presentation><p:sldIdLst><p:sldId id="100" r:id="rId2"/></p:sldIdLst><p:sldSz cx="1" cy="1"/></p:presentation>`)
	out, err := patchPresentationXML(pres, []sldIDEntry{{id: 256, relID: "rId9"}}, true, "")
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	s := string(out)
	if strings.Contains(s, `id="100"`) {
		t.Errorf("existing slide id survived clearing:\n%s", s)
	}
	if !strings.Contains(s, `id="256"`) {
		t.Errorf("appended slide id missing:\n%s", s)
	}
}

func TestMaxRelAndSlideIDs(t *testing.T) {
	rels := []xmlRelForRead{{ID: "rId1"}, {ID: "rId17"}, {ID: "rId3"}, {ID: "bogus"}}
	if got := maxRelID(rels); got != 17 {
		t.Errorf("maxRelID = %d, want 17", got)
	}
	pres := []byte(`<p:presentation xmlns:p="x" xmlns:r="y"><p:sldIdLst><p:sldId id="256"/><p:sldId id="301"/></p:sldIdLst></p:presentation>`)
	if got := maxSlideID(pres); got != 301 {
		t.Errorf("maxSlideID = %d, want 301", got)
	}
}
