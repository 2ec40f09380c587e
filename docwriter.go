package godeck

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// XML namespace constants
const (
	nsRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"

	ctSlide       = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctNotesSlide  = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ctTheme       = "application/vnd.openxmlformats-officedocument.theme+xml"
)

// DeckWriter writes a deck built on a template back out as a .pptx
// package. Template parts pass through byte-for-byte; appended slides,
// their relationships, content-type overrides and presentation wiring
// are the only additions, so nothing the template authors styled is
// disturbed.
type DeckWriter struct {
	template      *Template
	slides        []*Slide
	clearExisting bool
}

// NewDeckWriter creates a writer over the given template.
func NewDeckWriter(t *Template) *DeckWriter {
	return &DeckWriter{template: t}
}

// AppendSlide adds a built slide to the end of the deck.
func (w *DeckWriter) AppendSlide(s *Slide) {
	w.slides = append(w.slides, s)
}

// Slides returns the slides appended so far.
func (w *DeckWriter) Slides() []*Slide { return w.slides }

// SetClearExisting controls whether slides already present in the
// template are dropped from the output before the new ones are appended.
func (w *DeckWriter) SetClearExisting(clear bool) {
	w.clearExisting = clear
}

// Save writes the deck to a file.
func (w *DeckWriter) Save(outPath string) error {
	dir := filepath.Dir(outPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writeErr := w.WriteTo(f)
	closeErr := f.Close()

	if writeErr != nil {
		// Attempt cleanup on write failure
		os.Remove(outPath)
		return writeErr
	}
	return closeErr
}

var (
	slidePartPattern       = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesSlidePartPattern  = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
	notesMasterPartPattern = regexp.MustCompile(`^ppt/notesMasters/notesMaster(\d+)\.xml$`)
	themePartPattern       = regexp.MustCompile(`^ppt/theme/theme(\d+)\.xml$`)
)

// maxPartIndex returns the highest numeric suffix among part names
// matching the pattern, or 0 when none match. New parts are numbered
// past the maximum so stale references in the template can never
// collide with appended content.
func maxPartIndex(names []string, pattern *regexp.Regexp) int {
	max := 0
	for _, name := range names {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// relTargetPath computes the relative relationship target from a part
// directory to another part, e.g. ("ppt/slides",
// "ppt/slideLayouts/slideLayout2.xml") -> "../slideLayouts/slideLayout2.xml".
func relTargetPath(fromDir, target string) string {
	from := strings.Split(path.Clean(fromDir), "/")
	to := strings.Split(path.Clean(target), "/")
	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}
	segs := make([]string, 0, len(from)-common+len(to)-common)
	for i := common; i < len(from); i++ {
		segs = append(segs, "..")
	}
	segs = append(segs, to[common:]...)
	return path.Join(segs...)
}

// sldIDEntry is one new entry for the presentation's slide ID list.
type sldIDEntry struct {
	id    int
	relID string
}

// newPart is an appended package part, written after the template's own.
type newPart struct {
	name string
	data string
}

// WriteTo writes the deck to an io.Writer as a complete .pptx package.
func (w *DeckWriter) WriteTo(out io.Writer) error {
	if w.template == nil {
		return fmt.Errorf("deck has no template")
	}
	t := w.template

	// Parts dropped from the output when existing slides are cleared:
	// each slide part, its rels, and any notes slide hanging off it.
	removed := make(map[string]bool)
	if w.clearExisting {
		for _, slidePath := range t.slidePaths {
			removed[slidePath] = true
			removed[relsPathFor(slidePath)] = true
			rels, err := t.readRelationships(slidePath)
			if err != nil {
				return err
			}
			if notesPath := relTargetByType(rels, path.Dir(slidePath), relTypeNotesSlide); notesPath != "" {
				removed[notesPath] = true
				removed[relsPathFor(notesPath)] = true
			}
		}
	}

	presRels, err := t.readRelationships("ppt/presentation.xml")
	if err != nil {
		return err
	}
	nextRID := maxRelID(presRels)

	presData, err := t.readPart("ppt/presentation.xml")
	if err != nil {
		return err
	}
	nextSldID := maxSlideID(presData)
	if nextSldID < 255 {
		nextSldID = 255
	}

	slideBase := maxPartIndex(t.partOrder, slidePartPattern)
	notesBase := maxPartIndex(t.partOrder, notesSlidePartPattern)

	// A minimal notes master is injected when the template has none and
	// at least one slide carries speaker notes.
	notesMasterPath := t.notesMasterPath
	injectNotesMaster := false
	if notesMasterPath == "" {
		for _, s := range w.slides {
			if s.HasNotes() {
				injectNotesMaster = true
				break
			}
		}
		if injectNotesMaster {
			num := maxPartIndex(t.partOrder, notesMasterPartPattern) + 1
			notesMasterPath = fmt.Sprintf("ppt/notesMasters/notesMaster%d.xml", num)
		}
	}

	var (
		parts     []newPart
		overrides []xmlOverride
		addedRels []relEntry
		sldIDs    []sldIDEntry
	)

	notesNum := notesBase
	for i, slide := range w.slides {
		num := slideBase + i + 1
		slidePath := fmt.Sprintf("ppt/slides/slide%d.xml", num)

		notesPath := ""
		if slide.HasNotes() {
			notesNum++
			notesPath = fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", notesNum)
		}

		parts = append(parts, newPart{slidePath, w.renderSlideXML(slide)})
		parts = append(parts, newPart{relsPathFor(slidePath), w.renderSlideRelsXML(slide, slidePath, notesPath)})
		overrides = append(overrides, xmlOverride{PartName: "/" + slidePath, ContentType: ctSlide})

		if notesPath != "" {
			parts = append(parts, newPart{notesPath, w.renderNotesSlideXML(slide)})
			parts = append(parts, newPart{relsPathFor(notesPath), renderNotesSlideRelsXML(notesPath, slidePath, notesMasterPath)})
			overrides = append(overrides, xmlOverride{PartName: "/" + notesPath, ContentType: ctNotesSlide})
		}

		nextRID++
		relID := fmt.Sprintf("rId%d", nextRID)
		addedRels = append(addedRels, relEntry{id: relID, relType: relTypeSlide, target: relTargetPath("ppt", slidePath)})

		nextSldID++
		sldIDs = append(sldIDs, sldIDEntry{id: nextSldID, relID: relID})
	}

	notesMasterRelID := ""
	if injectNotesMaster {
		themeNum := maxPartIndex(t.partOrder, themePartPattern) + 1
		themePath := fmt.Sprintf("ppt/theme/theme%d.xml", themeNum)

		parts = append(parts, newPart{notesMasterPath, defaultNotesMasterXML})
		parts = append(parts, newPart{relsPathFor(notesMasterPath), fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="%s"/>
</Relationships>`, nsRelationships, relTypeTheme, relTargetPath(path.Dir(notesMasterPath), themePath))})
		parts = append(parts, newPart{themePath, defaultThemeXML})
		overrides = append(overrides, xmlOverride{PartName: "/" + notesMasterPath, ContentType: ctNotesMaster})
		overrides = append(overrides, xmlOverride{PartName: "/" + themePath, ContentType: ctTheme})

		nextRID++
		notesMasterRelID = fmt.Sprintf("rId%d", nextRID)
		addedRels = append(addedRels, relEntry{id: notesMasterRelID, relType: relTypeNotesMaster, target: relTargetPath("ppt", notesMasterPath)})
	}

	patchedPres, err := patchPresentationXML(presData, sldIDs, w.clearExisting, notesMasterRelID)
	if err != nil {
		return err
	}

	presRelsPath := relsPathFor("ppt/presentation.xml")
	presRelsData, err := t.readPart(presRelsPath)
	if err != nil {
		return err
	}
	patchedPresRels, err := patchRelationships(presRelsData, "ppt", removed, addedRels)
	if err != nil {
		return err
	}

	ctData, err := t.readPart("[Content_Types].xml")
	if err != nil {
		return err
	}
	patchedCT, err := patchContentTypes(ctData, removed, overrides)
	if err != nil {
		return err
	}

	patched := map[string][]byte{
		"[Content_Types].xml":  patchedCT,
		"ppt/presentation.xml": patchedPres,
		presRelsPath:           patchedPresRels,
	}

	zw := zip.NewWriter(out)
	for _, name := range t.partOrder {
		if removed[name] {
			continue
		}
		data := t.parts[name]
		if p, ok := patched[name]; ok {
			data = p
		}
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create %s in zip: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	for _, p := range parts {
		if err := writeRawXMLToZip(zw, p.name, p.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeRawXMLToZip(zw *zip.Writer, partPath string, content string) error {
	fw, err := zw.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create %s in zip: %w", partPath, err)
	}
	_, err = fw.Write([]byte(content))
	return err
}

// maxRelID returns the highest numeric rId among the relationships.
func maxRelID(rels []xmlRelForRead) int {
	max := 0
	for _, rel := range rels {
		n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId"))
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

type xmlSldIDForPatch struct {
	ID int `xml:"id,attr"`
}

type xmlPresentationForPatch struct {
	XMLName  xml.Name           `xml:"presentation"`
	SlideIDs []xmlSldIDForPatch `xml:"sldIdLst>sldId"`
}

// maxSlideID returns the highest slide ID already used in
// presentation.xml, or 0 when the deck has none.
func maxSlideID(presData []byte) int {
	var pres xmlPresentationForPatch
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return 0
	}
	max := 0
	for _, sid := range pres.SlideIDs {
		if sid.ID > max {
			max = sid.ID
		}
	}
	return max
}

// patchPresentationXML appends the new slide IDs to the sldIdLst of the
// template's presentation.xml, optionally clearing the existing entries
// first, and wires in an injected notes master. Everything else in the
// part is left byte-for-byte as the template had it.
func patchPresentationXML(presData []byte, sldIDs []sldIDEntry, clearExisting bool, notesMasterRelID string) ([]byte, error) {
	s := string(presData)

	var entries strings.Builder
	for _, e := range sldIDs {
		entries.WriteString(fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, e.id, e.relID))
	}

	if start := strings.Index(s, "<p:sldIdLst"); start >= 0 {
		tagEnd := strings.Index(s[start:], ">")
		if tagEnd < 0 {
			return nil, fmt.Errorf("presentation.xml has a malformed sldIdLst element")
		}
		tagEnd += start
		if s[tagEnd-1] == '/' {
			s = s[:start] + "<p:sldIdLst>" + entries.String() + "</p:sldIdLst>" + s[tagEnd+1:]
		} else {
			closing := strings.Index(s[tagEnd:], "</p:sldIdLst>")
			if closing < 0 {
				return nil, fmt.Errorf("presentation.xml sldIdLst element is not closed")
			}
			closing += tagEnd
			inner := s[tagEnd+1 : closing]
			if clearExisting {
				inner = ""
			}
			s = s[:tagEnd+1] + inner + entries.String() + s[closing:]
		}
	} else if len(sldIDs) > 0 {
		at := strings.Index(s, "<p:sldSz")
		if at < 0 {
			return nil, fmt.Errorf("presentation.xml has no sldSz element")
		}
		s = s[:at] + "<p:sldIdLst>" + entries.String() + "</p:sldIdLst>" + s[at:]
	}

	if notesMasterRelID != "" {
		lst := fmt.Sprintf(`<p:notesMasterIdLst><p:notesMasterId r:id="%s"/></p:notesMasterIdLst>`, notesMasterRelID)
		if end := strings.Index(s, "</p:sldMasterIdLst>"); end >= 0 {
			at := end + len("</p:sldMasterIdLst>")
			s = s[:at] + lst + s[at:]
		} else if at := strings.Index(s, "<p:sldIdLst"); at >= 0 {
			s = s[:at] + lst + s[at:]
		} else {
			return nil, fmt.Errorf("presentation.xml has no slide master list to anchor the notes master")
		}
	}

	return []byte(s), nil
}

// relEntry is one relationship appended to a rels part.
type relEntry struct {
	id      string
	relType string
	target  string
}

// patchRelationships rewrites a rels part, dropping relationships whose
// targets were removed and appending new ones. Existing entries keep
// their IDs, types, targets and modes.
func patchRelationships(data []byte, baseDir string, removed map[string]bool, added []relEntry) ([]byte, error) {
	var rels xmlRelsForRead
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<Relationships xmlns="%s">`, nsRelationships) + "\n")
	for _, rel := range rels.Relationships {
		if rel.TargetMode != "External" && removed[resolveTarget(baseDir, rel.Target)] {
			continue
		}
		mode := ""
		if rel.TargetMode != "" {
			mode = fmt.Sprintf(` TargetMode="%s"`, xmlEscape(rel.TargetMode))
		}
		sb.WriteString(fmt.Sprintf(`  <Relationship Id="%s" Type="%s" Target="%s"%s/>`,
			xmlEscape(rel.ID), xmlEscape(rel.Type), xmlEscape(rel.Target), mode) + "\n")
	}
	for _, rel := range added {
		sb.WriteString(fmt.Sprintf(`  <Relationship Id="%s" Type="%s" Target="%s"/>`,
			rel.id, rel.relType, xmlEscape(rel.target)) + "\n")
	}
	sb.WriteString("</Relationships>")
	return []byte(sb.String()), nil
}

// --- Content types ---

type xmlContentTypes struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// patchContentTypes drops overrides of removed parts and appends
// overrides for the new ones.
func patchContentTypes(data []byte, removed map[string]bool, added []xmlOverride) ([]byte, error) {
	var ct xmlContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("failed to parse [Content_Types].xml: %w", err)
	}

	kept := make([]xmlOverride, 0, len(ct.Overrides)+len(added))
	for _, o := range ct.Overrides {
		if removed[strings.TrimPrefix(o.PartName, "/")] {
			continue
		}
		kept = append(kept, o)
	}
	ct.Overrides = append(kept, added...)
	ct.Xmlns = nsContentTypes

	out, err := xml.MarshalIndent(ct, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode [Content_Types].xml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// --- Slide XML ---

// renderSlideXML produces the slide part. Placeholder shapes carry no
// xfrm of their own so PowerPoint keeps them glued to the layout's
// geometry; only the text body and its formatting are ours.
func (w *DeckWriter) renderSlideXML(slide *Slide) string {
	var shapesXML strings.Builder
	shapeID := 2 // 1 is reserved for the group shape

	for _, ph := range slide.GetPlaceholders() {
		shapesXML.WriteString(w.renderPlaceholderXML(ph, &shapeID))
	}

	bgXML := ""
	if bg := slide.Background(); bg != nil {
		bgXML = fmt.Sprintf(`    <p:bg>
      <p:bgPr>
        <a:solidFill>
          <a:srgbClr val="%s"/>
        </a:solidFill>
        <a:effectLst/>
      </p:bgPr>
    </p:bg>
`, bg.RGB())
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
%s    <p:spTree>
      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
        <p:cNvGrpSpPr/>
        <p:nvPr/>
      </p:nvGrpSpPr>
      <p:grpSpPr>
        <a:xfrm>
          <a:off x="0" y="0"/>
          <a:ext cx="0" cy="0"/>
          <a:chOff x="0" y="0"/>
          <a:chExt cx="0" cy="0"/>
        </a:xfrm>
      </p:grpSpPr>
%s    </p:spTree>
  </p:cSld>
  <p:clrMapOvr>
    <a:masterClrMapping/>
  </p:clrMapOvr>
</p:sld>`, nsDrawingML, nsOfficeDocRels, nsPresentationML, bgXML, shapesXML.String())
}

func (w *DeckWriter) renderSlideRelsXML(slide *Slide, slidePath, notesPath string) string {
	baseDir := path.Dir(slidePath)
	notesRel := ""
	if notesPath != "" {
		notesRel = fmt.Sprintf("\n  <Relationship Id=\"rId2\" Type=\"%s\" Target=\"%s\"/>",
			relTypeNotesSlide, relTargetPath(baseDir, notesPath))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="%s"/>%s
</Relationships>`, nsRelationships, relTypeSlideLayout,
		relTargetPath(baseDir, slide.Layout().Path), notesRel)
}

func (w *DeckWriter) renderPlaceholderXML(ph *Placeholder, shapeID *int) string {
	id := *shapeID
	*shapeID++

	name := ph.GetName()
	if name == "" {
		name = fmt.Sprintf("Placeholder %d", id)
	}

	idxAttr := ""
	if ph.GetIndex() > 0 {
		idxAttr = fmt.Sprintf(` idx="%d"`, ph.GetIndex())
	}

	var paragraphsXML strings.Builder
	for _, para := range ph.TextFrame().GetParagraphs() {
		paragraphsXML.WriteString(w.renderParagraphXML(para))
	}

	return fmt.Sprintf(`      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="%d" name="%s"/>
          <p:cNvSpPr>
            <a:spLocks noGrp="1"/>
          </p:cNvSpPr>
          <p:nvPr>
            <p:ph type="%s"%s/>
          </p:nvPr>
        </p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          %s
          <a:lstStyle/>
%s        </p:txBody>
      </p:sp>
`, id, xmlEscape(name), ph.GetPlaceholderType(), idxAttr,
		renderBodyPrXML(ph.TextFrame()), paragraphsXML.String())
}

// renderBodyPrXML writes the text body properties: word wrap and the
// autofit mode with its shrink factors.
func renderBodyPrXML(tf *TextFrame) string {
	attrs := ""
	if tf.WordWrapSet() {
		if tf.GetWordWrap() {
			attrs = ` wrap="square"`
		} else {
			attrs = ` wrap="none"`
		}
	}
	if !tf.AutoFitSet() {
		return fmt.Sprintf("<a:bodyPr%s/>", attrs)
	}
	switch tf.GetAutoFit() {
	case AutoFitNone:
		return fmt.Sprintf("<a:bodyPr%s><a:noAutofit/></a:bodyPr>", attrs)
	case AutoFitShape:
		return fmt.Sprintf("<a:bodyPr%s><a:spAutoFit/></a:bodyPr>", attrs)
	default:
		norm := ""
		if scale := tf.GetFontScale(); scale > 0 {
			norm += fmt.Sprintf(` fontScale="%d"`, scale)
		}
		if red := tf.GetLineSpaceReduction(); red > 0 {
			norm += fmt.Sprintf(` lnSpcReduction="%d"`, red)
		}
		return fmt.Sprintf("<a:bodyPr%s><a:normAutofit%s/></a:bodyPr>", attrs, norm)
	}
}

func (w *DeckWriter) renderParagraphXML(para *Paragraph) string {
	attrs := ""
	if para.GetLevel() > 0 {
		attrs = fmt.Sprintf(` lvl="%d"`, para.GetLevel())
	}

	props := ""
	if para.LineSpacingSet() && para.GetLineSpacing() > 0 {
		props += fmt.Sprintf(`
              <a:lnSpc><a:spcPct val="%d"/></a:lnSpc>`, int(math.Round(para.GetLineSpacing()*100000)))
	}
	if para.SpaceBeforeSet() {
		props += fmt.Sprintf(`
              <a:spcBef><a:spcPts val="%d"/></a:spcBef>`, para.GetSpaceBefore())
	}
	if para.SpaceAfterSet() {
		props += fmt.Sprintf(`
              <a:spcAft><a:spcPts val="%d"/></a:spcAft>`, para.GetSpaceAfter())
	}
	if b := para.GetBullet(); b != nil {
		props += renderBulletXML(b)
	}

	var elementsXML strings.Builder
	for _, elem := range para.GetElements() {
		switch e := elem.(type) {
		case *TextRun:
			elementsXML.WriteString(renderTextRunXML(e))
		case *BreakElement:
			elementsXML.WriteString("            <a:br/>\n")
		}
	}

	return fmt.Sprintf(`          <a:p>
            <a:pPr%s>%s
            </a:pPr>
%s          </a:p>
`, attrs, props, elementsXML.String())
}

func renderTextRunXML(tr *TextRun) string {
	attrs := ` lang="en-US"`
	solidFill := ""
	latin := ""

	if f := tr.Font(); f != nil {
		if f.Size > 0 {
			attrs += fmt.Sprintf(` sz="%d"`, int(math.Round(f.Size*100)))
		}
		attrs += ` dirty="0"`
		if f.BoldSet() {
			if f.Bold {
				attrs += ` b="1"`
			} else {
				attrs += ` b="0"`
			}
		}
		if f.ItalicSet() {
			if f.Italic {
				attrs += ` i="1"`
			} else {
				attrs += ` i="0"`
			}
		}
		if f.Color.ARGB != "" {
			solidFill = fmt.Sprintf(`
              <a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, f.Color.RGB())
		}
		if f.Name != "" {
			latin = fmt.Sprintf(`
              <a:latin typeface="%s"/>`, xmlEscape(f.Name))
		}
	} else {
		attrs += ` dirty="0"`
	}

	return fmt.Sprintf(`            <a:r>
              <a:rPr%s>%s%s
              </a:rPr>
              <a:t>%s</a:t>
            </a:r>
`, attrs, solidFill, latin, xmlEscape(tr.GetText()))
}

func renderBulletXML(b *Bullet) string {
	if b.Type == BulletTypeNone {
		return "\n              <a:buNone/>"
	}

	var sb strings.Builder

	if b.Color != nil {
		sb.WriteString(fmt.Sprintf("\n              <a:buClr><a:srgbClr val=\"%s\"/></a:buClr>", b.Color.RGB()))
	}
	if b.Size != 100 && b.Size != 0 {
		sb.WriteString(fmt.Sprintf("\n              <a:buSzPct val=\"%d000\"/>", b.Size))
	}

	switch b.Type {
	case BulletTypeChar:
		if b.Font != "" {
			sb.WriteString(fmt.Sprintf("\n              <a:buFont typeface=\"%s\"/>", xmlEscape(b.Font)))
		}
		sb.WriteString(fmt.Sprintf("\n              <a:buChar char=\"%s\"/>", xmlEscape(b.Style)))
	case BulletTypeNumeric:
		if b.StartAt > 0 {
			sb.WriteString(fmt.Sprintf("\n              <a:buAutoNum type=\"%s\" startAt=\"%d\"/>", b.NumFormat, b.StartAt))
		} else {
			sb.WriteString(fmt.Sprintf("\n              <a:buAutoNum type=\"%s\"/>", b.NumFormat))
		}
	}

	return sb.String()
}

// --- Notes slides ---

func (w *DeckWriter) renderNotesSlideXML(slide *Slide) string {
	var paragraphsXML strings.Builder
	for _, para := range slide.NotesTextFrame().GetParagraphs() {
		paragraphsXML.WriteString(w.renderParagraphXML(para))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr>
        <p:cNvPr id="1" name=""/>
        <p:cNvGrpSpPr/>
        <p:nvPr/>
      </p:nvGrpSpPr>
      <p:grpSpPr>
        <a:xfrm>
          <a:off x="0" y="0"/>
          <a:ext cx="0" cy="0"/>
          <a:chOff x="0" y="0"/>
          <a:chExt cx="0" cy="0"/>
        </a:xfrm>
      </p:grpSpPr>
      <p:sp>
        <p:nvSpPr>
          <p:cNvPr id="2" name="Notes Placeholder"/>
          <p:cNvSpPr>
            <a:spLocks noGrp="1"/>
          </p:cNvSpPr>
          <p:nvPr>
            <p:ph type="body" idx="1"/>
          </p:nvPr>
        </p:nvSpPr>
        <p:spPr/>
        <p:txBody>
          <a:bodyPr/>
          <a:lstStyle/>
%s        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:notes>`, nsDrawingML, nsOfficeDocRels, nsPresentationML, paragraphsXML.String())
}

func renderNotesSlideRelsXML(notesPath, slidePath, notesMasterPath string) string {
	baseDir := path.Dir(notesPath)
	masterRel := ""
	if notesMasterPath != "" {
		masterRel = fmt.Sprintf("\n  <Relationship Id=\"rId2\" Type=\"%s\" Target=\"%s\"/>",
			relTypeNotesMaster, relTargetPath(baseDir, notesMasterPath))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="%s">
  <Relationship Id="rId1" Type="%s" Target="%s"/>%s
</Relationships>`, nsRelationships, relTypeSlide, relTargetPath(baseDir, slidePath), masterRel)
}

func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		// EscapeText writing to strings.Builder never fails, but handle gracefully.
		return s
	}
	return b.String()
}
