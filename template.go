package godeck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// ErrOutOfRange reports a slide, master, or layout index outside the
// document's bounds. Match it with errors.Is.
var ErrOutOfRange = errors.New("out of range")

// maxZipEntrySize is the maximum allowed size for a single file extracted from a ZIP.
// This prevents zip bomb attacks. 50 MB is generous for any legitimate PPTX part.
const maxZipEntrySize = 50 << 20 // 50 MB

// maxZipTotalSize is the cumulative limit for all extracted content from a single ZIP.
const maxZipTotalSize = 200 << 20 // 200 MB

// maxZipEntries is the maximum number of files allowed in a ZIP archive.
const maxZipEntries = 10000

// LayoutPlaceholder describes a placeholder on a slide layout or master.
// Geometry is the effective geometry after inheritance, in EMU.
type LayoutPlaceholder struct {
	Type    PlaceholderType
	Idx     int
	Name    string
	OffsetX int64
	OffsetY int64
	Width   int64
	Height  int64
	HasText bool
}

// Master is a slide master and its layouts in document order.
type Master struct {
	Path    string
	Name    string
	Layouts []*Layout

	placeholders []*LayoutPlaceholder
}

// firstPlaceholderOfType returns the first master placeholder of the given
// type in document order, or nil.
func (m *Master) firstPlaceholderOfType(t PlaceholderType) *LayoutPlaceholder {
	for _, ph := range m.placeholders {
		if ph.Type == t {
			return ph
		}
	}
	return nil
}

// Layout is a slide layout belonging to a master.
type Layout struct {
	Path string
	Name string

	master       *Master
	masterIndex  int
	layoutIndex  int
	placeholders []*LayoutPlaceholder
}

// Master returns the master this layout belongs to.
func (l *Layout) Master() *Master { return l.master }

// MasterIndex returns the position of the owning master in the presentation.
func (l *Layout) MasterIndex() int { return l.masterIndex }

// Index returns the position of this layout within its master.
func (l *Layout) Index() int { return l.layoutIndex }

// Placeholders returns the layout's placeholders in document order with
// effective geometry.
func (l *Layout) Placeholders() []*LayoutPlaceholder { return l.placeholders }

// Token returns the "master:layout" token for this layout, e.g. "1:4".
// A nil layout yields "?:?".
func (l *Layout) Token() string {
	if l == nil {
		return "?:?"
	}
	return fmt.Sprintf("%d:%d", l.masterIndex, l.layoutIndex)
}

// BodySlotCount counts the layout's text-capable placeholders that are
// not a title, centered title, or subtitle.
func (l *Layout) BodySlotCount() int {
	return len(l.bodyPlaceholders())
}

// bodyPlaceholders returns the text-capable non-heading placeholders in
// document order.
func (l *Layout) bodyPlaceholders() []*LayoutPlaceholder {
	var bodies []*LayoutPlaceholder
	for _, ph := range l.placeholders {
		switch ph.Type {
		case PlaceholderTitle, PlaceholderCtrTitle, PlaceholderSubTitle:
			continue
		}
		if !ph.HasText {
			continue
		}
		bodies = append(bodies, ph)
	}
	return bodies
}

// Template holds a parsed .pptx template: every part byte-for-byte as
// loaded, plus the master and layout inventory needed for layout
// resolution and placeholder cloning. Unmodified parts pass through
// unchanged when a deck is written.
type Template struct {
	path      string
	parts     map[string][]byte
	partOrder []string

	slideWidth  int64
	slideHeight int64

	masters       []*Master
	layoutsByPath map[string]*Layout

	slidePaths      []string
	slideLayouts    []*Layout
	notesMasterPath string
}

// OpenTemplate reads a .pptx template from disk.
func OpenTemplate(templatePath string) (*Template, error) {
	f, err := os.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat template: %w", err)
	}
	return ReadTemplateFrom(f, info.Size(), templatePath)
}

// openTemplateOrDefault opens the template at path, or the built-in
// template when path is empty.
func openTemplateOrDefault(path string) (*Template, error) {
	if path == "" {
		return DefaultTemplate()
	}
	return OpenTemplate(path)
}

// ReadTemplateFrom reads a .pptx template from an io.ReaderAt.
func ReadTemplateFrom(reader io.ReaderAt, size int64, templatePath string) (*Template, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid reader size: %d", size)
	}
	if size > int64(maxZipTotalSize) {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", size, maxZipTotalSize)
	}

	zr, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	parts := make(map[string][]byte, len(zr.File))
	order := make([]string, 0, len(zr.File))
	var total int64
	for _, zf := range zr.File {
		if strings.HasSuffix(zf.Name, "/") {
			continue
		}
		if zf.UncompressedSize64 > maxZipEntrySize {
			return nil, fmt.Errorf("file %s exceeds maximum allowed size (%d bytes)", zf.Name, maxZipEntrySize)
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in zip: %w", zf.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from zip: %w", zf.Name, err)
		}
		if int64(len(data)) > int64(maxZipEntrySize) {
			return nil, fmt.Errorf("file %s actual size exceeds maximum allowed size", zf.Name)
		}
		total += int64(len(data))
		if total > int64(maxZipTotalSize) {
			return nil, fmt.Errorf("zip contents exceed maximum allowed total size (%d bytes)", maxZipTotalSize)
		}
		if _, dup := parts[zf.Name]; !dup {
			order = append(order, zf.Name)
		}
		parts[zf.Name] = data
	}

	return newTemplate(parts, order, templatePath)
}

// Path returns the file path the template was opened from, or "" for the
// built-in template.
func (t *Template) Path() string { return t.path }

// SlideWidth returns the slide width in EMU.
func (t *Template) SlideWidth() int64 { return t.slideWidth }

// SlideHeight returns the slide height in EMU.
func (t *Template) SlideHeight() int64 { return t.slideHeight }

// Masters returns the slide masters in presentation order.
func (t *Template) Masters() []*Master { return t.masters }

// AllLayouts returns every layout across all masters, in master order.
func (t *Template) AllLayouts() []*Layout {
	var all []*Layout
	for _, m := range t.masters {
		all = append(all, m.Layouts...)
	}
	return all
}

// LayoutAt returns the layout addressed by master and layout index.
func (t *Template) LayoutAt(masterIdx, layoutIdx int) (*Layout, error) {
	if masterIdx < 0 || masterIdx >= len(t.masters) {
		return nil, fmt.Errorf("master index %d %w", masterIdx, ErrOutOfRange)
	}
	m := t.masters[masterIdx]
	if layoutIdx < 0 || layoutIdx >= len(m.Layouts) {
		return nil, fmt.Errorf("layout index %d %w", layoutIdx, ErrOutOfRange)
	}
	return m.Layouts[layoutIdx], nil
}

// SlideCount returns the number of slides already present in the template.
func (t *Template) SlideCount() int { return len(t.slidePaths) }

// SlidePartPath returns the part path of the n-th template slide, 1-based.
func (t *Template) SlidePartPath(n int) (string, error) {
	if n < 1 || n > len(t.slidePaths) {
		return "", fmt.Errorf("slide number %d %w (1..%d)", n, ErrOutOfRange, len(t.slidePaths))
	}
	return t.slidePaths[n-1], nil
}

// SlideLayout returns the layout used by the n-th template slide, 1-based.
func (t *Template) SlideLayout(n int) (*Layout, error) {
	if n < 1 || n > len(t.slideLayouts) {
		return nil, fmt.Errorf("slide number %d %w (1..%d)", n, ErrOutOfRange, len(t.slideLayouts))
	}
	lay := t.slideLayouts[n-1]
	if lay == nil {
		return nil, fmt.Errorf("slide %d has no resolvable layout", n)
	}
	return lay, nil
}

// HasNotesMaster reports whether the template already carries a notes master.
func (t *Template) HasNotesMaster() bool { return t.notesMasterPath != "" }

// PartNames returns the names of all archive parts in their original order.
func (t *Template) PartNames() []string { return t.partOrder }

// Part returns the raw bytes of the named part.
func (t *Template) Part(name string) ([]byte, bool) {
	data, ok := t.parts[name]
	return data, ok
}

func (t *Template) readPart(name string) ([]byte, error) {
	data, ok := t.parts[name]
	if !ok {
		return nil, fmt.Errorf("missing part: %s", name)
	}
	return data, nil
}

// --- Relationship reading ---

type xmlRelForRead struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type xmlRelsForRead struct {
	XMLName       xml.Name        `xml:"Relationships"`
	Relationships []xmlRelForRead `xml:"Relationship"`
}

// relsPathFor returns the relationships part path for a given part, e.g.
// "ppt/presentation.xml" -> "ppt/_rels/presentation.xml.rels".
func relsPathFor(partPath string) string {
	return path.Join(path.Dir(partPath), "_rels", path.Base(partPath)+".rels")
}

// resolveTarget resolves a relationship target against the directory of
// the part that declared it. Targets may be relative ("slideLayouts/x.xml",
// "../slideMasters/y.xml") or rooted ("/ppt/x.xml").
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(baseDir, target)
}

func (t *Template) readRelationships(partPath string) ([]xmlRelForRead, error) {
	data, ok := t.parts[relsPathFor(partPath)]
	if !ok {
		return nil, nil // relationships file may not exist
	}
	var rels xmlRelsForRead
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships for %s: %w", partPath, err)
	}
	return rels.Relationships, nil
}

// relTargetByID resolves a relationship ID to an absolute part path.
func relTargetByID(rels []xmlRelForRead, baseDir, id string) string {
	for _, rel := range rels {
		if rel.ID == id {
			return resolveTarget(baseDir, rel.Target)
		}
	}
	return ""
}

// relTargetByType resolves the first relationship of the given type to an
// absolute part path.
func relTargetByType(rels []xmlRelForRead, baseDir, relType string) string {
	for _, rel := range rels {
		if rel.Type == relType {
			return resolveTarget(baseDir, rel.Target)
		}
	}
	return ""
}

// --- presentation.xml reading ---

type xmlRelIDForRead struct {
	RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xmlSlideSizeForRead struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type xmlPresentationForRead struct {
	XMLName      xml.Name             `xml:"presentation"`
	MasterIDs    []xmlRelIDForRead    `xml:"sldMasterIdLst>sldMasterId"`
	NotesMasters []xmlRelIDForRead    `xml:"notesMasterIdLst>notesMasterId"`
	SlideIDs     []xmlRelIDForRead    `xml:"sldIdLst>sldId"`
	SlideSize    *xmlSlideSizeForRead `xml:"sldSz"`
}

type xmlMasterLayoutsForRead struct {
	XMLName   xml.Name          `xml:"sldMaster"`
	LayoutIDs []xmlRelIDForRead `xml:"sldLayoutIdLst>sldLayoutId"`
}

// newTemplate parses an already-loaded set of package parts into a Template.
func newTemplate(parts map[string][]byte, order []string, templatePath string) (*Template, error) {
	t := &Template{
		path:          templatePath,
		parts:         parts,
		partOrder:     order,
		layoutsByPath: make(map[string]*Layout),
	}

	presData, err := t.readPart("ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	var pres xmlPresentationForRead
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return nil, fmt.Errorf("failed to parse presentation.xml: %w", err)
	}
	if pres.SlideSize == nil {
		return nil, fmt.Errorf("presentation.xml has no sldSz element")
	}
	t.slideWidth = pres.SlideSize.CX
	t.slideHeight = pres.SlideSize.CY

	presRels, err := t.readRelationships("ppt/presentation.xml")
	if err != nil {
		return nil, err
	}

	for mi, mid := range pres.MasterIDs {
		masterPath := relTargetByID(presRels, "ppt", mid.RelID)
		if masterPath == "" {
			return nil, fmt.Errorf("unresolved slide master relationship %q", mid.RelID)
		}
		master, err := t.readMaster(masterPath, mi)
		if err != nil {
			return nil, err
		}
		t.masters = append(t.masters, master)
	}

	for _, sid := range pres.SlideIDs {
		slidePath := relTargetByID(presRels, "ppt", sid.RelID)
		if slidePath == "" {
			continue
		}
		t.slidePaths = append(t.slidePaths, slidePath)

		slideRels, err := t.readRelationships(slidePath)
		if err != nil {
			return nil, err
		}
		layoutPath := relTargetByType(slideRels, path.Dir(slidePath), relTypeSlideLayout)
		t.slideLayouts = append(t.slideLayouts, t.layoutsByPath[layoutPath])
	}

	if len(pres.NotesMasters) > 0 {
		t.notesMasterPath = relTargetByID(presRels, "ppt", pres.NotesMasters[0].RelID)
	}

	return t, nil
}

// readMaster parses a slide master part and its layouts.
func (t *Template) readMaster(masterPath string, masterIdx int) (*Master, error) {
	data, err := t.readPart(masterPath)
	if err != nil {
		return nil, err
	}

	tree, err := parseShapeTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slide master %s: %w", masterPath, err)
	}

	master := &Master{
		Path: masterPath,
		Name: tree.name,
	}
	for _, sp := range tree.shapes {
		master.placeholders = append(master.placeholders, &LayoutPlaceholder{
			Type:    sp.phType,
			Idx:     sp.idx,
			Name:    sp.name,
			OffsetX: sp.offsetX,
			OffsetY: sp.offsetY,
			Width:   sp.width,
			Height:  sp.height,
			HasText: sp.hasText,
		})
	}

	var layoutList xmlMasterLayoutsForRead
	if err := xml.Unmarshal(data, &layoutList); err != nil {
		return nil, fmt.Errorf("failed to parse layout list of %s: %w", masterPath, err)
	}

	masterRels, err := t.readRelationships(masterPath)
	if err != nil {
		return nil, err
	}

	for li, lid := range layoutList.LayoutIDs {
		layoutPath := relTargetByID(masterRels, path.Dir(masterPath), lid.RelID)
		if layoutPath == "" {
			return nil, fmt.Errorf("unresolved slide layout relationship %q in %s", lid.RelID, masterPath)
		}
		layout, err := t.readLayout(layoutPath, master, masterIdx, li)
		if err != nil {
			return nil, err
		}
		master.Layouts = append(master.Layouts, layout)
		t.layoutsByPath[layoutPath] = layout
	}

	return master, nil
}

// readLayout parses a slide layout part. Placeholders missing their own
// geometry inherit it from the master placeholder of the matching type.
func (t *Template) readLayout(layoutPath string, master *Master, masterIdx, layoutIdx int) (*Layout, error) {
	data, err := t.readPart(layoutPath)
	if err != nil {
		return nil, err
	}

	tree, err := parseShapeTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slide layout %s: %w", layoutPath, err)
	}

	layout := &Layout{
		Path:        layoutPath,
		Name:        tree.name,
		master:      master,
		masterIndex: masterIdx,
		layoutIndex: layoutIdx,
	}
	for _, sp := range tree.shapes {
		ph := &LayoutPlaceholder{
			Type:    sp.phType,
			Idx:     sp.idx,
			Name:    sp.name,
			HasText: sp.hasText,
		}
		if sp.hasXfrm {
			ph.OffsetX, ph.OffsetY = sp.offsetX, sp.offsetY
			ph.Width, ph.Height = sp.width, sp.height
		} else if base := master.firstPlaceholderOfType(masterInheritType(sp.phType)); base != nil {
			ph.OffsetX, ph.OffsetY = base.OffsetX, base.OffsetY
			ph.Width, ph.Height = base.Width, base.Height
		}
		layout.placeholders = append(layout.placeholders, ph)
	}

	return layout, nil
}

// masterInheritType maps a layout placeholder type to the master
// placeholder type it inherits geometry from. Titles inherit from the
// master title, date/footer/slide-number from their own kind, and
// everything else from the master body.
func masterInheritType(t PlaceholderType) PlaceholderType {
	switch t {
	case PlaceholderTitle, PlaceholderCtrTitle:
		return PlaceholderTitle
	case PlaceholderDate, PlaceholderFooter, PlaceholderSlideNum:
		return t
	}
	return PlaceholderBody
}

// --- shape tree parsing ---

// parsedParagraph is one paragraph lifted out of a text body.
type parsedParagraph struct {
	level int
	text  string
}

// parsedShape is one placeholder shape lifted out of a shape tree.
type parsedShape struct {
	name    string
	phType  PlaceholderType
	idx     int
	hasXfrm bool
	offsetX int64
	offsetY int64
	width   int64
	height  int64
	hasText bool
	paras   []parsedParagraph
}

// parsedShapeTree is the result of scanning one slide, layout, or master part.
type parsedShapeTree struct {
	name   string
	shapes []*parsedShape
}

// parseShapeTree scans a slide, layout, or master part for its cSld name
// and placeholder shapes. Non-placeholder shapes are skipped. Paragraph
// text concatenates runs and fields, with line breaks as newlines.
func parseShapeTree(data []byte) (*parsedShapeTree, error) {
	tree := &parsedShapeTree{}
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		inSp     bool
		inTxBody bool
		inPara   bool
		inText   bool
		hasPh    bool
		current  *parsedShape
		para     parsedParagraph
		text     strings.Builder
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse shape tree: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "cSld":
				for _, attr := range el.Attr {
					if attr.Name.Local == "name" {
						tree.name = attr.Value
					}
				}
			case "sp":
				inSp = true
				hasPh = false
				current = &parsedShape{}
			case "cNvPr":
				if inSp && current != nil && !inTxBody {
					for _, attr := range el.Attr {
						if attr.Name.Local == "name" {
							current.name = attr.Value
						}
					}
				}
			case "ph":
				if inSp && current != nil {
					hasPh = true
					current.phType = placeholderTypeDefault
					for _, attr := range el.Attr {
						switch attr.Name.Local {
						case "type":
							current.phType = PlaceholderType(attr.Value)
						case "idx":
							if n, err := strconv.Atoi(attr.Value); err == nil {
								current.idx = n
							}
						}
					}
				}
			case "off":
				if inSp && current != nil && !inTxBody {
					current.hasXfrm = true
					for _, attr := range el.Attr {
						switch attr.Name.Local {
						case "x":
							current.offsetX, _ = strconv.ParseInt(attr.Value, 10, 64)
						case "y":
							current.offsetY, _ = strconv.ParseInt(attr.Value, 10, 64)
						}
					}
				}
			case "ext":
				if inSp && current != nil && !inTxBody {
					current.hasXfrm = true
					for _, attr := range el.Attr {
						switch attr.Name.Local {
						case "cx":
							current.width, _ = strconv.ParseInt(attr.Value, 10, 64)
						case "cy":
							current.height, _ = strconv.ParseInt(attr.Value, 10, 64)
						}
					}
				}
			case "txBody":
				if inSp && current != nil {
					inTxBody = true
					current.hasText = true
				}
			case "p":
				if inTxBody {
					inPara = true
					para = parsedParagraph{}
					text.Reset()
				}
			case "pPr":
				if inPara {
					for _, attr := range el.Attr {
						if attr.Name.Local == "lvl" {
							if n, err := strconv.Atoi(attr.Value); err == nil {
								para.level = n
							}
						}
					}
				}
			case "t":
				if inPara {
					inText = true
				}
			case "br":
				if inPara {
					text.WriteString("\n")
				}
			}

		case xml.EndElement:
			switch el.Name.Local {
			case "sp":
				if inSp && current != nil && hasPh {
					tree.shapes = append(tree.shapes, current)
				}
				inSp = false
				current = nil
			case "txBody":
				inTxBody = false
			case "p":
				if inPara {
					para.text = text.String()
					if current != nil {
						current.paras = append(current.paras, para)
					}
					inPara = false
				}
			case "t":
				inText = false
			}

		case xml.CharData:
			if inText {
				text.Write(el)
			}
		}
	}

	return tree, nil
}
