package godeck

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// LevelText is one paragraph lifted out of a body placeholder: its
// indentation level and plain text.
type LevelText struct {
	Level int
	Text  string
}

// SlideExtract is the readable content of one slide in a finished deck:
// the title, the left and right body columns as (level, text) pairs, the
// number of body slots, and the speaker notes. It is what the round-trip
// check and the inspection commands consume.
type SlideExtract struct {
	Number      int // 1-based position in the deck
	Title       string
	Left        []LevelText
	Right       []LevelText
	BodySlots   int
	Notes       string
	LayoutName  string
	LayoutToken string
}

// extractedShape is a slide shape with its effective geometry after
// layout inheritance. Slides written by this package carry no xfrm on
// their placeholders, so position and size come from the layout.
type extractedShape struct {
	phType  PlaceholderType
	offsetX int64
	hasText bool
	paras   []parsedParagraph
}

// ExtractSlide reads back the content of the n-th slide, 1-based.
func (t *Template) ExtractSlide(n int) (*SlideExtract, error) {
	slidePath, err := t.SlidePartPath(n)
	if err != nil {
		return nil, err
	}
	data, err := t.readPart(slidePath)
	if err != nil {
		return nil, err
	}
	tree, err := parseShapeTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slide %d: %w", n, err)
	}

	var layout *Layout
	if n-1 < len(t.slideLayouts) {
		layout = t.slideLayouts[n-1]
	}

	shapes := make([]*extractedShape, 0, len(tree.shapes))
	for _, sp := range tree.shapes {
		es := &extractedShape{
			phType:  sp.phType,
			offsetX: sp.offsetX,
			hasText: sp.hasText,
			paras:   sp.paras,
		}
		if !sp.hasXfrm {
			if lp := layoutPlaceholderFor(layout, sp.phType, sp.idx); lp != nil {
				es.offsetX = lp.OffsetX
			}
		}
		shapes = append(shapes, es)
	}

	info := &SlideExtract{Number: n}
	if layout != nil {
		info.LayoutName = layout.Name
		info.LayoutToken = layout.Token()
	} else {
		info.LayoutToken = "?:?"
	}

	if title := titleShape(shapes); title != nil {
		var lines []string
		for _, p := range title.paras {
			if p.text != "" {
				lines = append(lines, p.text)
			}
		}
		info.Title = strings.Join(lines, "\n")
	}

	bodies := bodyShapesSorted(shapes)
	info.BodySlots = len(bodies)
	if len(bodies) >= 1 {
		info.Left = shapeLevelText(bodies[0])
	}
	if len(bodies) >= 2 {
		info.Right = shapeLevelText(bodies[1])
	}

	notes, err := t.slideNotesText(slidePath)
	if err != nil {
		return nil, err
	}
	info.Notes = notes

	return info, nil
}

// ExtractSlides reads back every slide in deck order.
func (t *Template) ExtractSlides() ([]*SlideExtract, error) {
	infos := make([]*SlideExtract, 0, t.SlideCount())
	for n := 1; n <= t.SlideCount(); n++ {
		info, err := t.ExtractSlide(n)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// FindSlideByTitle returns the first slide whose normalized title
// matches the wanted one, relaxing to a substring match when no exact
// match exists. Templates sometimes prefix or decorate titles, hence
// the relaxation. Returns nil when no slide matches.
func (t *Template) FindSlideByTitle(want string) (*SlideExtract, error) {
	infos, err := t.ExtractSlides()
	if err != nil {
		return nil, err
	}
	return FindByTitle(infos, want), nil
}

// FindByTitle searches extracted slides for a title match, exact first,
// then substring. Returns nil when nothing matches.
func FindByTitle(infos []*SlideExtract, want string) *SlideExtract {
	wantNorm := strings.ToLower(NormalizeText(want))
	for _, info := range infos {
		if strings.ToLower(NormalizeText(info.Title)) == wantNorm {
			return info
		}
	}
	for _, info := range infos {
		if strings.Contains(strings.ToLower(NormalizeText(info.Title)), wantNorm) {
			return info
		}
	}
	return nil
}

// titleShape picks the slide's title: a title or centered title
// placeholder if present, else the first shape with a text frame.
func titleShape(shapes []*extractedShape) *extractedShape {
	for _, sp := range shapes {
		if sp.phType.IsTitleType() {
			return sp
		}
	}
	for _, sp := range shapes {
		if sp.hasText {
			return sp
		}
	}
	return nil
}

// bodyShapesSorted returns the text-capable body shapes ordered by left
// edge, leftmost first.
func bodyShapesSorted(shapes []*extractedShape) []*extractedShape {
	var bodies []*extractedShape
	for _, sp := range shapes {
		switch sp.phType {
		case PlaceholderTitle, PlaceholderCtrTitle, PlaceholderSubTitle:
			continue
		}
		if !sp.hasText {
			continue
		}
		bodies = append(bodies, sp)
	}
	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].offsetX < bodies[j].offsetX
	})
	return bodies
}

// shapeLevelText lifts every paragraph of a shape out as (level, text),
// empty paragraphs included so spacing survives inspection.
func shapeLevelText(sp *extractedShape) []LevelText {
	out := make([]LevelText, 0, len(sp.paras))
	for _, p := range sp.paras {
		out = append(out, LevelText{Level: p.level, Text: p.text})
	}
	return out
}

// layoutPlaceholderFor matches a slide placeholder to the layout
// placeholder it inherits from: exact type and index first, then index
// alone, then the title family for heading types.
func layoutPlaceholderFor(layout *Layout, phType PlaceholderType, idx int) *LayoutPlaceholder {
	if layout == nil {
		return nil
	}
	for _, lp := range layout.Placeholders() {
		if lp.Type == phType && lp.Idx == idx {
			return lp
		}
	}
	if idx > 0 {
		for _, lp := range layout.Placeholders() {
			if lp.Idx == idx {
				return lp
			}
		}
	}
	if phType.IsTitleType() {
		for _, lp := range layout.Placeholders() {
			if lp.Type.IsTitleType() {
				return lp
			}
		}
	}
	return nil
}

// slideNotesText follows the slide's notes relationship and returns the
// notes body text, or "" when the slide has no notes.
func (t *Template) slideNotesText(slidePath string) (string, error) {
	rels, err := t.readRelationships(slidePath)
	if err != nil {
		return "", err
	}
	notesPath := relTargetByType(rels, path.Dir(slidePath), relTypeNotesSlide)
	if notesPath == "" {
		return "", nil
	}
	data, ok := t.parts[notesPath]
	if !ok {
		return "", nil
	}
	tree, err := parseShapeTree(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse notes of %s: %w", slidePath, err)
	}
	for _, sp := range tree.shapes {
		if sp.phType != PlaceholderBody || len(sp.paras) == 0 {
			continue
		}
		lines := make([]string, 0, len(sp.paras))
		for _, p := range sp.paras {
			lines = append(lines, p.text)
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", nil
}
