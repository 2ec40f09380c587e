package godeck

import (
	"fmt"
	"strings"
)

// SlideLayoutID names the layout behind one deck slide.
type SlideLayoutID struct {
	SlideNumber int    `json:"slide_number"`
	LayoutName  string `json:"layout_name"`
	LayoutID    string `json:"layout_id"`
}

// IdentifySlideLayout reports which layout the n-th slide uses, 1-based.
func IdentifySlideLayout(t *Template, n int) (*SlideLayoutID, error) {
	if n < 1 || n > t.SlideCount() {
		return nil, fmt.Errorf("slide %d %w (1..%d)", n, ErrOutOfRange, t.SlideCount())
	}
	layout, err := t.SlideLayout(n)
	if err != nil {
		return nil, err
	}
	return &SlideLayoutID{
		SlideNumber: n,
		LayoutName:  layout.Name,
		LayoutID:    layout.Token(),
	}, nil
}

// ListSlides returns one row per deck slide in the form
// "[ N] master:layout  |  layout name  |  title".
func ListSlides(t *Template) ([]string, error) {
	rows := make([]string, 0, t.SlideCount())
	for n := 1; n <= t.SlideCount(); n++ {
		tree, err := t.slideShapeTree(n)
		if err != nil {
			return nil, err
		}
		layout, _ := t.SlideLayout(n)
		layoutName := "(unknown layout)"
		if layout != nil {
			layoutName = layout.Name
		}
		rows = append(rows, fmt.Sprintf("[%2d] %s  |  %s  |  %s",
			n, layout.Token(), layoutName, bestEffortTitle(tree)))
	}
	return rows, nil
}

// DescribeSlide returns a text dump of the n-th slide: its layout and
// title, then per-shape placeholder info, effective geometry, and
// paragraph content.
func (t *Template) DescribeSlide(n int) (string, error) {
	tree, err := t.slideShapeTree(n)
	if err != nil {
		return "", err
	}
	layout, _ := t.SlideLayout(n)
	layoutName := "(unknown layout)"
	if layout != nil {
		layoutName = layout.Name
	}

	var b strings.Builder
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Slide %d  |  Layout: %s '%s'\n", n, layout.Token(), layoutName)
	fmt.Fprintf(&b, "Title: %s\n", bestEffortTitle(tree))
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))
	fmt.Fprintf(&b, "\nShapes on slide: %d\n", len(tree.shapes))

	for i, sp := range tree.shapes {
		fmt.Fprintf(&b, "\n[%d] -----------------------------\n", i+1)
		describeShape(&b, sp, layout)
	}
	b.WriteString(rule + "\n")
	return b.String(), nil
}

// describeShape writes one shape block: identity, placeholder binding,
// position and size after layout inheritance, and paragraphs.
func describeShape(b *strings.Builder, sp *parsedShape, layout *Layout) {
	fmt.Fprintf(b, "• Placeholder: type=%s idx=%d\n", sp.phType, sp.idx)
	if sp.name != "" {
		fmt.Fprintf(b, "- Name: %q\n", sp.name)
	}

	left, top, width, height, known := effectiveGeometry(sp, layout)
	if known {
		fmt.Fprintf(b, "- Position: left=%s, top=%s\n", FormatLength(left), FormatLength(top))
		fmt.Fprintf(b, "- Size: width=%s, height=%s\n", FormatLength(width), FormatLength(height))
	} else {
		b.WriteString("- Position: left=N/A, top=N/A\n")
		b.WriteString("- Size: width=N/A, height=N/A\n")
	}

	if len(sp.paras) > 0 {
		fmt.Fprintf(b, "- Paragraphs (%d):\n", len(sp.paras))
		for i, p := range sp.paras {
			fmt.Fprintf(b, "  [%d] level=%d text=%q\n", i, p.level, p.text)
		}
	}
}

// effectiveGeometry resolves a shape's frame: its own xfrm when present,
// otherwise the layout placeholder it inherits from.
func effectiveGeometry(sp *parsedShape, layout *Layout) (left, top, width, height int64, known bool) {
	if sp.hasXfrm {
		return sp.offsetX, sp.offsetY, sp.width, sp.height, true
	}
	if lp := layoutPlaceholderFor(layout, sp.phType, sp.idx); lp != nil {
		return lp.OffsetX, lp.OffsetY, lp.Width, lp.Height, true
	}
	return 0, 0, 0, 0, false
}

// slideShapeTree parses the n-th slide part, 1-based.
func (t *Template) slideShapeTree(n int) (*parsedShapeTree, error) {
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
	return tree, nil
}

// bestEffortTitle retrieves a slide heading: a non-empty title
// placeholder first, then a subtitle, then the first shape with text.
func bestEffortTitle(tree *parsedShapeTree) string {
	for _, sp := range tree.shapes {
		if sp.phType.IsTitleType() {
			if txt := shapeText(sp); txt != "" {
				return txt
			}
		}
	}
	for _, sp := range tree.shapes {
		if sp.phType == PlaceholderSubTitle {
			if txt := shapeText(sp); txt != "" {
				return txt
			}
		}
	}
	for _, sp := range tree.shapes {
		if sp.hasText {
			if txt := shapeText(sp); txt != "" {
				return txt
			}
		}
	}
	return "(no title)"
}

// shapeText joins a shape's paragraphs with newlines, trimmed.
func shapeText(sp *parsedShape) string {
	parts := make([]string, 0, len(sp.paras))
	for _, p := range sp.paras {
		parts = append(parts, p.text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
