package godeck

import "strings"

// AutoFitType represents the auto-fit behavior of a text frame.
type AutoFitType int

const (
	AutoFitNone AutoFitType = iota
	AutoFitNormal
	AutoFitShape
)

// TextFrame holds the paragraphs of a placeholder or text box along with
// the body properties that control wrapping and shrink-to-fit.
type TextFrame struct {
	paragraphs      []*Paragraph
	activeParagraph int
	autoFit         AutoFitType
	autoFitSet      bool
	fontScale       int // normAutofit fontScale in thousandths of a percent, 0 means unscaled
	lnSpcReduction  int // normAutofit lnSpcReduction in thousandths of a percent, 0 means none
	wordWrap        bool
	wordWrapSet     bool
}

// NewTextFrame creates a text frame with a single empty paragraph.
func NewTextFrame() *TextFrame {
	return &TextFrame{
		paragraphs: []*Paragraph{NewParagraph()},
	}
}

// GetParagraphs returns all paragraphs.
func (tf *TextFrame) GetParagraphs() []*Paragraph {
	return tf.paragraphs
}

// GetActiveParagraph returns the active paragraph.
func (tf *TextFrame) GetActiveParagraph() *Paragraph {
	if len(tf.paragraphs) == 0 {
		tf.paragraphs = append(tf.paragraphs, NewParagraph())
		tf.activeParagraph = 0
	}
	return tf.paragraphs[tf.activeParagraph]
}

// CreateParagraph appends a new paragraph and makes it active.
func (tf *TextFrame) CreateParagraph() *Paragraph {
	p := NewParagraph()
	tf.paragraphs = append(tf.paragraphs, p)
	tf.activeParagraph = len(tf.paragraphs) - 1
	return p
}

// CreateTextRun creates a text run in the active paragraph.
func (tf *TextFrame) CreateTextRun(text string) *TextRun {
	return tf.GetActiveParagraph().CreateTextRun(text)
}

// Clear removes all content, leaving a single empty paragraph so the frame
// stays well formed. Paragraph formatting is reset along with the text.
func (tf *TextFrame) Clear() {
	tf.paragraphs = []*Paragraph{NewParagraph()}
	tf.activeParagraph = 0
}

// GetText returns the plain text of the frame, paragraphs joined by newlines.
func (tf *TextFrame) GetText() string {
	parts := make([]string, 0, len(tf.paragraphs))
	for _, p := range tf.paragraphs {
		parts = append(parts, p.GetText())
	}
	return strings.Join(parts, "\n")
}

// SetAutoFit sets the auto-fit type.
func (tf *TextFrame) SetAutoFit(fit AutoFitType) {
	tf.autoFit = fit
	tf.autoFitSet = true
}

// GetAutoFit returns the auto-fit type.
func (tf *TextFrame) GetAutoFit() AutoFitType {
	return tf.autoFit
}

// AutoFitSet reports whether an auto-fit type was explicitly set.
// An unset frame inherits fit behavior from its layout.
func (tf *TextFrame) AutoFitSet() bool {
	return tf.autoFitSet
}

// SetFontScale sets the normAutofit font scale in thousandths of a percent
// (62500 means 62.5%). Zero means unscaled.
func (tf *TextFrame) SetFontScale(scale int) {
	tf.fontScale = scale
}

// GetFontScale returns the normAutofit font scale.
func (tf *TextFrame) GetFontScale() int {
	return tf.fontScale
}

// SetLineSpaceReduction sets the normAutofit lnSpcReduction in thousandths
// of a percent (12000 means 12%). Zero means none.
func (tf *TextFrame) SetLineSpaceReduction(v int) {
	tf.lnSpcReduction = v
}

// GetLineSpaceReduction returns the normAutofit lnSpcReduction.
func (tf *TextFrame) GetLineSpaceReduction() int {
	return tf.lnSpcReduction
}

// SetWordWrap sets word wrap.
func (tf *TextFrame) SetWordWrap(wrap bool) {
	tf.wordWrap = wrap
	tf.wordWrapSet = true
}

// GetWordWrap returns the word wrap setting.
func (tf *TextFrame) GetWordWrap() bool {
	return tf.wordWrap
}

// WordWrapSet reports whether word wrap was explicitly set.
func (tf *TextFrame) WordWrapSet() bool {
	return tf.wordWrapSet
}

// Paragraph represents a single text paragraph.
type Paragraph struct {
	elements       []ParagraphElement
	level          int
	bullet         *Bullet
	lineSpacing    float64 // multiple of single line height, 0 means inherit
	lineSpacingSet bool
	spaceBefore    int // hundredths of a point
	spaceBeforeSet bool
	spaceAfter     int // hundredths of a point
	spaceAfterSet  bool
}

// ParagraphElement is the interface for paragraph content.
type ParagraphElement interface {
	GetElementType() string
}

// NewParagraph creates a new empty paragraph.
func NewParagraph() *Paragraph {
	return &Paragraph{
		elements: make([]ParagraphElement, 0),
	}
}

// GetLevel returns the indentation level (0 to 8).
func (p *Paragraph) GetLevel() int {
	return p.level
}

// SetLevel sets the indentation level, clamped to the OOXML range 0 to 8.
func (p *Paragraph) SetLevel(level int) *Paragraph {
	if level < 0 {
		level = 0
	}
	if level > 8 {
		level = 8
	}
	p.level = level
	return p
}

// GetBullet returns the paragraph bullet, nil when inherited.
func (p *Paragraph) GetBullet() *Bullet {
	return p.bullet
}

// SetBullet sets the paragraph bullet.
func (p *Paragraph) SetBullet(b *Bullet) *Paragraph {
	p.bullet = b
	return p
}

// GetLineSpacing returns the line spacing multiple.
func (p *Paragraph) GetLineSpacing() float64 {
	return p.lineSpacing
}

// SetLineSpacing sets the line spacing as a multiple of single spacing.
func (p *Paragraph) SetLineSpacing(multiple float64) *Paragraph {
	p.lineSpacing = multiple
	p.lineSpacingSet = true
	return p
}

// GetSpaceBefore returns the space before the paragraph in hundredths of a point.
func (p *Paragraph) GetSpaceBefore() int {
	return p.spaceBefore
}

// SetSpaceBefore sets the space before the paragraph in points.
// Zero is a valid explicit value and is written to the document.
func (p *Paragraph) SetSpaceBefore(points float64) *Paragraph {
	p.spaceBefore = int(points * 100)
	p.spaceBeforeSet = true
	return p
}

// GetSpaceAfter returns the space after the paragraph in hundredths of a point.
func (p *Paragraph) GetSpaceAfter() int {
	return p.spaceAfter
}

// SetSpaceAfter sets the space after the paragraph in points.
func (p *Paragraph) SetSpaceAfter(points float64) *Paragraph {
	p.spaceAfter = int(points * 100)
	p.spaceAfterSet = true
	return p
}

// LineSpacingSet reports whether line spacing was explicitly set.
func (p *Paragraph) LineSpacingSet() bool { return p.lineSpacingSet }

// SpaceBeforeSet reports whether space before was explicitly set.
func (p *Paragraph) SpaceBeforeSet() bool { return p.spaceBeforeSet }

// SpaceAfterSet reports whether space after was explicitly set.
func (p *Paragraph) SpaceAfterSet() bool { return p.spaceAfterSet }

// GetElements returns all paragraph elements in order.
func (p *Paragraph) GetElements() []ParagraphElement {
	return p.elements
}

// GetRuns returns the text runs of the paragraph, skipping line breaks.
func (p *Paragraph) GetRuns() []*TextRun {
	runs := make([]*TextRun, 0, len(p.elements))
	for _, elem := range p.elements {
		if tr, ok := elem.(*TextRun); ok {
			runs = append(runs, tr)
		}
	}
	return runs
}

// CreateTextRun appends a new text run to the paragraph.
func (p *Paragraph) CreateTextRun(text string) *TextRun {
	tr := &TextRun{text: text}
	p.elements = append(p.elements, tr)
	return tr
}

// CreateBreak appends a line break to the paragraph.
func (p *Paragraph) CreateBreak() *BreakElement {
	br := &BreakElement{}
	p.elements = append(p.elements, br)
	return br
}

// SetText replaces the paragraph content with a single run per line.
// Newlines in the text become line breaks within the paragraph.
func (p *Paragraph) SetText(text string) *Paragraph {
	p.elements = p.elements[:0]
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			p.CreateBreak()
		}
		p.CreateTextRun(line)
	}
	return p
}

// GetText returns the plain text of the paragraph with line breaks as newlines.
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case *TextRun:
			sb.WriteString(e.text)
		case *BreakElement:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// TextRun represents a run of text with optional formatting.
// A nil font inherits every property from the placeholder's list style.
type TextRun struct {
	text string
	font *Font
}

func (tr *TextRun) GetElementType() string { return "textrun" }

// GetText returns the text content.
func (tr *TextRun) GetText() string { return tr.text }

// SetText sets the text content.
func (tr *TextRun) SetText(text string) { tr.text = text }

// GetFont returns the run font, creating an empty one on first access.
func (tr *TextRun) GetFont() *Font {
	if tr.font == nil {
		tr.font = &Font{}
	}
	return tr.font
}

// Font returns the run font without creating one.
func (tr *TextRun) Font() *Font { return tr.font }

// SetFont sets the run font.
func (tr *TextRun) SetFont(f *Font) { tr.font = f }

// BreakElement represents a line break inside a paragraph.
type BreakElement struct{}

func (br *BreakElement) GetElementType() string { return "break" }

// BulletType represents the kind of bullet on a paragraph.
type BulletType int

const (
	BulletTypeNone BulletType = iota
	BulletTypeChar
	BulletTypeNumeric
)

// Bullet describes the bullet formatting of a paragraph.
type Bullet struct {
	Type      BulletType
	Color     *Color
	Size      int    // percent of text size, 100 means same size
	Font      string // bullet typeface
	Style     string // literal bullet character for BulletTypeChar
	NumFormat string // buAutoNum type for BulletTypeNumeric, e.g. "arabicPeriod"
	StartAt   int    // numbering start, 0 omits the startAt attribute
}

// NewBulletNone creates a bullet that suppresses inherited bullets.
func NewBulletNone() *Bullet {
	return &Bullet{Type: BulletTypeNone}
}

// NewBulletChar creates a character bullet.
func NewBulletChar(char string) *Bullet {
	return &Bullet{Type: BulletTypeChar, Style: char, Size: 100}
}

// NewBulletAutoNum creates an auto-numbered bullet with the given format.
func NewBulletAutoNum(format string) *Bullet {
	return &Bullet{Type: BulletTypeNumeric, NumFormat: format, Size: 100}
}
