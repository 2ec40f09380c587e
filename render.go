package godeck

import (
	"strings"

	"go.uber.org/zap"
)

// flatItem is one rendered paragraph: nesting level, variable-expanded
// text, and the per-paragraph style override.
type flatItem struct {
	level int
	text  string
	style *StyleSpec
}

// flattenBullets walks a bullet forest depth first, parent before
// children, into the flat (level, text, style) sequence the region
// renderer consumes. Sibling order is preserved and variables are
// expanded here so every downstream consumer sees final text.
func flattenBullets(nodes []*BulletNode, variables VarMap) []flatItem {
	var out []flatItem
	var walk func(nodes []*BulletNode, level int)
	walk = func(nodes []*BulletNode, level int) {
		for _, node := range nodes {
			if node == nil {
				continue
			}
			out = append(out, flatItem{
				level: level,
				text:  expandVars(node.Text, variables),
				style: node.Style,
			})
			walk(node.Children, level+1)
		}
	}
	walk(nodes, 0)
	return out
}

// applyTextStyle applies a style to ALL runs in the paragraph, not just
// the first. Template theme formatting is per run, so styling one run
// would leave later runs on inherited formatting.
func applyTextStyle(p *Paragraph, style *StyleSpec, fontFamily string, sizeDefaultPt float64) {
	if len(p.GetRuns()) == 0 {
		p.CreateTextRun("")
	}
	sizePt := sizeDefaultPt
	if style != nil && style.SizePt > 0 {
		sizePt = style.SizePt
	}
	for _, run := range p.GetRuns() {
		font := run.GetFont()
		if style != nil && style.Bold != nil {
			font.SetBold(*style.Bold)
		}
		if style != nil && style.Italic != nil {
			font.SetItalic(*style.Italic)
		}
		if sizePt > 0 {
			font.SetSize(sizePt)
		}
		if style != nil && style.Color != "" {
			font.SetColor(NewColor(style.Color))
		}
		if fontFamily != "" {
			font.SetName(fontFamily)
		}
	}
}

// tightenParagraphSpacing removes template spacing that blocks autofit:
// zero space before and after, single line spacing.
func tightenParagraphSpacing(p *Paragraph) {
	p.SetSpaceBefore(0)
	p.SetSpaceAfter(0)
	p.SetLineSpacing(1.0)
}

func setNoBullets(p *Paragraph) {
	p.SetBullet(NewBulletNone())
}

func setBulletChar(p *Paragraph, char string) {
	p.SetBullet(NewBulletChar(char))
}

// setNumbering applies true auto-numbering. startAt is only written on
// the first top-level paragraph of a numbered region; zero omits it so
// every later paragraph continues the sequence.
func setNumbering(p *Paragraph, startAt int, numType string) {
	b := NewBulletAutoNum(numType)
	if startAt > 0 {
		b.StartAt = startAt
	}
	p.SetBullet(b)
}

// appendRegionParagraphs renders a region's bullets or numbered items
// into an existing text frame. With useFirstPara set the frame's first
// paragraph is reused for the first item instead of appending, which is
// how a freshly cleared frame avoids a leading empty paragraph.
func appendRegionParagraphs(tf *TextFrame, region *RegionSpec, defaults *DefaultsSpec, variables VarMap, useFirstPara bool) {
	listType := "bullet"
	var bodySizePt float64
	var fontFamily string
	if defaults != nil {
		if defaults.ListType != "" {
			listType = defaults.ListType
		}
		bodySizePt = defaults.BodySizePt
		fontFamily = defaults.FontFamily
	}
	if region.ListType != "" {
		listType = region.ListType
	}
	listType = strings.ToLower(listType)
	startAt := region.StartAt
	if startAt < 1 {
		startAt = 1
	}

	items := flattenBullets(region.Bullets, variables)

	firstUsed := false
	topStarted := false
	for _, item := range items {
		var p *Paragraph
		if useFirstPara && !firstUsed && len(tf.GetParagraphs()) > 0 {
			p = tf.GetParagraphs()[0]
			firstUsed = true
		} else {
			p = tf.CreateParagraph()
		}

		p.SetText(item.text)
		p.SetLevel(item.level)

		if listType == "number" {
			if p.GetLevel() == 0 && !topStarted {
				setNumbering(p, startAt, "arabicPeriod")
				topStarted = true
			} else {
				setNumbering(p, 0, "arabicPeriod")
			}
		} else {
			setBulletChar(p, "•")
		}

		applyTextStyle(p, item.style, fontFamily, bodySizePt)
		tightenParagraphSpacing(p)
	}
}

// applyBackground sets a solid background color when the spec asks for one.
func applyBackground(sl *Slide, bg *BackgroundSpec) {
	if bg == nil || bg.Color == "" {
		return
	}
	sl.SetBackground(NewColor(bg.Color))
}

// renderSlideContent populates one built slide from its spec: background,
// title, left and right regions, speaker notes. A missing title or body
// placeholder skips that part of the spec rather than failing. The font
// cache feeds the shrink pass; nil uses the shared one.
func renderSlideContent(sl *Slide, spec *SlideSpec, meta *MetaSpec, fonts *FontCache, log *zap.Logger) {
	log = ensureLogger(log)
	var variables VarMap
	var defaults *DefaultsSpec
	if meta != nil {
		variables = meta.Variables
		defaults = meta.Defaults
	}
	var titleSizePt, bodySizePt float64
	var fontFamily string
	if defaults != nil {
		titleSizePt = defaults.TitleSizePt
		bodySizePt = defaults.BodySizePt
		fontFamily = defaults.FontFamily
	}

	applyBackground(sl, spec.Background)

	titleTxt := expandVars(spec.Title, variables)
	titlePh := sl.TitlePlaceholder()
	if titlePh != nil && titleTxt != "" {
		tf := titlePh.TextFrame()
		primeTextFrameForShrink(tf)
		tf.Clear()
		p := tf.GetParagraphs()[0]
		p.SetText(titleTxt)
		applyTextStyle(p, spec.Style, fontFamily, titleSizePt)
		finalizeTextFrameAutofit(titlePh, titleSizePt, fontFamily, fonts)
		logTextboxMetrics(titlePh, "[title]", log)
	}

	mainPh := sl.MainTextPlaceholder()
	secondaryPh := sl.SecondaryTextPlaceholder()

	left := spec.Regions["left"]
	if left != nil && len(left.Bullets) > 0 && mainPh != nil {
		tf := mainPh.TextFrame()
		primeTextFrameForShrink(tf)
		tf.Clear()
		logTextboxMetrics(mainPh, "[before body]", log)
		appendRegionParagraphs(tf, left, defaults, variables, true)
		finalizeTextFrameAutofit(mainPh, bodySizePt, fontFamily, fonts)
		logTextboxMetrics(mainPh, "[after left]", log)
	}

	right := spec.Regions["right"]
	if right != nil && len(right.Bullets) > 0 && mainPh != nil {
		// A second suitable text box receives the region directly;
		// otherwise it is appended to the main box after a spacer.
		target := mainPh
		if secondaryPh != nil {
			target = secondaryPh
		}
		tf := target.TextFrame()

		if target == secondaryPh {
			primeTextFrameForShrink(tf)
			tf.Clear()
			appendRegionParagraphs(tf, right, defaults, variables, true)
		} else {
			spacer := tf.CreateParagraph()
			setNoBullets(spacer)
			spacer.SetText("")
			appendRegionParagraphs(tf, right, defaults, variables, false)
		}

		finalizeTextFrameAutofit(target, bodySizePt, fontFamily, fonts)
		logTextboxMetrics(target, "[after right]", log)
	}

	if spec.Notes != "" {
		notes := sl.NotesTextFrame()
		notes.Clear()
		notes.GetParagraphs()[0].SetText(expandVars(spec.Notes, variables))
	}
}

// logSlideShapes logs a debug inventory of a built slide's placeholders.
func logSlideShapes(sl *Slide, slideIdx int, log *zap.Logger) {
	log = ensureLogger(log)
	sugar := log.Sugar()
	sugar.Debugf("[slide %d] layout [%s] %s", slideIdx, sl.Layout().Token(), sl.Layout().Name)
	for _, ph := range sl.GetPlaceholders() {
		sugar.Debugf("  [shape] idx=%d type=%s name='%s' pos=(%.2fin,%.2fin) size=(%.2fin×%.2fin) has_text=%t",
			ph.GetIndex(),
			placeholderTypeName(ph.GetPlaceholderType()),
			ph.GetName(),
			EMUToInch(ph.GetOffsetX()),
			EMUToInch(ph.GetOffsetY()),
			EMUToInch(ph.GetWidth()),
			EMUToInch(ph.GetHeight()),
			ph.HasTextFrame(),
		)
	}
}

// logTextboxMetrics logs a placeholder's geometry, paragraph count, a
// few sample run sizes, and the autofit state. Debug level only.
func logTextboxMetrics(ph *Placeholder, prefix string, log *zap.Logger) {
	log = ensureLogger(log)
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}
	tf := ph.TextFrame()
	var sizes []int
	paras := tf.GetParagraphs()
	for pi, p := range paras {
		if pi >= 4 {
			break
		}
		for ri, r := range p.GetRuns() {
			if ri >= 4 {
				break
			}
			if f := r.Font(); f != nil && f.Size > 0 {
				sizes = append(sizes, int(f.Size))
			}
		}
	}
	if len(sizes) > 6 {
		sizes = sizes[:6]
	}
	fit := "inherit"
	if tf.AutoFitSet() {
		switch tf.GetAutoFit() {
		case AutoFitNone:
			fit = "noAutofit"
		case AutoFitNormal:
			fit = "normAutofit"
		case AutoFitShape:
			fit = "spAutoFit"
		}
	}
	log.Sugar().Debugf("%s pos=(%.2fin,%.2fin) size=(%.2fin×%.2fin) paras=%d sample_font_sizes=%v fit=%s wrap=%t",
		prefix,
		EMUToInch(ph.GetOffsetX()),
		EMUToInch(ph.GetOffsetY()),
		EMUToInch(ph.GetWidth()),
		EMUToInch(ph.GetHeight()),
		len(paras),
		sizes,
		fit,
		tf.GetWordWrap(),
	)
}
