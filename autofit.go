package godeck

import (
	"strings"

	"golang.org/x/image/font"
)

// bodyPr default internal margins in EMU, per the OOXML defaults.
const (
	defaultInsetLR = 91440 // lIns/rIns, 0.1 inch each
	defaultInsetTB = 45720 // tIns/bIns, 0.05 inch each
)

// autofitLnSpcReduction is the allowed line-spacing reduction written on
// a:normAutofit, in thousandths of a percent. 12000 is a 12% reduction.
const autofitLnSpcReduction = 12000

// fitFonts is the shared font cache for the best-fit measuring pass.
// Directory scanning happens once, on first use.
var fitFonts = NewFontCache()

// fitFallbackFamilies are tried in order when the configured family has
// no installed font file.
var fitFallbackFamilies = []string{"calibri", "arial", "helvetica", "dejavu sans", "liberation sans", "noto sans"}

// primeTextFrameForShrink prepares a text frame so the document shrinks
// text on overflow. Safe to call before any text is added: any earlier
// auto-size directive is replaced with a plain shrink-to-fit one and
// wrapping is enabled.
func primeTextFrameForShrink(tf *TextFrame) {
	tf.SetAutoFit(AutoFitNormal)
	tf.SetFontScale(0)
	tf.SetLineSpaceReduction(0)
	tf.SetWordWrap(true)
}

// finalizeTextFrameAutofit keeps the placeholder geometry fixed and makes
// the document shrink text and line spacing on overflow:
//
//   - force shrink-to-fit with a 12% allowed line-spacing reduction
//   - ensure word wrap
//   - run a synchronous best-fit pass downsizing the runs now, so the
//     saved document already fits without the viewer recomputing it
//
// The pass is idempotent and best effort: re-running it fits to the same
// size, and a missing font file leaves the run sizes untouched. A nil
// fonts argument measures against the shared cache.
func finalizeTextFrameAutofit(ph *Placeholder, targetSizePt float64, fontFamily string, fonts *FontCache) {
	if ph == nil {
		return
	}
	tf := ph.TextFrame()
	tf.SetAutoFit(AutoFitNormal)
	tf.SetLineSpaceReduction(autofitLnSpcReduction)
	tf.SetWordWrap(true)

	maxSize := int(targetSizePt)
	if maxSize <= 0 {
		maxSize = 24
	}
	minSize := maxSize * 55 / 100
	if minSize < 9 {
		minSize = 9
	}
	fitFrameText(tf, ph.GetWidth(), ph.GetHeight(), maxSize, minSize, fontFamily, fonts)
}

// fitFrameText shrinks the frame's runs from maxSize down to minSize,
// stopping at the first size whose wrapped text fits the box interior.
// The fitted size and, when configured, the font family are applied to
// every run. Bold, italic, and color are left alone. Without a usable
// font face for measurement this is a no-op.
func fitFrameText(tf *TextFrame, boxW, boxH int64, maxSize, minSize int, fontFamily string, fonts *FontCache) {
	availW := int(EMUToPoint(boxW - 2*defaultInsetLR))
	availH := int(EMUToPoint(boxH - 2*defaultInsetTB))
	if availW <= 0 || availH <= 0 {
		return
	}

	size := maxSize
	for ; size > minSize; size-- {
		face := measureFace(fonts, fontFamily, float64(size))
		if face == nil {
			return
		}
		if frameTextHeight(tf, face, availW) <= availH {
			break
		}
	}

	applyFittedSize(tf, float64(size), fontFamily)
}

// measureFace returns an unhinted face for the family at the given size,
// trying the common fallbacks when the family is empty or not installed.
// A nil cache falls back to the shared one.
func measureFace(fonts *FontCache, family string, sizePt float64) font.Face {
	if fonts == nil {
		fonts = fitFonts
	}
	if family != "" {
		if face := fonts.GetMeasureFace(family, sizePt, false, false); face != nil {
			return face
		}
	}
	for _, fallback := range fitFallbackFamilies {
		if face := fonts.GetMeasureFace(fallback, sizePt, false, false); face != nil {
			return face
		}
	}
	return nil
}

// frameTextHeight returns the total height in points of the frame's text
// wrapped to the given width, measured with one face for all runs the
// way the fit pass will flatten them.
func frameTextHeight(tf *TextFrame, face font.Face, maxWidth int) int {
	lineH := face.Metrics().Height.Ceil()
	if lineH <= 0 {
		lineH = 1
	}
	lines := 0
	for _, p := range tf.GetParagraphs() {
		for _, hard := range strings.Split(p.GetText(), "\n") {
			lines += wrappedLineCount(face, hard, maxWidth)
		}
	}
	return lines * lineH
}

// wrappedLineCount counts how many rows a single hard line occupies when
// word-wrapped to maxWidth. An empty line still occupies one row.
func wrappedLineCount(face font.Face, text string, maxWidth int) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 1
	}
	lines := 1
	curWidth := 0
	for i, w := range words {
		if i > 0 {
			w = " " + w
		}
		ww := font.MeasureString(face, w).Ceil()
		if curWidth+ww > maxWidth && curWidth > 0 {
			lines++
			w = strings.TrimLeft(w, " ")
			ww = font.MeasureString(face, w).Ceil()
			curWidth = 0
		}
		curWidth += ww
	}
	return lines
}

// applyFittedSize writes the fitted size onto every run in the frame,
// plus the font family when one is configured.
func applyFittedSize(tf *TextFrame, sizePt float64, fontFamily string) {
	for _, p := range tf.GetParagraphs() {
		for _, run := range p.GetRuns() {
			f := run.GetFont()
			f.SetSize(sizePt)
			if fontFamily != "" {
				f.SetName(fontFamily)
			}
		}
	}
}
