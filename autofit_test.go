package godeck

import (
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func TestPrimeTextFrameForShrink(t *testing.T) {
	tf := NewTextFrame()
	tf.SetFontScale(62500)
	tf.SetLineSpaceReduction(20000)
	primeTextFrameForShrink(tf)

	if !tf.AutoFitSet() || tf.GetAutoFit() != AutoFitNormal {
		t.Error("autofit not primed to normAutofit")
	}
	if tf.GetFontScale() != 0 || tf.GetLineSpaceReduction() != 0 {
		t.Error("stale shrink factors not reset")
	}
	if !tf.WordWrapSet() || !tf.GetWordWrap() {
		t.Error("word wrap not enabled")
	}
}

func TestFinalizeTextFrameAutofitFlags(t *testing.T) {
	ph := NewPlaceholder(PlaceholderBody)
	ph.SetSize(Inch(8), Inch(4))
	ph.TextFrame().GetParagraphs()[0].SetText("short line")

	finalizeTextFrameAutofit(ph, 24, "", nil)

	tf := ph.TextFrame()
	if !tf.AutoFitSet() || tf.GetAutoFit() != AutoFitNormal {
		t.Error("autofit not forced to normAutofit")
	}
	if tf.GetLineSpaceReduction() != autofitLnSpcReduction {
		t.Errorf("lnSpcReduction = %d, want %d", tf.GetLineSpaceReduction(), autofitLnSpcReduction)
	}
	if !tf.GetWordWrap() {
		t.Error("word wrap not enabled")
	}

	// The measuring pass is best effort: with a usable font the runs get
	// a size inside the shrink window, without one they stay untouched.
	for _, run := range tf.GetParagraphs()[0].GetRuns() {
		f := run.Font()
		if f == nil {
			continue
		}
		if f.Size != 0 && (f.Size < 13 || f.Size > 24) {
			t.Errorf("fitted size %.0f outside 13..24", f.Size)
		}
	}
}

func TestFinalizeTextFrameAutofitNilPlaceholder(t *testing.T) {
	finalizeTextFrameAutofit(nil, 24, "", nil) // must not panic
}

func TestFitFrameTextDegenerateBox(t *testing.T) {
	tf := NewTextFrame()
	tf.GetParagraphs()[0].SetText("anything")
	// Interior smaller than the insets: the pass backs off entirely.
	fitFrameText(tf, 2*defaultInsetLR, 2*defaultInsetTB, 24, 9, "", nil)
	for _, run := range tf.GetParagraphs()[0].GetRuns() {
		if run.Font() != nil {
			t.Error("degenerate box should leave runs untouched")
		}
	}
}

func TestWrappedLineCount(t *testing.T) {
	face := basicfont.Face7x13

	if got := wrappedLineCount(face, "", 100); got != 1 {
		t.Errorf("empty line rows = %d, want 1", got)
	}
	if got := wrappedLineCount(face, "word", 1000); got != 1 {
		t.Errorf("single word rows = %d, want 1", got)
	}

	// Two words that fit together stay on one row; shrinking the width
	// below their joint measure forces a second row.
	joint := font.MeasureString(face, "alpha beta").Ceil()
	if got := wrappedLineCount(face, "alpha beta", joint); got != 1 {
		t.Errorf("rows at exact fit = %d, want 1", got)
	}
	if got := wrappedLineCount(face, "alpha beta", joint-1); got != 2 {
		t.Errorf("rows below fit = %d, want 2", got)
	}

	// A word wider than the box still occupies a single row; wrapping
	// never splits inside a word.
	wide := strings.Repeat("x", 40)
	if got := wrappedLineCount(face, wide, 10); got != 1 {
		t.Errorf("oversized word rows = %d, want 1", got)
	}
}

func TestFrameTextHeight(t *testing.T) {
	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()

	tf := NewTextFrame()
	tf.GetParagraphs()[0].SetText("one\ntwo")
	tf.CreateParagraph().SetText("three")

	// Three hard lines, no soft wrapping at a generous width.
	if got := frameTextHeight(tf, face, 10000); got != 3*lineH {
		t.Errorf("height = %d, want %d", got, 3*lineH)
	}
}

func TestMeasureFaceSharedCacheFallback(t *testing.T) {
	// A nil cache falls back to the shared one; either outcome (face or
	// no installed fonts) must not panic and must be consistent between
	// calls.
	first := measureFace(nil, "calibri", 18)
	second := measureFace(nil, "calibri", 18)
	if (first == nil) != (second == nil) {
		t.Error("shared cache gave inconsistent results")
	}
}

func TestApplyFittedSize(t *testing.T) {
	tf := NewTextFrame()
	tf.GetParagraphs()[0].SetText("a\nb")
	tf.CreateParagraph().SetText("c")

	applyFittedSize(tf, 15, "Consolas")
	for _, p := range tf.GetParagraphs() {
		for _, run := range p.GetRuns() {
			f := run.Font()
			if f == nil || f.Size != 15 || f.Name != "Consolas" {
				t.Errorf("run %q font = %+v", run.GetText(), f)
			}
		}
	}
}
