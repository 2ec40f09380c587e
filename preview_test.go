package godeck

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestRenderSlidePreviewDimensions(t *testing.T) {
	tmpl, slides, _, err := BuildSlides(twoSlideSpec(), nil)
	if err != nil {
		t.Fatalf("BuildSlides: %v", err)
	}

	img, err := RenderSlidePreview(tmpl, slides[0], &PreviewOptions{Width: 320})
	if err != nil {
		t.Fatalf("RenderSlidePreview: %v", err)
	}
	b := img.Bounds()
	// 16:9 slide: height follows the aspect ratio.
	if b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("bounds = %dx%d, want 320x180", b.Dx(), b.Dy())
	}

	// The top-left corner is outside every placeholder: plain background.
	r, g, bl, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 || a>>8 != 255 {
		t.Errorf("corner pixel = %d,%d,%d,%d, want white", r>>8, g>>8, bl>>8, a>>8)
	}
}

func TestRenderSlidePreviewBackgroundOverride(t *testing.T) {
	tmpl, slides, _, err := BuildSlides(twoSlideSpec(), nil)
	if err != nil {
		t.Fatalf("BuildSlides: %v", err)
	}

	opts := &PreviewOptions{Width: 64, BackgroundColor: &color.RGBA{R: 10, G: 20, B: 30, A: 255}}
	img, err := RenderSlidePreview(tmpl, slides[1], opts)
	if err != nil {
		t.Fatalf("RenderSlidePreview: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("corner pixel = %d,%d,%d, want 10,20,30", r>>8, g>>8, b>>8)
	}
}

func TestRenderSlidePreviewNilSlide(t *testing.T) {
	tmpl, err := DefaultTemplate()
	if err != nil {
		t.Fatalf("DefaultTemplate: %v", err)
	}
	if _, err := RenderSlidePreview(tmpl, nil, nil); err == nil ||
		!strings.Contains(err.Error(), "no slide to render") {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveSlidePreviews(t *testing.T) {
	tmpl, slides, _, err := BuildSlides(twoSlideSpec(), nil)
	if err != nil {
		t.Fatalf("BuildSlides: %v", err)
	}

	dir := t.TempDir()
	pattern := filepath.Join(dir, "slide_%d.png")
	if err := SaveSlidePreviews(tmpl, slides, pattern, &PreviewOptions{Width: 160}); err != nil {
		t.Fatalf("SaveSlidePreviews: %v", err)
	}

	for n := 1; n <= 2; n++ {
		path := filepath.Join(dir, fmt.Sprintf("slide_%d.png", n))
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("preview %d missing: %v", n, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode preview %d: %v", n, err)
		}
		if img.Bounds().Dx() != 160 || img.Bounds().Dy() != 90 {
			t.Errorf("preview %d bounds = %v", n, img.Bounds())
		}
	}
}

func TestBulletPrefix(t *testing.T) {
	r := &previewRenderer{}

	char := NewParagraph()
	char.SetBullet(&Bullet{Type: BulletTypeChar})
	if got := r.bulletPrefix(char, map[int]int{}); got != "• " {
		t.Errorf("default char prefix = %q", got)
	}
	char.SetBullet(&Bullet{Type: BulletTypeChar, Style: "-"})
	if got := r.bulletPrefix(char, map[int]int{}); got != "- " {
		t.Errorf("styled char prefix = %q", got)
	}

	counters := map[int]int{}
	num := NewParagraph()
	num.SetBullet(&Bullet{Type: BulletTypeNumeric, StartAt: 3})
	if got := r.bulletPrefix(num, counters); got != "3. " {
		t.Errorf("first numbered prefix = %q", got)
	}
	second := NewParagraph()
	second.SetBullet(&Bullet{Type: BulletTypeNumeric})
	if got := r.bulletPrefix(second, counters); got != "4. " {
		t.Errorf("second numbered prefix = %q", got)
	}
	nested := NewParagraph().SetLevel(1)
	nested.SetBullet(&Bullet{Type: BulletTypeNumeric})
	if got := r.bulletPrefix(nested, counters); got != "1. " {
		t.Errorf("nested numbered prefix = %q", got)
	}

	none := NewParagraph()
	none.SetBullet(&Bullet{Type: BulletTypeNone})
	if got := r.bulletPrefix(none, map[int]int{}); got != "" {
		t.Errorf("none prefix = %q", got)
	}
}

func TestWrapPreviewLine(t *testing.T) {
	face := basicfont.Face7x13
	line := buildPreviewLine([]previewRun{{text: "alpha beta gamma", face: face}}, 0)

	wrapped := wrapPreviewLine(line, 80) // fits "alpha beta", not " gamma"
	if len(wrapped) != 2 {
		t.Fatalf("wrapped lines = %d, want 2", len(wrapped))
	}
	if got := joinRunText(wrapped[0]); got != "alpha beta" {
		t.Errorf("line 1 = %q", got)
	}
	if got := joinRunText(wrapped[1]); got != "gamma" {
		t.Errorf("line 2 = %q", got)
	}

	// A line that already fits comes back as-is.
	fits := wrapPreviewLine(line, 10000)
	if len(fits) != 1 || joinRunText(fits[0]) != "alpha beta gamma" {
		t.Errorf("unwrapped = %v", fits)
	}
}

func joinRunText(line previewLine) string {
	var b strings.Builder
	for _, run := range line.runs {
		b.WriteString(run.text)
	}
	return b.String()
}

func TestGetFaceNeverNil(t *testing.T) {
	r := &previewRenderer{fonts: NewFontCache(), dpi: 96, scaleY: 0.0001}
	if r.getFace(nil, 1.0) == nil {
		t.Fatal("getFace returned nil for a nil font")
	}
	f := NewFont()
	f.Name = "No Such Family 123"
	if r.getFace(f, 1.0) == nil {
		t.Fatal("getFace returned nil for an unknown family")
	}
}
