package godeck

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageFormat selects the preview output encoding.
type ImageFormat int

const (
	ImageFormatPNG ImageFormat = iota
	ImageFormatJPEG
)

// previewIndentEMU is the horizontal indent applied per bullet level.
const previewIndentEMU = 457200

// PreviewOptions configures slide-to-image rendering.
type PreviewOptions struct {
	// Width is the output image width in pixels. Height follows the
	// slide aspect ratio. Default: 960.
	Width int
	// Format is the output image format (PNG or JPEG).
	Format ImageFormat
	// JPEGQuality is the JPEG quality (1-100). Default: 90.
	JPEGQuality int
	// BackgroundColor overrides the slide background. Nil means use the
	// slide background or white.
	BackgroundColor *color.RGBA
	// DPI is the rendering DPI for font sizing. Default: 96.
	DPI float64
	// FontDirs specifies additional directories to search for
	// TrueType/OpenType fonts. System font directories are always
	// searched automatically.
	FontDirs []string
	// FontCache allows sharing a pre-configured FontCache across
	// multiple renders. If nil, a new FontCache is created using FontDirs.
	FontCache *FontCache
	// DrawFrames outlines each placeholder box, useful for layout
	// debugging in thumbnails.
	DrawFrames bool
}

// DefaultPreviewOptions returns default rendering options.
func DefaultPreviewOptions() *PreviewOptions {
	return &PreviewOptions{
		Width:       960,
		Format:      ImageFormatPNG,
		JPEGQuality: 90,
		DPI:         96,
	}
}

// RenderSlidePreview rasterizes one built slide against its template's
// slide size: background fill, optional placeholder frames, and the
// placeholder text wrapped with real font metrics. The result is a
// thumbnail approximation, not a full fidelity render.
func RenderSlidePreview(t *Template, sl *Slide, opts *PreviewOptions) (image.Image, error) {
	if sl == nil {
		return nil, fmt.Errorf("no slide to render")
	}
	if opts == nil {
		opts = DefaultPreviewOptions()
	}
	if opts.Width <= 0 {
		opts.Width = 960
	}

	slideW := float64(t.SlideWidth())
	slideH := float64(t.SlideHeight())
	if slideW <= 0 || slideH <= 0 {
		return nil, fmt.Errorf("template has no slide size")
	}
	imgW := opts.Width
	imgH := int(float64(imgW) * slideH / slideW)

	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))

	bg := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if opts.BackgroundColor != nil {
		bg = *opts.BackgroundColor
	} else if c := sl.Background(); c != nil {
		bg = rgbaFromColor(*c)
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	r := &previewRenderer{
		img:    img,
		scaleX: float64(imgW) / slideW,
		scaleY: float64(imgH) / slideH,
		fonts:  opts.FontCache,
		dpi:    opts.DPI,
		frames: opts.DrawFrames,
	}
	if r.fonts == nil {
		r.fonts = NewFontCache(opts.FontDirs...)
	}
	if r.dpi <= 0 {
		r.dpi = 96
	}

	for _, ph := range sl.GetPlaceholders() {
		r.drawPlaceholder(ph)
	}
	return img, nil
}

// SaveSlidePreview renders a built slide and writes the image to path,
// creating parent directories as needed.
func SaveSlidePreview(t *Template, sl *Slide, path string, opts *PreviewOptions) error {
	img, err := RenderSlidePreview(t, sl, opts)
	if err != nil {
		return err
	}
	return savePreviewImage(img, path, opts)
}

// SaveSlidePreviews renders every slide to a file. The pattern must
// contain %d for the 1-based slide number, e.g. "slide_%d.png".
func SaveSlidePreviews(t *Template, slides []*Slide, pattern string, opts *PreviewOptions) error {
	for i, sl := range slides {
		path := fmt.Sprintf(pattern, i+1)
		if err := SaveSlidePreview(t, sl, path, opts); err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
	}
	return nil
}

func savePreviewImage(img image.Image, path string, opts *PreviewOptions) error {
	if opts == nil {
		opts = DefaultPreviewOptions()
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	switch opts.Format {
	case ImageFormatJPEG:
		quality := opts.JPEGQuality
		if quality <= 0 || quality > 100 {
			quality = 90
		}
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	default:
		return png.Encode(f, img)
	}
}

type previewRenderer struct {
	img    *image.RGBA
	scaleX float64
	scaleY float64
	fonts  *FontCache
	dpi    float64
	frames bool
}

func (r *previewRenderer) emuToPixelX(emu int64) int {
	return int(float64(emu) * r.scaleX)
}

func (r *previewRenderer) emuToPixelY(emu int64) int {
	return int(float64(emu) * r.scaleY)
}

func rgbaFromColor(c Color) color.RGBA {
	return color.RGBA{
		R: c.GetRed(),
		G: c.GetGreen(),
		B: c.GetBlue(),
		A: c.GetAlpha(),
	}
}

func (r *previewRenderer) drawPlaceholder(ph *Placeholder) {
	x := r.emuToPixelX(ph.GetOffsetX())
	y := r.emuToPixelY(ph.GetOffsetY())
	w := r.emuToPixelX(ph.GetWidth())
	h := r.emuToPixelY(ph.GetHeight())

	if r.frames {
		r.drawRect(image.Rect(x, y, x+w, y+h), color.RGBA{R: 200, G: 200, B: 200, A: 255}, 1)
	}
	if !ph.HasTextFrame() {
		return
	}
	tf := ph.TextFrame()
	if tf.GetText() == "" {
		return
	}

	// Carry the best-fit shrink into the thumbnail so long slides look
	// the way the deck will.
	fontScale := 1.0
	if s := tf.GetFontScale(); s > 0 {
		fontScale = float64(s) / 100000.0
	}
	lineScale := 1.0
	if red := tf.GetLineSpaceReduction(); red > 0 {
		lineScale = 1.0 - float64(red)/100000.0
	}

	r.drawFrameParagraphs(tf.GetParagraphs(), x, y, w, h, fontScale, lineScale)
}

// previewRun holds rendering info for a single text run.
type previewRun struct {
	text  string
	face  font.Face
	color color.RGBA
}

// previewLine holds one wrapped line of runs plus its indent in pixels.
type previewLine struct {
	runs   []previewRun
	indent int
	width  int
	height int
}

func buildPreviewLine(runs []previewRun, indent int) previewLine {
	totalW := 0
	maxH := 0
	for _, pr := range runs {
		totalW += font.MeasureString(pr.face, pr.text).Ceil()
		if h := pr.face.Metrics().Height.Ceil(); h > maxH {
			maxH = h
		}
	}
	if maxH <= 0 {
		maxH = 14
	}
	return previewLine{runs: runs, indent: indent, width: totalW, height: maxH}
}

// drawFrameParagraphs lays the frame's paragraphs into the box: bullet
// glyphs and level indents, runs split on breaks, word wrap against the
// remaining width, then top-down drawing clipped to the box height.
func (r *previewRenderer) drawFrameParagraphs(paragraphs []*Paragraph, x, y, w, h int, fontScale, lineScale float64) {
	var lines []previewLine
	counters := map[int]int{}

	for _, para := range paragraphs {
		indent := int(float64(para.GetLevel()) * previewIndentEMU * r.scaleX)
		prefix := r.bulletPrefix(para, counters)

		var runs []previewRun
		for _, elem := range para.GetElements() {
			switch e := elem.(type) {
			case *TextRun:
				face := r.getFace(e.Font(), fontScale)
				tc := color.RGBA{A: 255}
				if f := e.Font(); f != nil {
					tc = rgbaFromColor(f.Color)
				}
				text := e.GetText()
				if prefix != "" && len(runs) == 0 {
					text = prefix + text
					prefix = ""
				}
				runs = append(runs, previewRun{text: text, face: face, color: tc})
			case *BreakElement:
				if len(runs) > 0 {
					lines = append(lines, buildPreviewLine(runs, indent))
					runs = nil
				} else {
					lines = append(lines, previewLine{indent: indent, height: 14})
				}
			}
		}
		if len(runs) > 0 {
			lines = append(lines, buildPreviewLine(runs, indent))
		} else if len(para.GetElements()) == 0 {
			lines = append(lines, previewLine{indent: indent, height: 14})
		}
	}

	var wrapped []previewLine
	for _, line := range lines {
		avail := w - line.indent
		if line.width <= avail || avail <= 0 || len(line.runs) == 0 {
			wrapped = append(wrapped, line)
			continue
		}
		wrapped = append(wrapped, wrapPreviewLine(line, avail)...)
	}

	curY := y
	for _, line := range wrapped {
		advance := int(float64(line.height) * lineScale)
		if advance < 1 {
			advance = 1
		}
		curY += advance
		if curY > y+h {
			break
		}

		drawX := x + line.indent
		for _, run := range line.runs {
			d := &font.Drawer{
				Dst:  r.img,
				Src:  &image.Uniform{run.color},
				Face: run.face,
				Dot:  fixed.P(drawX, curY),
			}
			d.DrawString(run.text)
			drawX += font.MeasureString(run.face, run.text).Ceil()
		}
	}
}

// bulletPrefix returns the glyph prepended to a paragraph's first run:
// the bullet character, or the next number in its level's sequence.
func (r *previewRenderer) bulletPrefix(para *Paragraph, counters map[int]int) string {
	b := para.GetBullet()
	if b == nil {
		return ""
	}
	switch b.Type {
	case BulletTypeChar:
		if b.Style == "" {
			return "• "
		}
		return b.Style + " "
	case BulletTypeNumeric:
		lvl := para.GetLevel()
		if _, started := counters[lvl]; !started {
			start := b.StartAt
			if start < 1 {
				start = 1
			}
			counters[lvl] = start
		} else {
			counters[lvl]++
		}
		return fmt.Sprintf("%d. ", counters[lvl])
	}
	return ""
}

// wrapPreviewLine wraps one line into lines that fit within maxWidth.
func wrapPreviewLine(line previewLine, maxWidth int) []previewLine {
	type styledWord struct {
		word  string
		face  font.Face
		color color.RGBA
	}

	var words []styledWord
	for _, run := range line.runs {
		for i, w := range strings.Fields(run.text) {
			if i > 0 {
				w = " " + w
			}
			words = append(words, styledWord{word: w, face: run.face, color: run.color})
		}
	}
	if len(words) == 0 {
		return []previewLine{line}
	}

	var result []previewLine
	var curRuns []previewRun
	curWidth := 0

	for _, sw := range words {
		ww := font.MeasureString(sw.face, sw.word).Ceil()
		if curWidth+ww > maxWidth && curWidth > 0 {
			result = append(result, buildPreviewLine(curRuns, line.indent))
			curRuns = nil
			curWidth = 0
			sw.word = strings.TrimLeft(sw.word, " ")
			ww = font.MeasureString(sw.face, sw.word).Ceil()
		}
		curRuns = append(curRuns, previewRun{text: sw.word, face: sw.face, color: sw.color})
		curWidth += ww
	}
	if len(curRuns) > 0 {
		result = append(result, buildPreviewLine(curRuns, line.indent))
	}
	return result
}

// getFace resolves a font.Face for the run, falling back through common
// families to basicfont when nothing on disk matches.
func (r *previewRenderer) getFace(f *Font, fontScale float64) font.Face {
	if f == nil {
		f = NewFont()
	}
	sizePt := f.Size
	if sizePt <= 0 {
		sizePt = 10
	}
	sizePt *= fontScale
	// Faces are built at 1pt = 1px, so request the glyph height in
	// image pixels: pt -> EMU -> pixels, with DPI 96 as the neutral
	// default.
	scaledPt := sizePt * emuPerPoint * r.scaleY * (r.dpi / 96.0)

	name := f.Name
	if name == "" {
		name = "Calibri"
	}

	if face := r.fonts.GetFace(name, scaledPt, f.Bold, f.Italic); face != nil {
		return face
	}
	for _, fallback := range fitFallbackFamilies {
		if face := r.fonts.GetFace(fallback, scaledPt, f.Bold, f.Italic); face != nil {
			return face
		}
	}
	return basicfont.Face7x13
}

func (r *previewRenderer) drawRect(rect image.Rectangle, c color.RGBA, width int) {
	for i := 0; i < width; i++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r.setPixel(x, rect.Min.Y+i, c)
			r.setPixel(x, rect.Max.Y-1-i, c)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			r.setPixel(rect.Min.X+i, y, c)
			r.setPixel(rect.Max.X-1-i, y, c)
		}
	}
}

func (r *previewRenderer) setPixel(x, y int, c color.RGBA) {
	bounds := r.img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		r.img.SetRGBA(x, y, c)
	}
}
