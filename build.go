package godeck

import (
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// BuildOptions configures deck building.
type BuildOptions struct {
	// TemplatePath overrides meta.template_path when set. When both are
	// empty the deck is built on the built-in template.
	TemplatePath string
	// Strict makes layout resolution failures errors instead of letting
	// resolution fall through to the next step.
	Strict bool
	// Logger receives build progress and resolver traces. Nil disables
	// logging.
	Logger *zap.Logger
	// FontDirs lists extra directories to search for fonts during the
	// shrink-to-fit measuring pass. Ignored when FontCache is set.
	FontDirs []string
	// FontCache supplies the fonts for the shrink-to-fit pass, shareable
	// with the preview renderer. Nil uses a process-wide cache (plus a
	// per-build one when FontDirs is set).
	FontCache *FontCache
}

// BuildDeck builds a .pptx deck from a parsed spec and writes it to
// outputPath. The spec itself is never modified; variable expansion and
// text normalization happen on a working copy.
func BuildDeck(spec *DeckSpec, outputPath string, opts *BuildOptions) error {
	if opts == nil {
		opts = &BuildOptions{}
	}
	log := ensureLogger(opts.Logger)

	t, slides, clearExisting, err := BuildSlides(spec, opts)
	if err != nil {
		return err
	}

	w := NewDeckWriter(t)
	w.SetClearExisting(clearExisting)
	for _, sl := range slides {
		w.AppendSlide(sl)
	}

	outAbs, err := filepath.Abs(outputPath)
	if err != nil {
		outAbs = outputPath
	}
	if err := w.Save(outAbs); err != nil {
		return err
	}
	log.Sugar().Infof("Wrote: %s", outAbs)
	return nil
}

// BuildDeckFromText parses a raw spec, optionally through the lenient
// cleanup pass, and builds the deck. The raw argument may also be a
// path to a spec file.
func BuildDeckFromText(raw string, outputPath string, lenient bool, opts *BuildOptions) error {
	var log *zap.Logger
	if opts != nil {
		log = opts.Logger
	}
	spec, err := LoadDeckSpec(raw, lenient, log)
	if err != nil {
		return err
	}
	return BuildDeck(spec, outputPath, opts)
}

// BuildSlides runs the build pipeline up to, but not including, the
// package write: it opens the template, resolves each slide's layout,
// and renders the content. Callers that never save a file, like the
// preview renderer, use it directly. Returns the opened template, the
// built slides, and whether existing template slides should be cleared.
func BuildSlides(spec *DeckSpec, opts *BuildOptions) (*Template, []*Slide, bool, error) {
	if spec == nil {
		return nil, nil, false, fmt.Errorf("deck spec is nil")
	}
	if opts == nil {
		opts = &BuildOptions{}
	}
	log := ensureLogger(opts.Logger)

	prepared := spec.Clone()
	normalizeSpecText(prepared)
	meta := prepared.Meta

	templatePath := opts.TemplatePath
	if templatePath == "" && meta != nil {
		templatePath = meta.TemplatePath
	}
	t, err := openTemplateOrDefault(templatePath)
	if err != nil {
		return nil, nil, false, err
	}

	clearExisting := meta != nil && meta.ClearExisting && t.SlideCount() > 0

	fonts := opts.FontCache
	if fonts == nil && len(opts.FontDirs) > 0 {
		fonts = NewFontCache(opts.FontDirs...)
	}

	slides := make([]*Slide, 0, len(prepared.Slides))
	for i, slideSpec := range prepared.Slides {
		layout, _, err := ResolveLayout(t, slideSpec, meta, opts.Strict, log)
		if err != nil {
			return nil, nil, false, fmt.Errorf("slide %d: %w", i+1, err)
		}
		log.Sugar().Infof("[build] slide %d: want name='%s', id='%s', like='%s' → using [%s] %s",
			i+1, slideSpec.Layout, slideSpec.LayoutID, likeSlideLabel(slideSpec.LikeSlide),
			layout.Token(), layout.Name)

		sl := newSlideFromLayout(layout)
		logSlideShapes(sl, i+1, log)
		renderSlideContent(sl, slideSpec, meta, fonts, log)
		slides = append(slides, sl)
	}

	return t, slides, clearExisting, nil
}

func likeSlideLabel(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
