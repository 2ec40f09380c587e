package godeck

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// collapseSpaces rewrites runs of whitespace as single spaces and trims
// the ends, so layout names compare the way PowerPoint displays them.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseLayoutToken splits a "master:layout" token into its two indices.
func parseLayoutToken(token string) (int, int, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want 'master:layout', got '%s'", token)
	}
	mi, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad master index '%s'", parts[0])
	}
	li, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("bad layout index '%s'", parts[1])
	}
	return mi, li, nil
}

// ResolveLayout picks a slide layout across all masters using, in order:
//
//  1. slide.LayoutID, a "master:layout" token as printed by DumpLayouts
//  2. slide.Layout, a name matched after whitespace collapsing and
//     meta.LayoutAliases substitution
//  3. slide.LikeSlide, a 1-based slide number in the template deck
//  4. meta.DefaultLayout, then meta.FallbackLayout
//  5. the first layout of the first master
//
// It returns the chosen layout and the trace line describing the step
// that won. With strict set, a malformed or out-of-range token and an
// ambiguous name are errors; otherwise every miss degrades to the next
// step and only a template with no layouts at all fails.
func ResolveLayout(t *Template, slide *SlideSpec, meta *MetaSpec, strict bool, log *zap.Logger) (*Layout, string, error) {
	log = ensureLogger(log)
	trace := func(format string, args ...any) string {
		line := fmt.Sprintf(format, args...)
		log.Info(line)
		return line
	}

	var name, token string
	likeSlide := 0
	if slide != nil {
		name = collapseSpaces(slide.Layout)
		token = strings.TrimSpace(slide.LayoutID)
		likeSlide = slide.LikeSlide
	}
	var aliases map[string]string
	var fallbacks []string
	if meta != nil {
		aliases = meta.LayoutAliases
		fallbacks = []string{meta.DefaultLayout, meta.FallbackLayout}
	}

	if name != "" {
		if to, ok := aliases[name]; ok {
			trace("[resolver] alias '%s' → '%s'", name, to)
			name = to
		}
	}

	all := t.AllLayouts()

	// 1) Exact token m:l.
	if token != "" {
		mi, li, err := parseLayoutToken(token)
		var lay *Layout
		if err == nil {
			lay, err = t.LayoutAt(mi, li)
		}
		if err == nil {
			return lay, trace("[resolver] token '%s' → [%d:%d] %s", token, mi, li, lay.Name), nil
		}
		if strict {
			return nil, "", fmt.Errorf("bad layout_id '%s': %v", token, err)
		}
		trace("[resolver] WARN bad layout_id '%s', trying other methods…", token)
	}

	// 2) Name match across all masters, first match unless strict ambiguity.
	if name != "" {
		var matches []*Layout
		for _, lay := range all {
			if collapseSpaces(lay.Name) == name {
				matches = append(matches, lay)
			}
		}
		switch {
		case len(matches) == 1:
			lay := matches[0]
			return lay, trace("[resolver] name '%s' → [%d:%d] %s", name, lay.MasterIndex(), lay.Index(), lay.Name), nil
		case len(matches) > 1:
			toks := make([]string, 0, len(matches))
			for _, lay := range matches {
				toks = append(toks, fmt.Sprintf("[%d:%d]", lay.MasterIndex(), lay.Index()))
			}
			msg := fmt.Sprintf("ambiguous layout name '%s' matches: %s", name, strings.Join(toks, ", "))
			if strict {
				return nil, "", errors.New(msg)
			}
			lay := matches[0]
			return lay, trace("[resolver] WARN %s; using first [%d:%d]", msg, lay.MasterIndex(), lay.Index()), nil
		default:
			trace("[resolver] name '%s' not found; trying like_slide/defaults…", name)
		}
	}

	// 3) Layout of slide N in the template deck. An unresolved slide is
	// a miss, not a failure.
	if likeSlide > 0 && t.SlideCount() > 0 {
		lay, err := t.SlideLayout(likeSlide)
		if err == nil {
			return lay, trace("[resolver] like_slide %d → [%d:%d] %s", likeSlide, lay.MasterIndex(), lay.Index(), lay.Name), nil
		}
		trace("[resolver] WARN like_slide %d unresolved (%v); trying defaults…", likeSlide, err)
	}

	// 4) Deck-wide default, then fallback.
	for _, candidate := range fallbacks {
		if candidate == "" {
			continue
		}
		want := collapseSpaces(candidate)
		for _, lay := range all {
			if collapseSpaces(lay.Name) == want {
				return lay, trace("[resolver] fallback '%s' → [%d:%d] %s", candidate, lay.MasterIndex(), lay.Index(), lay.Name), nil
			}
		}
	}

	// Last resort.
	if len(all) == 0 {
		return nil, "", errors.New("template has no slide layouts")
	}
	lay := all[0]
	return lay, trace("[resolver] FINAL fallback → [%d:%d] %s", lay.MasterIndex(), lay.Index(), lay.Name), nil
}
