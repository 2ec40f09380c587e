package godeck

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks the deck spec for structural issues and returns an
// error describing all problems found, or nil if the spec is valid.
// It lints what the builder would otherwise silently coerce: unknown
// list types, malformed colors and layout tokens, negative numbering.
func (spec *DeckSpec) Validate() error {
	var errs []string

	if len(spec.Slides) == 0 {
		errs = append(errs, "deck must have at least one slide")
	}
	if spec.Meta != nil && spec.Meta.Defaults != nil {
		errs = append(errs, validateDefaults(spec.Meta.Defaults)...)
	}

	for i, slide := range spec.Slides {
		prefix := fmt.Sprintf("slide %d", i+1)
		if slide == nil {
			errs = append(errs, prefix+": slide is null")
			continue
		}
		for _, e := range validateSlideSpec(slide) {
			errs = append(errs, prefix+": "+e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func validateDefaults(d *DefaultsSpec) []string {
	var errs []string
	if !isKnownListType(d.ListType) {
		errs = append(errs, fmt.Sprintf("meta.defaults: unknown list_type '%s' (want bullet or number)", d.ListType))
	}
	if d.TitleSizePt < 0 {
		errs = append(errs, "meta.defaults: title_size_pt must not be negative")
	}
	if d.BodySizePt < 0 {
		errs = append(errs, "meta.defaults: body_size_pt must not be negative")
	}
	return errs
}

func validateSlideSpec(s *SlideSpec) []string {
	var errs []string

	if s.LayoutID != "" {
		if _, _, err := parseLayoutToken(s.LayoutID); err != nil {
			errs = append(errs, fmt.Sprintf("bad layout_id: %v", err))
		}
	}
	if s.LikeSlide < 0 {
		errs = append(errs, "like_slide must not be negative")
	}
	errs = append(errs, validateStyle("style", s.Style)...)
	if s.Background != nil && s.Background.Color != "" && !IsHexColor(s.Background.Color) {
		errs = append(errs, fmt.Sprintf("background color '%s' is not a hex color", s.Background.Color))
	}

	keys := make([]string, 0, len(s.Regions))
	for k := range s.Regions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		region := s.Regions[key]
		prefix := fmt.Sprintf("region '%s'", key)
		if key != "left" && key != "right" {
			errs = append(errs, prefix+": unknown region (want left or right)")
		}
		if region == nil {
			errs = append(errs, prefix+": region is null")
			continue
		}
		errs = append(errs, validateRegion(prefix, region)...)
	}

	return errs
}

func validateRegion(prefix string, r *RegionSpec) []string {
	var errs []string
	if !isKnownListType(r.ListType) {
		errs = append(errs, fmt.Sprintf("%s: unknown list_type '%s' (want bullet or number)", prefix, r.ListType))
	}
	if r.StartAt < 0 {
		errs = append(errs, prefix+": start_at must not be negative")
	}
	errs = append(errs, validateBullets(prefix, r.Bullets)...)
	return errs
}

// validateBullets walks the bullet tree. Index paths read "2.1" for the
// first child of the second top-level bullet.
func validateBullets(prefix string, nodes []*BulletNode) []string {
	var errs []string
	var walk func(path string, nodes []*BulletNode)
	walk = func(path string, nodes []*BulletNode) {
		for i, node := range nodes {
			p := fmt.Sprintf("%s%d", path, i+1)
			if node == nil {
				errs = append(errs, fmt.Sprintf("%s: bullet %s is null", prefix, p))
				continue
			}
			errs = append(errs, validateStyle(fmt.Sprintf("%s bullet %s style", prefix, p), node.Style)...)
			walk(p+".", node.Children)
		}
	}
	walk("", nodes)
	return errs
}

func validateStyle(loc string, st *StyleSpec) []string {
	if st == nil {
		return nil
	}
	var errs []string
	if st.Color != "" && !IsHexColor(st.Color) {
		errs = append(errs, fmt.Sprintf("%s: color '%s' is not a hex color", loc, st.Color))
	}
	if st.SizePt < 0 {
		errs = append(errs, fmt.Sprintf("%s: size_pt must not be negative", loc))
	}
	return errs
}

// isKnownListType accepts the empty string, which means inherit.
func isKnownListType(t string) bool {
	switch strings.ToLower(t) {
	case "", "bullet", "number":
		return true
	}
	return false
}
