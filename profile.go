package godeck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// TemplateProfile is a machine-readable inventory of a template: slide
// size and aspect, per-master layout and placeholder geometry, left/right
// hints for two-body layouts, name buckets, alias suggestions, and a
// ready-to-paste meta stub.
type TemplateProfile struct {
	SlideSize              ProfileSlideSize  `json:"slide_size"`
	Masters                []ProfileMaster   `json:"masters"`
	SingleBodyLayouts      []string          `json:"single_body_layouts"`
	TwoBodyLayouts         []string          `json:"two_body_layouts"`
	SuggestedLayoutAliases map[string]string `json:"suggested_layout_aliases"`
	RecommendedDefaults    ProfileDefaults   `json:"recommended_defaults"`
	MetaStub               *MetaSpec         `json:"meta_stub"`
}

// ProfileSlideSize holds the slide dimensions in EMU and a rough aspect label.
type ProfileSlideSize struct {
	WidthEMU  int64  `json:"width_emu"`
	HeightEMU int64  `json:"height_emu"`
	Aspect    string `json:"aspect"`
}

// ProfileMaster is one slide master with its layouts.
type ProfileMaster struct {
	Name    string          `json:"name"`
	Index   int             `json:"index"`
	Layouts []ProfileLayout `json:"layouts"`
}

// ProfileLayout is one layout's inventory.
type ProfileLayout struct {
	Index         int                  `json:"index"`
	Name          string               `json:"name"`
	BodySlots     int                  `json:"body_slots"`
	Placeholders  []ProfilePlaceholder `json:"placeholders"`
	LeftRightHint ProfileLeftRight     `json:"left_right_hint"`
}

// ProfilePlaceholder is one placeholder's index, type, and geometry in EMU.
type ProfilePlaceholder struct {
	Idx    int    `json:"idx"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Left   int64  `json:"left"`
	Top    int64  `json:"top"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// ProfileLeftRight names the placeholder indices of the two leftmost body
// slots on layouts that have at least two. Both are null otherwise.
type ProfileLeftRight struct {
	LeftIdx  *int `json:"left_idx"`
	RightIdx *int `json:"right_idx"`
}

// ProfileDefaults carries the recommended default and fallback layout names.
type ProfileDefaults struct {
	DefaultLayout  string `json:"default_layout"`
	FallbackLayout string `json:"fallback_layout"`
}

// placeholderTypeName maps a placeholder type token to its conventional
// uppercase name, e.g. "ctrTitle" to "CENTER_TITLE". Unknown tokens are
// returned as is.
func placeholderTypeName(t PlaceholderType) string {
	switch t {
	case PlaceholderTitle:
		return "TITLE"
	case PlaceholderCtrTitle:
		return "CENTER_TITLE"
	case PlaceholderSubTitle:
		return "SUBTITLE"
	case PlaceholderBody:
		return "BODY"
	case PlaceholderObject:
		return "OBJECT"
	case PlaceholderPicture:
		return "PICTURE"
	case PlaceholderChart:
		return "CHART"
	case PlaceholderTable:
		return "TABLE"
	case PlaceholderMedia:
		return "MEDIA_CLIP"
	case PlaceholderDate:
		return "DATE"
	case PlaceholderFooter:
		return "FOOTER"
	case PlaceholderSlideNum:
		return "SLIDE_NUMBER"
	case "hdr":
		return "HEADER"
	case "clipArt":
		return "CLIP_ART"
	case "dgm":
		return "ORG_CHART"
	case "sldImg":
		return "SLIDE_IMAGE"
	}
	return string(t)
}

// aspectLabel returns a rough aspect label for the given slide size.
func aspectLabel(w, h int64) string {
	var ratio float64
	if h != 0 {
		ratio = float64(w) / float64(h)
	}
	candidates := []struct {
		target float64
		label  string
	}{
		{16.0 / 9.0, "16:9"},
		{4.0 / 3.0, "4:3"},
		{16.0 / 10.0, "16:10"},
	}
	for _, c := range candidates {
		if math.Abs(ratio-c.target) < 0.02 {
			return c.label
		}
	}
	return fmt.Sprintf("%.3f:1", ratio)
}

// Profile builds the template's profile. It never fails: a template with
// no usable layouts yields empty buckets and suggestions.
func (t *Template) Profile() *TemplateProfile {
	p := &TemplateProfile{
		SlideSize: ProfileSlideSize{
			WidthEMU:  t.slideWidth,
			HeightEMU: t.slideHeight,
			Aspect:    aspectLabel(t.slideWidth, t.slideHeight),
		},
		Masters:           make([]ProfileMaster, 0, len(t.masters)),
		SingleBodyLayouts: []string{},
		TwoBodyLayouts:    []string{},
	}

	for mi, m := range t.masters {
		pm := ProfileMaster{
			Name:    m.Name,
			Index:   mi,
			Layouts: make([]ProfileLayout, 0, len(m.Layouts)),
		}
		for li, lay := range m.Layouts {
			phs := make([]ProfilePlaceholder, 0, len(lay.placeholders))
			for _, ph := range lay.placeholders {
				phs = append(phs, ProfilePlaceholder{
					Idx:    ph.Idx,
					Type:   placeholderTypeName(ph.Type),
					Name:   ph.Name,
					Left:   ph.OffsetX,
					Top:    ph.OffsetY,
					Width:  ph.Width,
					Height: ph.Height,
				})
			}

			bodies := lay.bodyPlaceholders()
			sort.SliceStable(bodies, func(i, j int) bool {
				return bodies[i].OffsetX < bodies[j].OffsetX
			})
			var hint ProfileLeftRight
			if len(bodies) >= 2 {
				left, right := bodies[0].Idx, bodies[1].Idx
				hint.LeftIdx, hint.RightIdx = &left, &right
			}

			pm.Layouts = append(pm.Layouts, ProfileLayout{
				Index:         li,
				Name:          lay.Name,
				BodySlots:     len(bodies),
				Placeholders:  phs,
				LeftRightHint: hint,
			})
		}
		p.Masters = append(p.Masters, pm)
	}

	for _, m := range p.Masters {
		for _, l := range m.Layouts {
			if l.BodySlots == 1 {
				p.SingleBodyLayouts = append(p.SingleBodyLayouts, l.Name)
			}
			if l.BodySlots >= 2 {
				p.TwoBodyLayouts = append(p.TwoBodyLayouts, l.Name)
			}
		}
	}

	p.SuggestedLayoutAliases = suggestAliases(p)
	p.RecommendedDefaults = recommendedDefaults(p)
	p.MetaStub = &MetaSpec{
		TemplatePath:   "<YOUR_TEMPLATE_PATH>.pptx",
		DefaultLayout:  p.RecommendedDefaults.DefaultLayout,
		LayoutAliases:  p.SuggestedLayoutAliases,
		FallbackLayout: p.RecommendedDefaults.FallbackLayout,
		Variables:      VarMap{"client": "Acme", "year": "2025"},
		Defaults: &DefaultsSpec{
			ListType:    "bullet",
			Fit:         "shrink",
			FontFamily:  "Calibri",
			TitleSizePt: 40,
			BodySizePt:  24,
		},
	}
	return p
}

// suggestAliases maps common canonical names to the best matching layout
// in this template. Familiar names win over generic slot-count matches.
func suggestAliases(p *TemplateProfile) map[string]string {
	type entry struct {
		name   string
		bodies int
	}
	var names []entry
	for _, m := range p.Masters {
		for _, l := range m.Layouts {
			names = append(names, entry{l.Name, l.BodySlots})
		}
	}

	pickTwoCol := func() string {
		for _, pref := range []string{"Two Content", "Comparison", "Title and Two Content"} {
			for _, e := range names {
				if e.name != "" && strings.Contains(strings.ToLower(e.name), strings.ToLower(pref)) {
					return e.name
				}
			}
		}
		for _, e := range names {
			if e.bodies >= 2 {
				return e.name
			}
		}
		return ""
	}

	pickSingle := func() string {
		for _, pref := range []string{"Title and Content", "Title, Content"} {
			for _, e := range names {
				if e.name != "" && strings.Contains(strings.ToLower(e.name), strings.ToLower(pref)) {
					return e.name
				}
			}
		}
		for _, e := range names {
			if e.bodies == 1 {
				return e.name
			}
		}
		if len(names) > 0 {
			return names[0].name
		}
		return ""
	}

	aliases := make(map[string]string)
	if two := pickTwoCol(); two != "" {
		aliases["two column with header"] = two
	}
	if one := pickSingle(); one != "" {
		aliases["title + bullets"] = one
	}
	return aliases
}

func recommendedDefaults(p *TemplateProfile) ProfileDefaults {
	aliases := suggestAliases(p)
	d := ProfileDefaults{}
	d.DefaultLayout = aliases["title + bullets"]
	d.FallbackLayout = d.DefaultLayout
	return d
}

// BuildTemplateProfile profiles the template at templatePath, or the
// built-in template when the path is empty.
func BuildTemplateProfile(templatePath string) (*TemplateProfile, error) {
	t, err := openTemplateOrDefault(templatePath)
	if err != nil {
		return nil, err
	}
	return t.Profile(), nil
}

// marshalJSON renders v without HTML escaping, optionally indented.
func marshalJSON(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DumpLayouts logs the template's layout inventory and, when asJSON names
// a path, writes the full profile there as indented JSON.
func DumpLayouts(t *Template, asJSON string, logger *zap.Logger) error {
	logger = ensureLogger(logger)
	log := logger.Sugar()
	profile := t.Profile()

	ss := profile.SlideSize
	log.Infof("Slide size: %d x %d EMU  (~aspect %s)", ss.WidthEMU, ss.HeightEMU, ss.Aspect)
	for _, m := range profile.Masters {
		log.Infof("[Master %d] %s", m.Index, m.Name)
		for _, l := range m.Layouts {
			lrS := ""
			if l.LeftRightHint.LeftIdx != nil {
				lrS = fmt.Sprintf(" LR idx=(%d,%d)", *l.LeftRightHint.LeftIdx, *l.LeftRightHint.RightIdx)
			}
			log.Infof("  - [%d:%d] %s (body_slots=%d)%s", m.Index, l.Index, l.Name, l.BodySlots, lrS)
			for _, ph := range l.Placeholders {
				log.Infof("      ph idx=%d type=%s name=%s pos=(%d,%d) size=(%d,%d)",
					ph.Idx, ph.Type, ph.Name, ph.Left, ph.Top, ph.Width, ph.Height)
			}
		}
	}

	log.Infof("Two-body layouts: %s", strings.Join(profile.TwoBodyLayouts, ", "))
	log.Infof("Single-body layouts: %s", strings.Join(profile.SingleBodyLayouts, ", "))

	if aliases, err := marshalJSON(profile.SuggestedLayoutAliases, ""); err == nil {
		log.Infof("Suggested layout_aliases: %s", aliases)
	}
	if defaults, err := marshalJSON(profile.RecommendedDefaults, ""); err == nil {
		log.Infof("Recommended defaults: %s", defaults)
	}
	if stub, err := marshalJSON(profile.MetaStub, ""); err == nil {
		log.Infof("Meta stub: %s", stub)
	}

	if asJSON != "" {
		data, err := marshalJSON(profile, "  ")
		if err != nil {
			return fmt.Errorf("failed to encode template profile: %w", err)
		}
		if err := os.WriteFile(asJSON, data, 0o644); err != nil {
			return fmt.Errorf("failed to write template profile: %w", err)
		}
		abs, err := filepath.Abs(asJSON)
		if err != nil {
			abs = asJSON
		}
		log.Infof("Wrote template profile JSON: %s", abs)
	}
	return nil
}
