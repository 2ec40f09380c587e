package godeck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DeckSpec is the parsed deck specification: shared metadata plus an
// ordered list of slide specs.
type DeckSpec struct {
	Meta   *MetaSpec    `json:"meta,omitempty"`
	Slides []*SlideSpec `json:"slides"`
}

// MetaSpec carries deck-wide settings: the template to build on, layout
// resolution hints, the variable table, and rendering defaults.
type MetaSpec struct {
	TemplatePath   string            `json:"template_path,omitempty"`
	DefaultLayout  string            `json:"default_layout,omitempty"`
	LayoutAliases  map[string]string `json:"layout_aliases,omitempty"`
	FallbackLayout string            `json:"fallback_layout,omitempty"`
	ClearExisting  bool              `json:"clear_existing,omitempty"`
	Variables      VarMap            `json:"variables,omitempty"`
	Defaults       *DefaultsSpec     `json:"defaults,omitempty"`
}

// VarMap is the variable substitution table. Values are coerced to
// strings on parse so numeric variables like {"year": 2025} behave the
// same as their quoted form.
type VarMap map[string]string

// UnmarshalJSON accepts string, number, bool, and null values.
func (v *VarMap) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m := make(map[string]string, len(raw))
	for k, val := range raw {
		switch t := val.(type) {
		case string:
			m[k] = t
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			m[k] = strconv.FormatBool(t)
		case nil:
			m[k] = ""
		default:
			return fmt.Errorf("variable %q: unsupported value type %T", k, val)
		}
	}
	*v = m
	return nil
}

// DefaultsSpec holds deck-wide rendering defaults.
type DefaultsSpec struct {
	ListType    string  `json:"list_type,omitempty"`
	Fit         string  `json:"fit,omitempty"`
	FontFamily  string  `json:"font_family,omitempty"`
	TitleSizePt float64 `json:"title_size_pt,omitempty"`
	BodySizePt  float64 `json:"body_size_pt,omitempty"`
}

// SlideSpec describes one slide: how to pick its layout, the title,
// the content regions, and optional notes, style, and background.
type SlideSpec struct {
	Layout     string                 `json:"layout,omitempty"`
	LayoutID   string                 `json:"layout_id,omitempty"`
	LikeSlide  int                    `json:"like_slide,omitempty"`
	Title      string                 `json:"title,omitempty"`
	Regions    map[string]*RegionSpec `json:"regions,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	Style      *StyleSpec             `json:"style,omitempty"`
	Background *BackgroundSpec        `json:"background,omitempty"`
}

// RegionSpec is one named content region: a list type, an optional
// numbering start, and a bullet forest.
type RegionSpec struct {
	ListType string        `json:"list_type,omitempty"`
	StartAt  int           `json:"start_at,omitempty"`
	Bullets  []*BulletNode `json:"bullets,omitempty"`
}

// BulletNode is one node of the recursive content tree. Depth maps to
// paragraph nesting level, the roots being level 0.
type BulletNode struct {
	Text     string        `json:"text"`
	Style    *StyleSpec    `json:"style,omitempty"`
	Children []*BulletNode `json:"children,omitempty"`
}

// UnmarshalJSON accepts a full node object or a bare string, the string
// being shorthand for {"text": ...}.
func (b *BulletNode) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*b = BulletNode{Text: s}
		return nil
	}
	type bulletNodeNoMethods BulletNode
	var node bulletNodeNoMethods
	if err := json.Unmarshal(data, &node); err != nil {
		return err
	}
	*b = BulletNode(node)
	return nil
}

// StyleSpec holds per-paragraph run styling. Bold and italic are
// pointers so an explicit false can override inherited formatting while
// an absent key leaves it untouched.
type StyleSpec struct {
	Bold   *bool   `json:"bold,omitempty"`
	Italic *bool   `json:"italic,omitempty"`
	Color  string  `json:"color,omitempty"`
	SizePt float64 `json:"size_pt,omitempty"`
}

// BackgroundSpec sets a solid slide background.
type BackgroundSpec struct {
	Color string `json:"color,omitempty"`
}

// ParseError reports a JSON parse failure with the original parser's
// line and column diagnostic.
type ParseError struct {
	Line int
	Col  int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed at line %d col %d: %s", e.Line, e.Col, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseDeckSpec parses specification JSON. On syntax or type errors the
// returned error is a *ParseError carrying line/column information.
func ParseDeckSpec(data []byte) (*DeckSpec, error) {
	var spec DeckSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, parseErrorFor(data, err)
	}
	return &spec, nil
}

// parseErrorFor wraps a json error with line/column computed from its
// byte offset into the input.
func parseErrorFor(data []byte, err error) error {
	var offset int64 = -1
	var synErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &synErr):
		offset = synErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}
	if offset < 0 {
		return err
	}
	line, col := lineColAt(data, offset)
	return &ParseError{Line: line, Col: col, Msg: err.Error(), Err: err}
}

// lineColAt converts a byte offset into 1-based line and column numbers,
// counting columns in runes.
func lineColAt(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for i := int64(0); i < offset; {
		r, size := utf8.DecodeRune(data[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += int64(size)
	}
	return line, col
}

// LoadDeckSpec reads a deck spec from a file path or inline JSON text.
// When pathOrText names an existing file its contents are used,
// otherwise the string itself is treated as the JSON. With lenient set,
// CleanLenient runs before parsing. On parse failure the cleaned
// candidate is written to debug.cleaned.json for inspection.
func LoadDeckSpec(pathOrText string, lenient bool, log *zap.Logger) (*DeckSpec, error) {
	log = ensureLogger(log)
	var raw string
	if fileExists(pathOrText) {
		data, err := os.ReadFile(pathOrText)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file: %w", err)
		}
		raw = string(data)
		log.Sugar().Infof("[input] loaded file '%s' (%d bytes)", pathOrText, len(data))
	} else {
		raw = pathOrText
		log.Sugar().Infof("[input] using inline JSON (%d chars)", utf8.RuneCountInString(raw))
	}

	cleaned := raw
	if lenient {
		cleaned = CleanLenient(raw)
		log.Info("[json] lenient cleanup applied")
	} else {
		log.Info("[json] strict mode (no cleanup)")
	}

	spec, err := ParseDeckSpec([]byte(cleaned))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			log.Sugar().Errorf("[json] parse failed at line %d col %d: %s", perr.Line, perr.Col, perr.Msg)
		} else {
			log.Sugar().Errorf("[json] parse failed: %s", err)
		}
		if werr := os.WriteFile("debug.cleaned.json", []byte(cleaned), 0o644); werr != nil {
			log.Sugar().Warnf("[json] could not write debug.cleaned.json: %v", werr)
		} else {
			log.Info("[json] wrote cleaned candidate to debug.cleaned.json")
		}
		return nil, err
	}
	msg := "Parsed JSON successfully"
	if lenient {
		msg += " after lenient cleanup"
	}
	log.Info(msg)
	return spec, nil
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Clone returns a deep copy of the spec. Builds normalize text on a
// clone so a caller-supplied spec is never mutated.
func (s *DeckSpec) Clone() *DeckSpec {
	if s == nil {
		return nil
	}
	out := &DeckSpec{}
	if s.Meta != nil {
		m := *s.Meta
		if s.Meta.LayoutAliases != nil {
			m.LayoutAliases = make(map[string]string, len(s.Meta.LayoutAliases))
			for k, v := range s.Meta.LayoutAliases {
				m.LayoutAliases[k] = v
			}
		}
		if s.Meta.Variables != nil {
			m.Variables = make(VarMap, len(s.Meta.Variables))
			for k, v := range s.Meta.Variables {
				m.Variables[k] = v
			}
		}
		if s.Meta.Defaults != nil {
			d := *s.Meta.Defaults
			m.Defaults = &d
		}
		out.Meta = &m
	}
	for _, sl := range s.Slides {
		out.Slides = append(out.Slides, sl.clone())
	}
	return out
}

func (s *SlideSpec) clone() *SlideSpec {
	if s == nil {
		return nil
	}
	c := *s
	if s.Regions != nil {
		c.Regions = make(map[string]*RegionSpec, len(s.Regions))
		for k, r := range s.Regions {
			c.Regions[k] = r.clone()
		}
	}
	c.Style = s.Style.clone()
	if s.Background != nil {
		b := *s.Background
		c.Background = &b
	}
	return &c
}

func (r *RegionSpec) clone() *RegionSpec {
	if r == nil {
		return nil
	}
	c := *r
	c.Bullets = cloneBullets(r.Bullets)
	return &c
}

func cloneBullets(nodes []*BulletNode) []*BulletNode {
	if nodes == nil {
		return nil
	}
	out := make([]*BulletNode, 0, len(nodes))
	for _, n := range nodes {
		c := *n
		c.Style = n.Style.clone()
		c.Children = cloneBullets(n.Children)
		out = append(out, &c)
	}
	return out
}

func (st *StyleSpec) clone() *StyleSpec {
	if st == nil {
		return nil
	}
	c := *st
	if st.Bold != nil {
		b := *st.Bold
		c.Bold = &b
	}
	if st.Italic != nil {
		i := *st.Italic
		c.Italic = &i
	}
	return &c
}
