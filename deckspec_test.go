package godeck

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDeckSpecBareStringBullets(t *testing.T) {
	data := []byte(`{
  "slides": [{
    "title": "Mixed",
    "regions": {"left": {"bullets": [
      "plain string",
      {"text": "object node", "children": ["nested string"]}
    ]}}
  }]
}`)
	spec, err := ParseDeckSpec(data)
	if err != nil {
		t.Fatalf("ParseDeckSpec failed: %v", err)
	}
	bullets := spec.Slides[0].Regions["left"].Bullets
	if len(bullets) != 2 {
		t.Fatalf("got %d bullets, want 2", len(bullets))
	}
	if bullets[0].Text != "plain string" || bullets[0].Style != nil || bullets[0].Children != nil {
		t.Errorf("bare string shorthand parsed wrong: %+v", bullets[0])
	}
	if bullets[1].Text != "object node" {
		t.Errorf("object node text = %q", bullets[1].Text)
	}
	if len(bullets[1].Children) != 1 || bullets[1].Children[0].Text != "nested string" {
		t.Errorf("nested bare string parsed wrong: %+v", bullets[1].Children)
	}
}

func TestVarMapCoercion(t *testing.T) {
	data := []byte(`{
  "meta": {"variables": {"s": "str", "n": 2025, "f": 1.5, "b": true, "z": null}},
  "slides": [{"title": "x"}]
}`)
	spec, err := ParseDeckSpec(data)
	if err != nil {
		t.Fatalf("ParseDeckSpec failed: %v", err)
	}
	vars := spec.Meta.Variables
	want := VarMap{"s": "str", "n": "2025", "f": "1.5", "b": "true", "z": ""}
	for k, w := range want {
		if vars[k] != w {
			t.Errorf("variable %q = %q, want %q", k, vars[k], w)
		}
	}
}

func TestVarMapRejectsStructuredValues(t *testing.T) {
	data := []byte(`{"meta": {"variables": {"bad": [1, 2]}}, "slides": []}`)
	_, err := ParseDeckSpec(data)
	if err == nil {
		t.Fatal("expected error for array-valued variable")
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestParseErrorLineCol(t *testing.T) {
	data := []byte("{\n  \"slides\": [,]\n}")
	_, err := ParseDeckSpec(data)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *ParseError", err)
	}
	if perr.Line != 2 {
		t.Errorf("line = %d, want 2", perr.Line)
	}
	if perr.Col < 1 {
		t.Errorf("col = %d", perr.Col)
	}
	if perr.Unwrap() == nil {
		t.Error("ParseError should wrap the json error")
	}
	if !strings.Contains(perr.Error(), "line 2") {
		t.Errorf("message should carry the position: %v", perr)
	}
}

func TestParseErrorTypeMismatch(t *testing.T) {
	data := []byte(`{"slides": [{"like_slide": "three"}]}`)
	_, err := ParseDeckSpec(data)
	if err == nil {
		t.Fatal("expected type error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *ParseError", err)
	}
}

func TestLineColAt(t *testing.T) {
	data := []byte("ab\ncd\nef")
	cases := []struct {
		offset    int64
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 3, 2},
		{99, 3, 3}, // clamped to end
	}
	for _, c := range cases {
		line, col := lineColAt(data, c.offset)
		if line != c.line || col != c.col {
			t.Errorf("lineColAt(%d) = %d:%d, want %d:%d", c.offset, line, col, c.line, c.col)
		}
	}
}

func TestLoadDeckSpecInline(t *testing.T) {
	spec, err := LoadDeckSpec(`{"slides": [{"title": "Inline"}]}`, false, nil)
	if err != nil {
		t.Fatalf("LoadDeckSpec failed: %v", err)
	}
	if len(spec.Slides) != 1 || spec.Slides[0].Title != "Inline" {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestLoadDeckSpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	if err := os.WriteFile(path, []byte(`{"slides": [{"title": "FromFile"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadDeckSpec(path, false, nil)
	if err != nil {
		t.Fatalf("LoadDeckSpec failed: %v", err)
	}
	if spec.Slides[0].Title != "FromFile" {
		t.Errorf("title = %q", spec.Slides[0].Title)
	}
}

func TestLoadDeckSpecLenient(t *testing.T) {
	raw := "```json\n{\"slides\": [{\"title\": \"Fenced\"},]}\n```"
	spec, err := LoadDeckSpec(raw, true, nil)
	if err != nil {
		t.Fatalf("lenient load failed: %v", err)
	}
	if spec.Slides[0].Title != "Fenced" {
		t.Errorf("title = %q", spec.Slides[0].Title)
	}
}

func TestLoadDeckSpecWritesDebugFile(t *testing.T) {
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatal(wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	_, err := LoadDeckSpec(`{"slides": [`, false, nil)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := os.Stat("debug.cleaned.json"); err != nil {
		t.Errorf("debug.cleaned.json not written: %v", err)
	}
}

func TestDeckSpecClone(t *testing.T) {
	boolTrue := true
	orig := &DeckSpec{
		Meta: &MetaSpec{
			LayoutAliases: map[string]string{"a": "b"},
			Variables:     VarMap{"k": "v"},
			Defaults:      &DefaultsSpec{BodySizePt: 20},
		},
		Slides: []*SlideSpec{
			{
				Title: "One",
				Style: &StyleSpec{Bold: &boolTrue},
				Regions: map[string]*RegionSpec{
					"left": {Bullets: []*BulletNode{
						{Text: "root", Children: []*BulletNode{{Text: "kid"}}},
					}},
				},
				Background: &BackgroundSpec{Color: "#FFFFFF"},
			},
		},
	}

	clone := orig.Clone()
	clone.Meta.LayoutAliases["a"] = "changed"
	clone.Meta.Variables["k"] = "changed"
	clone.Meta.Defaults.BodySizePt = 99
	clone.Slides[0].Title = "changed"
	*clone.Slides[0].Style.Bold = false
	clone.Slides[0].Regions["left"].Bullets[0].Text = "changed"
	clone.Slides[0].Regions["left"].Bullets[0].Children[0].Text = "changed"
	clone.Slides[0].Background.Color = "#000000"

	if orig.Meta.LayoutAliases["a"] != "b" || orig.Meta.Variables["k"] != "v" {
		t.Error("meta maps shared with clone")
	}
	if orig.Meta.Defaults.BodySizePt != 20 {
		t.Error("defaults shared with clone")
	}
	if orig.Slides[0].Title != "One" {
		t.Error("slide shared with clone")
	}
	if *orig.Slides[0].Style.Bold != true {
		t.Error("style bold pointer shared with clone")
	}
	b := orig.Slides[0].Regions["left"].Bullets[0]
	if b.Text != "root" || b.Children[0].Text != "kid" {
		t.Error("bullet tree shared with clone")
	}
	if orig.Slides[0].Background.Color != "#FFFFFF" {
		t.Error("background shared with clone")
	}
}

func TestCloneNil(t *testing.T) {
	var spec *DeckSpec
	if spec.Clone() != nil {
		t.Error("nil spec should clone to nil")
	}
}
