package godeck

import (
	"strings"
	"testing"
)

func TestCleanLenientCodeFences(t *testing.T) {
	raw := "```json\n{\"slides\": [{\"title\": \"Hello\"}]}\n```"
	cleaned := CleanLenient(raw)
	if strings.Contains(cleaned, "```") {
		t.Errorf("fences not stripped: %q", cleaned)
	}
	if _, err := ParseDeckSpec([]byte(cleaned)); err != nil {
		t.Errorf("cleaned output does not parse: %v", err)
	}
}

func TestCleanLenientBareFence(t *testing.T) {
	raw := "```\n{\"slides\": []}\n```"
	cleaned := CleanLenient(raw)
	if strings.Contains(cleaned, "`") {
		t.Errorf("bare fence not stripped: %q", cleaned)
	}
}

func TestCleanLenientBOM(t *testing.T) {
	raw := "\ufeff{\"slides\": []}"
	cleaned := CleanLenient(raw)
	if strings.HasPrefix(cleaned, "\ufeff") {
		t.Error("BOM not stripped")
	}
}

func TestCleanLenientComments(t *testing.T) {
	raw := `{
  // a line comment
  "slides": [
    /* a block
       comment */
    {"title": "A"}
  ]
}`
	cleaned := CleanLenient(raw)
	if strings.Contains(cleaned, "line comment") || strings.Contains(cleaned, "block") {
		t.Errorf("comments survived: %q", cleaned)
	}
	if _, err := ParseDeckSpec([]byte(cleaned)); err != nil {
		t.Errorf("cleaned output does not parse: %v", err)
	}
}

func TestCleanLenientTrailingCommas(t *testing.T) {
	raw := `{"slides": [{"title": "A",},],}`
	cleaned := CleanLenient(raw)
	if _, err := ParseDeckSpec([]byte(cleaned)); err != nil {
		t.Errorf("trailing commas not removed, parse failed: %v\ncleaned: %s", err, cleaned)
	}
}

func TestCleanLenientLineEndings(t *testing.T) {
	cleaned := CleanLenient("{\"a\": 1}\r\n")
	if strings.Contains(cleaned, "\r") {
		t.Errorf("CR survived: %q", cleaned)
	}
}

func TestCleanLenientValidJSONUntouched(t *testing.T) {
	// Already-valid JSON passes through unchanged: mid-line slashes in
	// URLs, escaped quotes, and a fence marker away from the edges all
	// survive.
	raw := `{
  "meta": {"variables": {"url": "https://x.test/a?b=1"}},
  "slides": [{"title": "A \"quoted\" title", "notes": "mid ` + "```" + ` fence"}]
}`
	if got := CleanLenient(raw); got != raw {
		t.Errorf("valid JSON was altered:\n in: %s\nout: %s", raw, got)
	}
}

func TestRemoveInvalidEscapes(t *testing.T) {
	cases := []struct{ in, want string }{
		{`a\&b`, "a&b"},          // markdown escape, not a JSON escape
		{`a\nb`, `a\nb`},         // legal escape kept
		{`a\"b`, `a\"b`},         // legal escape kept
		{`a\\b`, `a\\b`},         // escaped backslash kept
		{`a\\xb`, `a\xb`},        // second backslash invalid, dropped
		{`tail\`, "tail"},        // trailing backslash dropped
		{"no backslash", "no backslash"},
	}
	for _, c := range cases {
		if got := removeInvalidEscapes(c.in); got != c.want {
			t.Errorf("removeInvalidEscapes(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStripMarkdownEscapes(t *testing.T) {
	cases := []struct{ in, want string }{
		{`V\&V`, "V&V"},
		{`AI\_SE`, "AI_SE"},
		{`\[brackets\]`, "[brackets]"},
		{`C:\temp\file`, `C:\temp\file`}, // letters after backslash stay put
		{"plain", "plain"},
		{"", ""},
	}
	for _, c := range cases {
		if got := stripMarkdownEscapes(c.in); got != c.want {
			t.Errorf("stripMarkdownEscapes(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeSpecText(t *testing.T) {
	spec := &DeckSpec{
		Slides: []*SlideSpec{
			{
				Title: `Verification \& Validation`,
				Notes: `See AI\_SE notes`,
				Regions: map[string]*RegionSpec{
					"left": {Bullets: []*BulletNode{
						{Text: `Data \& lineage`, Children: []*BulletNode{
							{Text: `V\&V`},
						}},
					}},
				},
			},
			nil,
		},
	}
	normalizeSpecText(spec)
	if spec.Slides[0].Title != "Verification & Validation" {
		t.Errorf("title = %q", spec.Slides[0].Title)
	}
	if spec.Slides[0].Notes != "See AI_SE notes" {
		t.Errorf("notes = %q", spec.Slides[0].Notes)
	}
	left := spec.Slides[0].Regions["left"].Bullets
	if left[0].Text != "Data & lineage" || left[0].Children[0].Text != "V&V" {
		t.Errorf("bullets = %q / %q", left[0].Text, left[0].Children[0].Text)
	}
}

func TestExpandVars(t *testing.T) {
	vars := VarMap{"client": "Acme", "year": "2025"}
	cases := []struct{ in, want string }{
		{"{{client}} in {{year}}", "Acme in 2025"},
		{"no tokens", "no tokens"},
		{"{{missing}} stays", "{{missing}} stays"},
		{"", ""},
	}
	for _, c := range cases {
		if got := expandVars(c.in, vars); got != c.want {
			t.Errorf("expandVars(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := expandVars("{{client}}", nil); got != "{{client}}" {
		t.Errorf("nil variables should leave tokens verbatim, got %q", got)
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a\u2014b", "a-b"},               // em dash
		{"a \u2013 b", "a - b"},           // en dash
		{"  spaced   out \n text ", "spaced out text"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
