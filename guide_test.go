package godeck

import (
	"strings"
	"testing"
)

func TestGenerateAuthoringGuide(t *testing.T) {
	guide, err := GenerateAuthoringGuide("")
	if err != nil {
		t.Fatalf("GenerateAuthoringGuide: %v", err)
	}

	for _, want := range []string{
		"ROLE:",
		"deck JSON",
		"Schema (summary):",
		"BulletNode (recursive)",
		"Template specifics:",
		"Two Content",          // the built-in two-body layout
		"Title and Content",    // single-body layout and recommended default
		"12192000 x 6858000",   // built-in slide size
		"~aspect 16:9",
		"```json",              // ready-to-paste meta stub
		"layout_aliases",
		"Authoring guidance:",
	} {
		if !strings.Contains(guide, want) {
			t.Errorf("guide missing %q", want)
		}
	}

	// The stub must carry the template-derived defaults, not placeholders.
	if !strings.Contains(guide, `"default_layout": "Title and Content"`) {
		t.Error("meta stub missing the recommended default layout")
	}
}

func TestGenerateAuthoringGuideBadTemplate(t *testing.T) {
	if _, err := GenerateAuthoringGuide("/no/such/template.pptx"); err == nil {
		t.Fatal("expected error for a missing template")
	}
}

func TestCapNames(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	if got := capNames(names, 2); len(got) != 2 || got[1] != "b" {
		t.Errorf("capNames(_, 2) = %v", got)
	}
	if got := capNames(names, 10); len(got) != 4 {
		t.Errorf("capNames(_, 10) = %v", got)
	}
	if got := capNames(nil, 3); got != nil {
		t.Errorf("capNames(nil, 3) = %v", got)
	}
}

func TestTemplateSpecificsEmptyBuckets(t *testing.T) {
	p := &TemplateProfile{
		SlideSize: ProfileSlideSize{WidthEMU: 9144000, HeightEMU: 6858000, Aspect: "4:3"},
	}
	text, err := templateSpecificsText(p)
	if err != nil {
		t.Fatalf("templateSpecificsText: %v", err)
	}
	if !strings.Contains(text, "(none found)") {
		t.Error("empty layout buckets not flagged")
	}
}
