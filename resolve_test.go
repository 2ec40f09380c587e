package godeck

import (
	"strings"
	"testing"
)

// helper: the built-in template, fatal on error.
func defaultTemplate(t *testing.T) *Template {
	t.Helper()
	tmpl, err := DefaultTemplate()
	if err != nil {
		t.Fatalf("DefaultTemplate failed: %v", err)
	}
	return tmpl
}

func TestParseLayoutToken(t *testing.T) {
	mi, li, err := parseLayoutToken("1:4")
	if err != nil || mi != 1 || li != 4 {
		t.Errorf("parseLayoutToken(1:4) = %d,%d,%v", mi, li, err)
	}
	mi, li, err = parseLayoutToken(" 0 : 2 ")
	if err != nil || mi != 0 || li != 2 {
		t.Errorf("parseLayoutToken with spaces = %d,%d,%v", mi, li, err)
	}
	for _, bad := range []string{"", "3", "a:b", "1:2:3", "x:1"} {
		if _, _, err := parseLayoutToken(bad); err == nil {
			t.Errorf("parseLayoutToken(%q) should fail", bad)
		}
	}
}

func TestResolveLayoutByToken(t *testing.T) {
	tmpl := defaultTemplate(t)
	lay, trace, err := ResolveLayout(tmpl, &SlideSpec{LayoutID: "0:2"}, nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Two Content" || lay.Token() != "0:2" {
		t.Errorf("got [%s] %s", lay.Token(), lay.Name)
	}
	if !strings.Contains(trace, "token '0:2'") {
		t.Errorf("trace = %q", trace)
	}
}

func TestResolveLayoutByName(t *testing.T) {
	tmpl := defaultTemplate(t)
	// Runs of whitespace in the requested name collapse before matching.
	lay, _, err := ResolveLayout(tmpl, &SlideSpec{Layout: "Two   Content"}, nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Two Content" {
		t.Errorf("got %s", lay.Name)
	}
}

func TestResolveLayoutAlias(t *testing.T) {
	tmpl := defaultTemplate(t)
	meta := &MetaSpec{LayoutAliases: map[string]string{"two column with header": "Two Content"}}
	lay, _, err := ResolveLayout(tmpl, &SlideSpec{Layout: "two column with header"}, meta, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Two Content" {
		t.Errorf("alias resolved to %s", lay.Name)
	}
}

func TestResolveLayoutBadTokenFallsThrough(t *testing.T) {
	tmpl := defaultTemplate(t)
	lay, _, err := ResolveLayout(tmpl, &SlideSpec{LayoutID: "9:9", Layout: "Blank"}, nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Blank" {
		t.Errorf("fallthrough picked %s, want Blank", lay.Name)
	}
}

func TestResolveLayoutBadTokenStrict(t *testing.T) {
	tmpl := defaultTemplate(t)
	_, _, err := ResolveLayout(tmpl, &SlideSpec{LayoutID: "nope"}, nil, true, nil)
	if err == nil {
		t.Fatal("strict mode should reject a malformed token")
	}
	if !strings.Contains(err.Error(), "bad layout_id 'nope'") {
		t.Errorf("error = %v", err)
	}
	_, _, err = ResolveLayout(tmpl, &SlideSpec{LayoutID: "0:99"}, nil, true, nil)
	if err == nil {
		t.Fatal("strict mode should reject an out-of-range token")
	}
}

func TestResolveLayoutLikeSlide(t *testing.T) {
	deck := roundTripDeck(t, twoSlideSpec(), nil)
	lay, _, err := ResolveLayout(deck, &SlideSpec{LikeSlide: 2}, nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Title and Content" {
		t.Errorf("like_slide 2 resolved to %s", lay.Name)
	}
	// An out-of-range slide number is a miss, not a failure.
	lay, _, err = ResolveLayout(deck, &SlideSpec{LikeSlide: 40}, &MetaSpec{DefaultLayout: "Blank"}, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Blank" {
		t.Errorf("unresolved like_slide picked %s, want the default", lay.Name)
	}
}

func TestResolveLayoutDefaults(t *testing.T) {
	tmpl := defaultTemplate(t)
	meta := &MetaSpec{DefaultLayout: "No Such Layout", FallbackLayout: "Title Slide"}
	lay, _, err := ResolveLayout(tmpl, &SlideSpec{}, meta, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Name != "Title Slide" {
		t.Errorf("fallback resolved to %s", lay.Name)
	}
}

func TestResolveLayoutFinalFallback(t *testing.T) {
	tmpl := defaultTemplate(t)
	lay, trace, err := ResolveLayout(tmpl, &SlideSpec{Layout: "Nowhere To Be Found"}, nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay.Token() != "0:0" {
		t.Errorf("final fallback = [%s] %s, want the first layout", lay.Token(), lay.Name)
	}
	if !strings.Contains(trace, "FINAL fallback") {
		t.Errorf("trace = %q", trace)
	}
}

func TestResolveLayoutNilSlide(t *testing.T) {
	tmpl := defaultTemplate(t)
	lay, _, err := ResolveLayout(tmpl, nil, nil, false, nil)
	if err != nil {
		t.Fatalf("ResolveLayout failed: %v", err)
	}
	if lay == nil {
		t.Fatal("nil slide spec should still resolve to the first layout")
	}
}

func TestCollapseSpaces(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Two  Content", "Two Content"},
		{"  padded\tname  ", "padded name"},
		{"", ""},
	}
	for _, c := range cases {
		if got := collapseSpaces(c.in); got != c.want {
			t.Errorf("collapseSpaces(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
