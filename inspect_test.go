package godeck

import (
	"strings"
	"testing"
)

func TestIdentifySlideLayout(t *testing.T) {
	deck := roundTripDeck(t, twoSlideSpec(), nil)

	id, err := IdentifySlideLayout(deck, 1)
	if err != nil {
		t.Fatalf("IdentifySlideLayout(1): %v", err)
	}
	if id.SlideNumber != 1 || id.LayoutName != "Two Content" || id.LayoutID != "0:2" {
		t.Errorf("slide 1 id = %+v", id)
	}

	id, err = IdentifySlideLayout(deck, 2)
	if err != nil {
		t.Fatalf("IdentifySlideLayout(2): %v", err)
	}
	if id.LayoutName != "Title and Content" || id.LayoutID != "0:1" {
		t.Errorf("slide 2 id = %+v", id)
	}

	for _, n := range []int{0, 3} {
		if _, err := IdentifySlideLayout(deck, n); err == nil ||
			!strings.Contains(err.Error(), "out of range (1..2)") {
			t.Errorf("IdentifySlideLayout(%d) err = %v", n, err)
		}
	}
}

func TestListSlides(t *testing.T) {
	deck := roundTripDeck(t, twoSlideSpec(), nil)

	rows, err := ListSlides(deck)
	if err != nil {
		t.Fatalf("ListSlides: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0] != "[ 1] 0:2  |  Two Content  |  Latency Overview" {
		t.Errorf("row 1 = %q", rows[0])
	}
	if !strings.Contains(rows[1], "Title and Content") || !strings.Contains(rows[1], "Next Steps") {
		t.Errorf("row 2 = %q", rows[1])
	}
}

func TestDescribeSlide(t *testing.T) {
	deck := roundTripDeck(t, twoSlideSpec(), nil)

	dump, err := deck.DescribeSlide(1)
	if err != nil {
		t.Fatalf("DescribeSlide: %v", err)
	}
	for _, want := range []string{
		"Slide 1  |  Layout: 0:2 'Two Content'",
		"Title: Latency Overview",
		"• Placeholder: type=title",
		"• Placeholder: type=body",
		`text="p50 steady"`,
		"level=1",       // the nested bullet
		"- Position: left=", // geometry inherited from the layout
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q", want)
		}
	}

	if _, err := deck.DescribeSlide(99); err == nil ||
		!strings.Contains(err.Error(), "out of range (1..2)") {
		t.Errorf("DescribeSlide(99) err = %v", err)
	}
}

func TestBestEffortTitle(t *testing.T) {
	if got := bestEffortTitle(&parsedShapeTree{}); got != "(no title)" {
		t.Errorf("empty tree title = %q", got)
	}

	// No title shape: the first shape with text wins.
	bodyOnly := &parsedShapeTree{shapes: []*parsedShape{
		{phType: PlaceholderBody, hasText: true, paras: []parsedParagraph{{0, "Body text"}}},
	}}
	if got := bestEffortTitle(bodyOnly); got != "Body text" {
		t.Errorf("body-only title = %q", got)
	}

	// An empty title placeholder falls through to the subtitle.
	withSubtitle := &parsedShapeTree{shapes: []*parsedShape{
		{phType: PlaceholderTitle, hasText: true},
		{phType: PlaceholderSubTitle, hasText: true, paras: []parsedParagraph{{0, "Deck subtitle"}}},
	}}
	if got := bestEffortTitle(withSubtitle); got != "Deck subtitle" {
		t.Errorf("subtitle fallback = %q", got)
	}
}
