package godeck

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// selfTestSpec is the fixture deck for the round-trip check: a
// two-column slide exercising an alias, nested bullets, numbering with
// a start offset, variables and notes, plus a single-column slide with
// a background override.
func selfTestSpec(templatePath string) *DeckSpec {
	return &DeckSpec{
		Meta: &MetaSpec{
			TemplatePath:  templatePath,
			DefaultLayout: "Title and Content",
			LayoutAliases: map[string]string{
				"two column with header": "Two Content",
				"Title + Bullets":        "Title and Content",
			},
			FallbackLayout: "Title and Content",
			Variables:      VarMap{"client": "TestClient", "year": "2025"},
			Defaults: &DefaultsSpec{
				ListType:    "bullet",
				Fit:         "shrink",
				FontFamily:  "Calibri",
				TitleSizePt: 36,
				BodySizePt:  20,
			},
		},
		Slides: []*SlideSpec{
			{
				Layout: "two column with header",
				Title:  "Executive Summary — {{client}} ({{year}})",
				Regions: map[string]*RegionSpec{
					"left": {
						ListType: "bullet",
						Bullets: []*BulletNode{
							{Text: "Mission & context", Children: []*BulletNode{
								{Text: "Safety-critical systems"},
								{Text: "Certification constraints"},
							}},
							{Text: "Opportunities"},
						},
					},
					"right": {
						ListType: "number",
						StartAt:  3,
						Bullets: []*BulletNode{
							{Text: "Near-term wins"},
							{Text: "12-month roadmap", Children: []*BulletNode{
								{Text: "Pilot → Scale → Institutionalize"},
							}},
						},
					},
				},
				Notes: "Keep to 60 seconds.",
			},
			{
				Layout: "Title and Content",
				Title:  "Risks & Mitigations — {{client}}",
				Regions: map[string]*RegionSpec{
					"left": {
						Bullets: []*BulletNode{
							{Text: "Model risk management", Children: []*BulletNode{
								{Text: "Data lineage & versioning"},
								{Text: "Independent V&V"},
							}},
							{Text: "Human factors", Children: []*BulletNode{
								{Text: "Procedural safeguards"},
								{Text: "Training & adoption"},
							}},
						},
					},
				},
				Background: &BackgroundSpec{Color: "#FFFFFF"},
			},
		},
	}
}

// RunSelfTest builds the fixture deck at outputPath, reopens the file,
// and verifies the content survived the round trip: titles with
// variables expanded, bullet text and nesting levels in both columns,
// and the speaker notes. Numbering is a formatting property and is not
// asserted; when the right region was merged into the left box its
// items are checked there instead. An empty templatePath runs the test
// against the built-in template.
func RunSelfTest(outputPath, templatePath string, log *zap.Logger) error {
	log = ensureLogger(log)

	spec := selfTestSpec(templatePath)
	if err := BuildDeck(spec, outputPath, &BuildOptions{TemplatePath: templatePath, Logger: log}); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	deck, err := OpenTemplate(outputPath)
	if err != nil {
		return fmt.Errorf("failed to reopen output: %w", err)
	}
	infos, err := deck.ExtractSlides()
	if err != nil {
		return err
	}

	expectedTitle1 := "Executive Summary — TestClient (2025)"
	expectedTitle2 := "Risks & Mitigations — TestClient"

	s1 := FindByTitle(infos, expectedTitle1)
	s2 := FindByTitle(infos, expectedTitle2)
	if s1 == nil || s2 == nil {
		titles := make([]string, 0, len(infos))
		for _, info := range infos {
			titles = append(titles, NormalizeText(info.Title))
		}
		return fmt.Errorf("could not find test slides by title\nexpected: %q and %q\nfound titles: %q",
			NormalizeText(expectedTitle1), NormalizeText(expectedTitle2), titles)
	}

	sugar := log.Sugar()
	sugar.Infof("[Diag] Found Slide 1 title: %q", s1.Title)
	sugar.Infof("[Diag] Slide 1 left: %v", s1.Left)
	sugar.Infof("[Diag] Slide 1 right: %v", s1.Right)
	sugar.Infof("[Diag] Slide 1 body_slots: %d", s1.BodySlots)
	sugar.Infof("[Diag] Found Slide 2 title: %q", s2.Title)
	sugar.Infof("[Diag] Slide 2 left: %v", s2.Left)

	title1 := NormalizeText(s1.Title)
	if !strings.Contains(title1, "Executive Summary") || !strings.Contains(title1, "TestClient (2025)") {
		return fmt.Errorf("title mismatch; got: %q", s1.Title)
	}

	expectedLeft := []LevelText{
		{0, "Mission & context"},
		{1, "Safety-critical systems"},
		{1, "Certification constraints"},
		{0, "Opportunities"},
	}
	if missing := missingLevelText(s1.Left, expectedLeft); len(missing) > 0 {
		return fmt.Errorf("left bullets mismatch; missing %v; got %v", missing, s1.Left)
	}

	// Right may have merged into the left box when the layout had a
	// single body slot.
	target := s1.Right
	if len(target) == 0 {
		target = s1.Left
	}
	for _, want := range []LevelText{
		{0, "Near-term wins"},
		{0, "12-month roadmap"},
		{1, "Pilot → Scale → Institutionalize"},
	} {
		if !containsLevelText(target, want) {
			return fmt.Errorf("missing %q at level %d; got %v", want.Text, want.Level, target)
		}
	}

	title2 := NormalizeText(s2.Title)
	if !strings.Contains(title2, "Risks & Mitigations") || !strings.Contains(title2, "TestClient") {
		return fmt.Errorf("slide 2 title mismatch; got: %q", s2.Title)
	}
	expect2 := []string{
		"Model risk management", "Data lineage & versioning", "Independent V&V",
		"Human factors", "Procedural safeguards", "Training & adoption",
	}
	var missing2 []string
	for _, want := range expect2 {
		found := false
		for _, lt := range s2.Left {
			if lt.Text == want {
				found = true
				break
			}
		}
		if !found {
			missing2 = append(missing2, want)
		}
	}
	if len(missing2) > 0 {
		return fmt.Errorf("slide 2 left content mismatch; missing %q; got %v", missing2, s2.Left)
	}

	if !strings.Contains(NormalizeText(s1.Notes), "Keep to 60 seconds") {
		return fmt.Errorf("notes mismatch; got: %q", s1.Notes)
	}

	sugar.Infof("[OK] round-trip test passed. Output: %s", outputPath)
	return nil
}

// containsLevelText reports whether an item with the wanted level and
// normalized text exists.
func containsLevelText(items []LevelText, want LevelText) bool {
	for _, lt := range items {
		if lt.Level == want.Level && NormalizeText(lt.Text) == NormalizeText(want.Text) {
			return true
		}
	}
	return false
}

// missingLevelText returns the wanted (level, text) pairs absent from got.
func missingLevelText(got, want []LevelText) []LevelText {
	var missing []LevelText
	for _, w := range want {
		found := false
		for _, g := range got {
			if g.Level == w.Level && g.Text == w.Text {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, w)
		}
	}
	return missing
}
