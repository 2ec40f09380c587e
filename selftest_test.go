package godeck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunSelfTestOnBuiltInTemplate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "roundtrip.pptx")
	if err := RunSelfTest(out, "", nil); err != nil {
		t.Fatalf("RunSelfTest: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output deck missing: %v", err)
	}
}

func TestRunSelfTestBadTemplatePath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "never.pptx")
	err := RunSelfTest(out, filepath.Join(t.TempDir(), "missing.pptx"), nil)
	if err == nil {
		t.Fatal("expected failure for a missing template")
	}
	if !strings.Contains(err.Error(), "build failed") {
		t.Errorf("err = %v, want build failure", err)
	}
}

func TestContainsLevelText(t *testing.T) {
	items := []LevelText{{0, "Alpha"}, {1, "Beta — detail"}}

	if !containsLevelText(items, LevelText{0, "Alpha"}) {
		t.Error("exact match not found")
	}
	// Comparison runs through text normalization on both sides.
	if !containsLevelText(items, LevelText{1, "Beta - detail"}) {
		t.Error("dash-normalized match not found")
	}
	if containsLevelText(items, LevelText{1, "Alpha"}) {
		t.Error("matched text at the wrong level")
	}
}

func TestMissingLevelText(t *testing.T) {
	got := []LevelText{{0, "One"}, {1, "Two"}}
	want := []LevelText{{0, "One"}, {1, "Two"}, {0, "Three"}}

	missing := missingLevelText(got, want)
	if len(missing) != 1 || missing[0].Text != "Three" {
		t.Errorf("missing = %v, want just Three", missing)
	}
	if m := missingLevelText(got, got); len(m) != 0 {
		t.Errorf("self-comparison missing = %v", m)
	}
}
