package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	tests := []struct {
		in, home, want string
	}{
		{"", "/home/u", ""},
		{"  ", "/home/u", ""},
		{"~/decks/t.pptx", "/home/u", filepath.Join("/home/u", "decks/t.pptx")},
		{"~/x", "", "~/x"}, // no home to expand against
		{"/abs/path.pptx", "/home/u", "/abs/path.pptx"},
		{"rel/path.pptx", "/home/u", "rel/path.pptx"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in, tt.home); got != tt.want {
			t.Errorf("expandPath(%q, %q) = %q, want %q", tt.in, tt.home, got, tt.want)
		}
	}
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "template: /srv/templates/corp.pptx\nfont_dirs:\n  - /srv/fonts\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Template != "/srv/templates/corp.pptx" {
		t.Errorf("template = %q", cfg.Template)
	}
	if len(cfg.FontDirs) != 1 || cfg.FontDirs[0] != "/srv/fonts" {
		t.Errorf("font_dirs = %v", cfg.FontDirs)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("err = %v, want read failure", err)
	}
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	// Point HOME at an empty dir so the default path does not exist.
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Template != "" || len(cfg.FontDirs) != 0 {
		t.Errorf("config not empty: %+v", cfg)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("template: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("err = %v, want parse failure", err)
	}
}
