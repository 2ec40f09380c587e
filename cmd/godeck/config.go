package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// cliConfig is the optional ~/.godeck/config.yaml: a default template
// and extra font directories for the shrink and preview passes. Flags
// override both.
type cliConfig struct {
	Template string   `yaml:"template"`
	FontDirs []string `yaml:"font_dirs"`
}

// loadConfig reads the config file. A missing default file yields an
// empty config; an explicitly named file must exist.
func loadConfig(pathArg string) (*cliConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	path := strings.TrimSpace(pathArg)
	if path == "" {
		if home == "" {
			return &cliConfig{}, nil
		}
		path = filepath.Join(home, ".godeck", "config.yaml")
	} else {
		path = expandPath(path, home)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && pathArg == "" {
			return &cliConfig{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &cliConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Template = expandPath(cfg.Template, home)
	for i, d := range cfg.FontDirs {
		cfg.FontDirs[i] = expandPath(d, home)
	}
	return cfg, nil
}

// expandPath resolves a leading "~/" against the home directory.
func expandPath(v, home string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if home != "" && strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	return v
}
