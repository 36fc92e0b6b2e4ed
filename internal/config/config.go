// Package config loads the site.yaml configuration. The loaded struct
// is passed explicitly through the pipeline; nothing here is ambient
// state, which keeps every stage testable with a literal SiteConfig.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds the configuration from the site.yaml file plus any
// environment overrides.
type SiteConfig struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author"`
	BaseURL     string         `yaml:"baseurl"`
	Description string         `yaml:"description"`
	Theme       string         `yaml:"theme"`
	Params      map[string]any `yaml:"params"`
}

// Load reads and decodes the configuration file, applies defaults and
// then environment overrides (STANZA_TITLE, STANZA_BASEURL,
// STANZA_AUTHOR), so a deploy environment can point the same content at
// a different base URL without editing the file.
func Load(path string) (SiteConfig, error) {
	cfg := SiteConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	cfg.setDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "Blog"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:1313"
	}
	if c.Theme == "" {
		c.Theme = "simple"
	}
}

func (c *SiteConfig) applyEnv() {
	if v := os.Getenv("STANZA_TITLE"); v != "" {
		c.Title = v
	}
	if v := os.Getenv("STANZA_BASEURL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("STANZA_AUTHOR"); v != "" {
		c.Author = v
	}
}
