package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/Hanaasagi/filterlines/internal"
	"github.com/Hanaasagi/filterlines/pkg/segment"
)

type Config struct {
	Search SearchConfig `toml:"search"`
	Filter FilterConfig `toml:"filter"`
	Fold   FoldConfig   `toml:"fold"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

type SearchConfig struct {
	CaseSensitiveStringSearch bool `toml:"case_sensitive_string_search"`
	CaseSensitiveRegexSearch  bool `toml:"case_sensitive_regex_search"`
	InvertSearch              bool `toml:"invert_search"`
	PreserveSearch            bool `toml:"preserve_search"`
}

type FilterConfig struct {
	UseNewBufferForResults bool     `toml:"use_new_buffer_for_results"`
	CustomSeparator        bool     `toml:"custom_separator"`
	DefaultCustomSeparator string   `toml:"default_custom_separator"`
	Include                []string `toml:"include"`
}

type FoldConfig struct {
	Marker      string `toml:"marker"`
	MarkerColor string `toml:"marker_color"`
}

type OutputConfig struct {
	Color    string `toml:"color"` // "auto", "always" or "never"
	WordWrap bool   `toml:"word_wrap"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

const defaultMarker = "⋯ %d folded"

func NewDefaultConfig() *Config {
	opts := internal.DefaultOptions()

	return &Config{
		Search: SearchConfig{
			CaseSensitiveStringSearch: opts.CaseSensitiveStringSearch,
			CaseSensitiveRegexSearch:  opts.CaseSensitiveRegexSearch,
			InvertSearch:              opts.InvertSearch,
			PreserveSearch:            opts.PreserveSearch,
		},
		Filter: FilterConfig{
			UseNewBufferForResults: opts.UseNewBufferForResults,
			CustomSeparator:        opts.CustomSeparator,
			DefaultCustomSeparator: segment.DefaultSeparator,
			Include:                []string{},
		},
		Fold: FoldConfig{
			Marker:      defaultMarker,
			MarkerColor: "yellow",
		},
		Output: OutputConfig{
			Color:    "auto",
			WordWrap: false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func LoadConfigFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // no config file, return defaults
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.Output.Color {
	case "auto", "always", "never", "":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	if c.Filter.CustomSeparator && c.Filter.DefaultCustomSeparator == "" {
		return fmt.Errorf("filter.custom_separator is on but filter.default_custom_separator is empty")
	}
	return nil
}

// Options converts the file settings into the runner options
func (c *Config) Options() internal.Options {
	return internal.Options{
		CaseSensitiveStringSearch: c.Search.CaseSensitiveStringSearch,
		CaseSensitiveRegexSearch:  c.Search.CaseSensitiveRegexSearch,
		InvertSearch:              c.Search.InvertSearch,
		UseNewBufferForResults:    c.Filter.UseNewBufferForResults,
		CustomSeparator:           c.Filter.CustomSeparator,
		DefaultCustomSeparator:    c.Filter.DefaultCustomSeparator,
		PreserveSearch:            c.Search.PreserveSearch,
	}
}
