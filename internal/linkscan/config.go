package linkscan

import (
	"encoding/json"
	"fmt"
	"os"
)

// CollectionConfig names one document collection and the rich-text fields
// scanned inside it. FAQ sub-lists on a document are always scanned in
// addition to these fields.
type CollectionConfig struct {
	Slug   string   `json:"slug"`
	Fields []string `json:"fields"`
}

// Config is the static collection-to-fields map a Scanner operates over.
// It is supplied by the caller, not discovered dynamically.
type Config struct {
	Collections []CollectionConfig `json:"collections"`
	// PageSize caps how many documents a single collection fetch returns.
	PageSize int `json:"pageSize"`
}

// DefaultConfig returns the standard set of scanned collections.
func DefaultConfig() Config {
	return Config{
		Collections: []CollectionConfig{
			{Slug: "posts", Fields: []string{"content"}},
			{Slug: "team", Fields: []string{"bio"}},
			{Slug: "tags", Fields: []string{"description"}},
			{Slug: "certificates", Fields: []string{"description"}},
			{Slug: "faqs", Fields: []string{"content"}},
		},
		PageSize: 500,
	}
}

// LoadConfig reads a Config from a JSON file, filling unset values from
// DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scan config: %w", err)
	}
	cfg := Config{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scan config: %w", err)
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = DefaultConfig().Collections
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	return cfg, nil
}
