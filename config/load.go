package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads and validates a JSON configuration file.
func Load(path string) (*Document, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return nil, fmt.Errorf("config: file must be .json, got %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON configuration.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: invalid JSON: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate performs the schema checks that must pass before layout begins.
func (d *Document) Validate() error {
	if d.DocumentTitle == "" && d.CompanyName == "" {
		return fmt.Errorf("config: must contain at least document_title or company_name")
	}
	switch strings.ToLower(d.PageSize) {
	case "", "a4", "letter":
	default:
		return fmt.Errorf("config: unknown page_size %q (want a4 or letter)", d.PageSize)
	}
	for i := range d.Sections {
		s := &d.Sections[i]
		if s.Columns != 0 && s.Columns != 1 && s.Columns != 2 {
			return fmt.Errorf("config: section %q: columns must be 1 or 2, got %d", s.Title, s.Columns)
		}
		for j := range s.Fields {
			f := &s.Fields[j]
			if f.Name == "" && f.Label == "" {
				return fmt.Errorf("config: field %d in section %q must have a name or label", j, s.Title)
			}
		}
	}
	return nil
}

// Slug converts a title into a filesystem-friendly file stem.
func Slug(title string) string {
	r := strings.NewReplacer(" ", "_", "/", "_")
	return r.Replace(strings.ToLower(title))
}
