// Package config defines the JSON document configuration consumed by the
// layout engine and validates it before any rendering starts.
//
// A configuration describes one branded, fillable form: header identity,
// page size, footer, and an ordered list of sections whose fields become
// interactive widgets.
//
// Example JSON:
//
//	{
//	  "company_name": "Acme Corp",
//	  "document_title": "Client Intake Form",
//	  "page_size": "a4",
//	  "sections": [{
//	    "title": "Basics",
//	    "columns": 1,
//	    "fields": [
//	      {"type": "text", "label": "Name", "name": "name", "required": true}
//	    ]
//	  }]
//	}
package config

import (
	"encoding/json"
	"strings"
)

// Document is the top-level configuration for one PDF build.
// It is immutable once layout begins.
type Document struct {
	Logo             string    `json:"logo,omitempty"`
	CompanyName      string    `json:"company_name,omitempty"`
	DocumentTitle    string    `json:"document_title,omitempty"`
	DocumentSubtitle string    `json:"document_subtitle,omitempty"`
	FooterText       string    `json:"footer_text,omitempty"`
	PageSize         string    `json:"page_size,omitempty"` // "a4" or "letter" (default: letter)
	Output           string    `json:"output,omitempty"`
	Sections         []Section `json:"sections"`
}

// Section is a titled, visually grouped cluster of fields sharing a column
// layout.
type Section struct {
	Title   string  `json:"title"`
	Columns int     `json:"columns,omitempty"` // 1 or 2 (default: 1)
	Intro   string  `json:"intro,omitempty"`
	Fields  []Field `json:"fields"`
}

// Field describes one input widget.
type Field struct {
	Type        string   `json:"type,omitempty"` // see FieldType
	Label       string   `json:"label,omitempty"`
	Name        string   `json:"name,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Default     string   `json:"default,omitempty"` // accepts string, bool or number in JSON
	Options     []string `json:"options,omitempty"`     // dropdown choices
	Height      float64  `json:"height,omitempty"`      // cm, textarea/signature
	FullWidth   bool     `json:"full_width,omitempty"`  // break two-column pairing
	Tooltip     string   `json:"tooltip,omitempty"`     // hover hint
	Placeholder string   `json:"placeholder,omitempty"` // date hint text
}

// UnmarshalJSON also accepts non-string default values: checkbox configs
// commonly carry `"default": true`, and numbers appear on number fields.
// Both are folded into their JSON text.
func (f *Field) UnmarshalJSON(data []byte) error {
	type plain Field
	aux := struct {
		Default json.RawMessage `json:"default"`
		*plain
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.Default = defaultText(aux.Default)
	return nil
}

func defaultText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	return s // true, false or a bare number
}

// FieldType is the closed set of canonical field kinds.
type FieldType string

const (
	TypeText      FieldType = "text"
	TypeEmail     FieldType = "email"
	TypePhone     FieldType = "phone"
	TypeNumber    FieldType = "number"
	TypeDate      FieldType = "date"
	TypeTextarea  FieldType = "textarea"
	TypeCheckbox  FieldType = "checkbox"
	TypeDropdown  FieldType = "dropdown"
	TypeSignature FieldType = "signature"
)

// Kind returns the canonical field type, folding aliases ("multiline" →
// textarea, "select" → dropdown) and treating anything unknown as text.
func (f *Field) Kind() FieldType {
	switch strings.ToLower(f.Type) {
	case "email":
		return TypeEmail
	case "phone":
		return TypePhone
	case "number":
		return TypeNumber
	case "date":
		return TypeDate
	case "textarea", "multiline":
		return TypeTextarea
	case "checkbox":
		return TypeCheckbox
	case "dropdown", "select":
		return TypeDropdown
	case "signature":
		return TypeSignature
	default:
		return TypeText
	}
}

// DisplayLabel returns the label, falling back to the raw name.
func (f *Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// SafeName derives a widget-safe identifier: the explicit name when present,
// else the label, lower-cased with spaces, slashes and hyphens folded to
// underscores.
func (f *Field) SafeName() string {
	raw := f.Name
	if raw == "" {
		raw = f.Label
	}
	if raw == "" {
		raw = "field"
	}
	r := strings.NewReplacer(" ", "_", "/", "_", "-", "_")
	return r.Replace(strings.ToLower(raw))
}

// ColumnCount returns the section's column count clamped to {1, 2}.
func (s *Section) ColumnCount() int {
	if s.Columns == 2 {
		return 2
	}
	return 1
}
