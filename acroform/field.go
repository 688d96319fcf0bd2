// Package acroform creates interactive PDF form fields (AcroForm widgets)
// and injects them into an already-generated PDF document.
//
// The layout engine and the template converter both describe their widgets
// as Field values positioned in PDF points (origin at the bottom-left of the
// page, Y up). Inject then rewrites the finished document: widget annotation
// objects are appended, page dictionaries gain /Annots entries, and the
// catalog gains the /AcroForm dictionary.
package acroform

import (
	"fmt"
	"strings"
)

// FieldType specifies the kind of interactive widget.
type FieldType int

const (
	TypeText     FieldType = iota // single or multi-line text input
	TypeCheckbox                  // on/off toggle
	TypeDropdown                  // combo box with a fixed option list
)

// Field flag bits per the PDF specification (table 221/226/228).
const (
	flagReadOnly  = 1 << 0
	flagRequired  = 1 << 1
	flagMultiline = 1 << 12
	flagCombo     = 1 << 17
)

// RGB is a stroke/fill color with components in 0..1.
type RGB struct {
	R, G, B float64
}

// Field defines one widget to be injected into a PDF page.
//
// X, Y, W, H are in PDF points with the origin at the bottom-left of the
// page. Page is 1-based.
type Field struct {
	Name     string
	Type     FieldType
	Page     int
	X, Y     float64
	W, H     float64
	Value    string   // default value
	Options  []string // dropdown choices
	Tooltip  string   // /TU alternate description
	FontSize float64  // text display size (default 9)
	MaxLen   int      // 0 = unlimited
	Multi    bool     // multi-line text input
	Required bool
	ReadOnly bool

	// Optional visible border, used for detected fields that had no printed
	// box. Zero width means no border entries are written at all.
	BorderWidth float64
	BorderColor RGB
}

// annotation serializes the field as a complete widget annotation dictionary
// (without the surrounding "N 0 obj … endobj").
func (f *Field) annotation() string {
	var b strings.Builder

	fmt.Fprintf(&b, "<</Type /Annot /Subtype /Widget /T (%s)", escapeString(f.Name))
	if f.Tooltip != "" {
		fmt.Fprintf(&b, " /TU (%s)", escapeString(f.Tooltip))
	}
	fmt.Fprintf(&b, " /Rect [%.2f %.2f %.2f %.2f] /F 4", f.X, f.Y, f.X+f.W, f.Y+f.H)

	ff := 0
	if f.ReadOnly {
		ff |= flagReadOnly
	}
	if f.Required {
		ff |= flagRequired
	}

	fontSize := f.FontSize
	if fontSize <= 0 {
		fontSize = 9
	}

	switch f.Type {
	case TypeText:
		b.WriteString(" /FT /Tx")
		fmt.Fprintf(&b, " /DA (/Helv %.1f Tf 0 g)", fontSize)
		if f.Value != "" {
			fmt.Fprintf(&b, " /V (%s)", escapeString(f.Value))
		}
		if f.MaxLen > 0 {
			fmt.Fprintf(&b, " /MaxLen %d", f.MaxLen)
		}
		if f.Multi {
			ff |= flagMultiline
		}

	case TypeCheckbox:
		b.WriteString(" /FT /Btn")
		if isChecked(f.Value) {
			b.WriteString(" /V /Yes /AS /Yes")
		} else {
			b.WriteString(" /V /Off /AS /Off")
		}

	case TypeDropdown:
		b.WriteString(" /FT /Ch")
		ff |= flagCombo
		if len(f.Options) > 0 {
			opts := make([]string, len(f.Options))
			for i, opt := range f.Options {
				opts[i] = fmt.Sprintf("(%s)", escapeString(opt))
			}
			fmt.Fprintf(&b, " /Opt [%s]", strings.Join(opts, " "))
		}
		if f.Value != "" {
			fmt.Fprintf(&b, " /V (%s)", escapeString(f.Value))
		}
		fmt.Fprintf(&b, " /DA (/Helv %.1f Tf 0 g)", fontSize)
	}

	if ff != 0 {
		fmt.Fprintf(&b, " /Ff %d", ff)
	}

	if f.BorderWidth > 0 {
		fmt.Fprintf(&b, " /BS <</W %.2f /S /S>> /MK <</BC [%.2f %.2f %.2f]>>",
			f.BorderWidth, f.BorderColor.R, f.BorderColor.G, f.BorderColor.B)
	}

	b.WriteString(">>")
	return b.String()
}

func isChecked(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "on", "1":
		return true
	}
	return false
}

// escapeString escapes special characters in a PDF literal string.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `(`, `\(`)
	s = strings.ReplaceAll(s, `)`, `\)`)
	return s
}
