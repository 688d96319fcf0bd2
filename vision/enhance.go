package vision

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
)

const enhanceSystem = "You are a professional graphic designer and document architect with deep " +
	"expertise in corporate branding and form UX. Your role is to analyse brand " +
	"materials (logo, inspiration images) together with a client's copy brief, " +
	"and design a complete, well-structured, fillable PDF form.\n\n" +
	"Always respond with valid JSON only - no markdown fences, no explanation, " +
	"just the raw JSON object as specified."

const enhanceTemplate = `Analyse the provided brand materials and design a fillable PDF form based on the brief below.

Company: %s
Requested document title: %s

Client's brief - what the form should capture:
%s

Return a single JSON object with EXACTLY this structure (omit optional keys when not needed):

{
  "document_title":    "polished title (refine if needed)",
  "document_subtitle": "one-line instruction for the person completing the form",
  "footer_text":       "concise footer: company - document type - %d",
  "style_notes":       "2-3 adjectives describing brand tone e.g. professional, modern, approachable",
  "brand_colors": {
    "primary_hex":   "#XXXXXX",
    "secondary_hex": "#XXXXXX",
    "accent_hex":    "#XXXXXX"
  },
  "sections": [
    {
      "title":   "Section Name",
      "columns": 1,
      "intro":   "optional single sentence shown above fields (omit if unnecessary)",
      "fields": [
        {
          "type":       "text|email|phone|number|date|textarea|checkbox|dropdown|signature",
          "label":      "Field Label",
          "name":       "snake_case_name",
          "required":   true,
          "options":    ["Option A", "Option B"],
          "height":     2.5,
          "full_width": false,
          "tooltip":    "helpful hover hint"
        }
      ]
    }
  ]
}

Field type rules:
  text      - short single-line (names, reference numbers, job titles)
  email     - email addresses
  phone     - phone numbers
  number    - numeric-only values
  date      - any date (shows DD/MM/YYYY hint)
  textarea  - multi-line answers (descriptions, notes, comments); default height 2.5
  checkbox  - boolean agreement / confirmation
  dropdown  - mutually exclusive choice (include options array)
  signature - handwritten signature box; always full_width: true

Layout rules:
  * columns: 2 for sections with many short paired fields (First/Last Name, Date/Phone etc.)
  * columns: 1 for sections with textareas or single fields
  * ALWAYS end with an "Authorisation" section containing:
      - printed_name (text, required)
      - auth_date (date, required)
      - signature (signature, required, full_width: true)
  * Brand colours should match the visual materials; if no images supplied, choose
    tasteful professional colours that suit the company name and tone.
  * Only include "intro", "options", "height", "full_width", "tooltip" when genuinely useful.`

// maxBrandImages caps how many images are attached to one enhancement call.
const maxBrandImages = 4

// Enhancement is the model's complete form design plus suggested brand
// colors.
type Enhancement struct {
	DocumentTitle    string           `json:"document_title"`
	DocumentSubtitle string           `json:"document_subtitle"`
	FooterText       string           `json:"footer_text"`
	StyleNotes       string           `json:"style_notes"`
	BrandColors      BrandColors      `json:"brand_colors"`
	Sections         []config.Section `json:"sections"`
}

// BrandColors carries the model's color suggestions as hex strings, each
// optional.
type BrandColors struct {
	PrimaryHex   string `json:"primary_hex"`
	SecondaryHex string `json:"secondary_hex"`
	AccentHex    string `json:"accent_hex"`
}

// EnhanceBrand designs a form from up to four brand images and a free-form
// brief. Empty company and title are allowed; the model fills them in.
func (c *Client) EnhanceBrand(ctx context.Context, images [][]byte, brief, company, title string) (*Enhancement, error) {
	if company == "" {
		company = "Not specified"
	}
	if title == "" {
		title = "Not specified"
	}
	if brief == "" {
		brief = "Create a professional general-purpose intake form."
	}
	if len(images) > maxBrandImages {
		images = images[:maxBrandImages]
	}

	prompt := fmt.Sprintf(enhanceTemplate, company, title, brief, time.Now().Year())

	raw, err := c.generate(ctx, enhanceSystem, prompt, images,
		llms.WithMaxTokens(2500),
		llms.WithTemperature(0.35),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, err
	}

	var enh Enhancement
	if err := parseJSON(raw, &enh); err != nil {
		return nil, err
	}
	if enh.DocumentTitle == "" {
		enh.DocumentTitle = "Form"
	}
	if enh.DocumentSubtitle == "" {
		enh.DocumentSubtitle = "Please complete all required fields."
	}
	return &enh, nil
}

// Apply folds the enhancement into cfg. Existing explicit values win over
// the model's suggestions except for sections, which the model owns when it
// produced any.
func (e *Enhancement) Apply(cfg *config.Document) {
	if cfg.DocumentTitle == "" {
		cfg.DocumentTitle = e.DocumentTitle
	}
	if cfg.DocumentSubtitle == "" {
		cfg.DocumentSubtitle = e.DocumentSubtitle
	}
	if cfg.FooterText == "" && e.FooterText != "" {
		cfg.FooterText = e.FooterText
	}
	if len(e.Sections) > 0 {
		cfg.Sections = e.Sections
	}
}

// ApplyColors overrides theme colors with any valid hex suggestions, then
// rebuilds the dependent surface and border tints.
func (e *Enhancement) ApplyColors(theme *branding.Theme) {
	theme.ApplyHexOverrides(
		e.BrandColors.PrimaryHex,
		e.BrandColors.SecondaryHex,
		e.BrandColors.AccentHex,
	)
}
