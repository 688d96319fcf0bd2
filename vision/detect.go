package vision

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

const detectPrompt = `You are analysing a form template image to identify every area where a user should enter information. This image may have been exported from Canva, a word processor, or a PDF editor.

Identify and return EVERY input area, including:

1. EXPLICIT fields - rectangular boxes, bordered cells, underlined blank lines, or dashed areas clearly designed to receive typed content, tick marks, or signatures.

2. IMPLIED fields - blank space directly beneath or beside a label or heading that clearly invites a response, even with NO visible border. Examples: a blank area under "Full Name:", "Date:", "Signature:", "Notes:", "Description:", "Comments:", or any field-label/colon pattern. Also include blank lines made of underscores ( ___ ) used as writing lines. Infer a sensible bounding rectangle that fills the available whitespace associated with that label.

For EACH area return a JSON object in a top-level "fields" array with:
  name       - snake_case identifier inferred from the nearest label
  label      - human-readable label nearest to the widget
  type       - one of: text | multiline | checkbox | signature
  has_border - true if there is already a visible border/box; false if implied
  x_pct      - left edge as percentage of image width  (0-100, float)
  y_pct      - top  edge as percentage of image height (0-100, float)
  w_pct      - field width  as percentage of image width
  h_pct      - field height as percentage of image height

Rules:
- Be precise with coordinates.
- Do NOT include decorative lines, headers, logos, or static body text.
- Use type "multiline" for large text areas (Comments, Notes, Address blocks).
- Use type "signature" for signature lines/boxes.
- Respond with ONLY a raw JSON object - no markdown fences, no commentary.`

// DetectedField is one input area located on a template image. Coordinates
// are percentages of the image dimensions, measured from the top-left
// corner.
type DetectedField struct {
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Type      string  `json:"type"`
	HasBorder bool    `json:"has_border"`
	XPct      float64 `json:"x_pct"`
	YPct      float64 `json:"y_pct"`
	WPct      float64 `json:"w_pct"`
	HPct      float64 `json:"h_pct"`
}

type detectResponse struct {
	Fields []DetectedField `json:"fields"`
}

// DetectFields asks the model for the input areas on one template image.
// Detection is best-effort: any provider or parse failure yields an empty
// result rather than an error, so a conversion still produces a flat PDF.
func (c *Client) DetectFields(ctx context.Context, img []byte) []DetectedField {
	raw, err := c.generate(ctx, "", detectPrompt, [][]byte{img},
		llms.WithMaxTokens(4096),
		llms.WithTemperature(0),
	)
	if err != nil {
		c.log.WithError(err).Warn("field detection failed, converting without widgets")
		return nil
	}

	var resp detectResponse
	if err := parseJSON(raw, &resp); err != nil {
		c.log.WithError(err).Warn("field detection returned unusable JSON")
		return nil
	}
	return resp.Fields
}
