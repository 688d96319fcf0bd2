// Package branding derives a complete visual identity (Theme) for a document
// build, either from the dominant colors of a company logo or from a fixed
// default palette.
package branding

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit-per-channel RGB color value.
type RGB struct {
	R, G, B int
}

// Hex returns the color as an uppercase hex string, e.g. "#1A2B3C".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func fromColorful(c colorful.Color) RGB {
	c = c.Clamped()
	return RGB{
		R: int(c.R*255 + 0.5),
		G: int(c.G*255 + 0.5),
		B: int(c.B*255 + 0.5),
	}
}

// Theme holds all color and typography tokens for a single document build.
// It is read-only as far as the layout engine is concerned.
type Theme struct {
	// Core palette
	Primary   RGB // header and footer bands
	Secondary RGB // section bars
	Accent    RGB // accent tabs, stripes, focus borders

	// Derived / default tokens
	Background RGB // signature box fill
	Surface    RGB // field box fill
	TextDark   RGB
	TextLight  RGB
	Border     RGB

	// Standard PDF core fonts, no embedding required.
	Font       string
	FontBold   string
	FontItalic string
}

// Default returns the clean professional blue theme used when no logo is
// supplied or color extraction fails.
func Default() *Theme {
	t := baseTheme()
	t.Primary = RGB{31, 78, 151}
	t.Secondary = RGB{52, 109, 189}
	t.Accent = RGB{255, 160, 0}
	t.Surface = RGB{245, 248, 255}
	t.Border = RGB{189, 205, 230}
	return t
}

func baseTheme() *Theme {
	return &Theme{
		Background: RGB{255, 255, 255},
		Surface:    RGB{248, 249, 250},
		TextDark:   RGB{28, 28, 30},
		TextLight:  RGB{255, 255, 255},
		Border:     RGB{210, 212, 216},
		Font:       "Helvetica",
		FontBold:   "Helvetica", // bold selected via style flag
		FontItalic: "Helvetica",
	}
}

// HeaderText returns the highest-contrast text color for the primary band.
func (t *Theme) HeaderText() RGB {
	if IsDark(t.Primary) {
		return t.TextLight
	}
	return t.TextDark
}

// SectionText returns the highest-contrast text color for the section bar.
func (t *Theme) SectionText() RGB {
	if IsDark(t.Secondary) {
		return t.TextLight
	}
	return t.TextDark
}

// Luminance computes WCAG 2.1 relative luminance (0 = black, 1 = white).
func Luminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(v int) float64 {
	f := float64(v) / 255.0
	if f <= 0.03928 {
		return f / 12.92
	}
	return math.Pow((f+0.055)/1.055, 2.4)
}

// IsDark reports whether the color is perceptually dark enough to warrant
// light text on top of it.
func IsDark(c RGB) bool {
	return Luminance(c) < 0.40
}

// Lighten increases HSL lightness by amount (0-1).
func Lighten(c RGB, amount float64) RGB {
	h, s, l := c.colorful().Hsl()
	l = min(1.0, l+amount)
	return fromColorful(colorful.Hsl(h, s, l))
}

// Darken decreases HSL lightness by amount (0-1).
func Darken(c RGB, amount float64) RGB {
	h, s, l := c.colorful().Hsl()
	l = max(0.0, l-amount)
	return fromColorful(colorful.Hsl(h, s, l))
}

// Saturation returns the HSL saturation (0-1) of a color.
func Saturation(c RGB) float64 {
	_, s, _ := c.colorful().Hsl()
	return s
}

// HexToRGB parses "#1A2B3C" into an RGB value. The leading '#' is optional.
func HexToRGB(hex string) (RGB, bool) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return RGB{}, false
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return RGB{}, false
	}
	return RGB{r, g, b}, true
}

// ApplyHexOverrides replaces the core palette entries for which a valid hex
// string is supplied. Empty or malformed values leave the theme untouched.
func (t *Theme) ApplyHexOverrides(primary, secondary, accent string) {
	if c, ok := HexToRGB(primary); ok {
		t.Primary = c
	}
	if c, ok := HexToRGB(secondary); ok {
		t.Secondary = c
	}
	if c, ok := HexToRGB(accent); ok {
		t.Accent = c
	}
}
