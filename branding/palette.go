package branding

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sort"

	// Logo uploads arrive in whatever format the design tool exported.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	color_extractor "github.com/marekm4/color-extractor"
)

const paletteSize = 8

// FromLogo extracts brand colors from a logo image file and builds a Theme.
func FromLogo(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("branding: opening logo: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("branding: decoding logo %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage derives a Theme from an already-decoded logo image.
//
// Strategy:
//  1. Composite onto white so transparent pixels don't skew the palette.
//  2. Extract a dominant-color palette.
//  3. Drop near-white and near-black candidates.
//  4. Sort by HSL saturation, most vibrant first.
//  5. Assign the top three as primary / secondary / accent and derive
//     surface and border as light tints.
func FromImage(img image.Image) *Theme {
	palette := Palette(img, paletteSize)

	candidates := make([]RGB, 0, len(palette))
	for _, c := range palette {
		if l := Luminance(c); l > 0.05 && l < 0.90 {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		candidates = palette
	}
	if len(candidates) == 0 {
		return Default()
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return Saturation(candidates[i]) > Saturation(candidates[j])
	})

	primary := candidates[0]
	secondary := Lighten(primary, 0.14)
	if len(candidates) > 1 {
		secondary = candidates[1]
	}
	accent := Darken(primary, 0.14)
	if len(candidates) > 2 {
		accent = candidates[2]
	}

	// Surface: very light tint of primary; fall back to near-white if the
	// tint stays too dark to host readable field content.
	surface := Lighten(primary, 0.44)
	if Luminance(surface) < 0.88 {
		surface = RGB{248, 249, 250}
	}

	border := Lighten(secondary, 0.16)
	if Luminance(border) < 0.65 {
		border = RGB{210, 212, 216}
	}

	t := baseTheme()
	t.Primary = primary
	t.Secondary = secondary
	t.Accent = accent
	t.Surface = surface
	t.Border = border
	return t
}

// Palette returns up to count dominant colors of img, most prominent first.
func Palette(img image.Image, count int) []RGB {
	flat := flattenOnWhite(img)

	extracted := color_extractor.ExtractColors(flat)
	if len(extracted) > count {
		extracted = extracted[:count]
	}

	out := make([]RGB, 0, len(extracted))
	for _, c := range extracted {
		r, g, b, _ := c.RGBA()
		out = append(out, RGB{int(r >> 8), int(g >> 8), int(b >> 8)})
	}
	return out
}

// flattenOnWhite composites img onto an opaque white background.
func flattenOnWhite(img image.Image) image.Image {
	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	return flat
}
