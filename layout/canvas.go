package layout

import (
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/brandform/branding"
)

// Canvas is the drawing surface the engine paints on. All coordinates are
// centimeters with the origin at the BOTTOM-LEFT of the page and Y growing
// upward; font sizes are points. Rect-like calls take the lower-left corner
// of the shape.
type Canvas interface {
	PageSize() (w, h float64)
	AddPage()
	PageNumber() int

	SetFont(family, style string, size float64)
	SetFillColor(c branding.RGB)
	SetDrawColor(c branding.RGB)
	SetTextColor(c branding.RGB)
	SetLineWidth(w float64)
	SetAlpha(alpha float64)

	Rect(x, y, w, h float64, fill, stroke bool)
	RoundRect(x, y, w, h, r float64, fill, stroke bool)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, s string)
	TextRight(x, y float64, s string)
	StringWidth(s string) float64
	Image(path string, x, y, w, h float64)
}

// pdfCanvas adapts a gofpdf document (top-left origin) to the Canvas
// coordinate system. The core fonts are cp1252-encoded, so every string is
// run through the translator before drawing or measuring.
type pdfCanvas struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	w   float64
	h   float64
}

// NewPDFCanvas wraps pdf, which must be configured with "cm" units.
func NewPDFCanvas(pdf *gofpdf.Fpdf) Canvas {
	w, h := pdf.GetPageSize()
	return &pdfCanvas{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
		w:   w,
		h:   h,
	}
}

func (c *pdfCanvas) PageSize() (float64, float64) { return c.w, c.h }
func (c *pdfCanvas) AddPage()                     { c.pdf.AddPage() }
func (c *pdfCanvas) PageNumber() int              { return c.pdf.PageNo() }

func (c *pdfCanvas) SetFont(family, style string, size float64) {
	c.pdf.SetFont(family, style, size)
}

func (c *pdfCanvas) SetFillColor(col branding.RGB) {
	c.pdf.SetFillColor(col.R, col.G, col.B)
}

func (c *pdfCanvas) SetDrawColor(col branding.RGB) {
	c.pdf.SetDrawColor(col.R, col.G, col.B)
}

func (c *pdfCanvas) SetTextColor(col branding.RGB) {
	c.pdf.SetTextColor(col.R, col.G, col.B)
}

func (c *pdfCanvas) SetLineWidth(w float64) { c.pdf.SetLineWidth(w) }

func (c *pdfCanvas) SetAlpha(alpha float64) { c.pdf.SetAlpha(alpha, "Normal") }

func styleStr(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "FD"
	case fill:
		return "F"
	default:
		return "D"
	}
}

func (c *pdfCanvas) Rect(x, y, w, h float64, fill, stroke bool) {
	c.pdf.Rect(x, c.h-y-h, w, h, styleStr(fill, stroke))
}

func (c *pdfCanvas) RoundRect(x, y, w, h, r float64, fill, stroke bool) {
	c.pdf.RoundedRect(x, c.h-y-h, w, h, r, "1234", styleStr(fill, stroke))
}

func (c *pdfCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, c.h-y1, x2, c.h-y2)
}

func (c *pdfCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, c.h-y, c.tr(s))
}

func (c *pdfCanvas) TextRight(x, y float64, s string) {
	t := c.tr(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(t), c.h-y, t)
}

func (c *pdfCanvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.tr(s))
}

func (c *pdfCanvas) Image(path string, x, y, w, h float64) {
	opts := gofpdf.ImageOptions{ReadDpi: false, AllowNegativePosition: false}
	c.pdf.ImageOptions(path, x, c.h-y-h, w, h, false, opts, 0, "")
}

// imageDims reads just enough of the file at path to compute dimensions that
// fit within maxW x maxH while preserving the aspect ratio. When the image
// cannot be decoded it falls back to a wide placeholder box.
func imageDims(path string, maxH, maxW float64) (w, h float64) {
	f, err := os.Open(path)
	if err != nil {
		return maxH * 2, maxH
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil || cfg.Height <= 0 {
		return maxH * 2, maxH
	}

	aspect := float64(cfg.Width) / float64(cfg.Height)
	if aspect < 0.01 {
		aspect = 0.01
	}
	h = maxH
	if maxW/aspect < h {
		h = maxW / aspect
	}
	w = h * aspect
	if w > maxW {
		w = maxW
		h = w / aspect
	}
	return w, h
}
