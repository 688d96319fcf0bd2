// Package template converts a pre-designed flat form (PNG, JPEG, GIF or
// PDF) into a fillable PDF by overlaying transparent widgets on the detected
// input areas.
//
// Images become a single PDF page with the image as a full-bleed background;
// the input areas come from a vision model. PDF templates keep their
// original vector content: each source page is re-imported as a template
// object and the widgets come from caller-supplied boxes, since detection
// needs a rasterized page.
package template

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/lvillar/brandform/acroform"
	"github.com/lvillar/brandform/vision"
)

// pageWidthPts is the output page width for image templates; the height
// follows the image aspect ratio.
const pageWidthPts = 612.0

const widgetFontSize = 9

// Detector locates input areas on a rendered template image.
type Detector interface {
	DetectFields(ctx context.Context, img []byte) []vision.DetectedField
}

// PageFields maps 1-based page numbers to input areas for PDF templates.
type PageFields map[int][]vision.DetectedField

// ParsePageFields decodes the per-page box JSON accepted by the CLI and the
// MCP tool: {"1": [{"name": "account", "x_pct": 10, ...}], "2": [...]}.
func ParsePageFields(data []byte) (PageFields, error) {
	var pf PageFields
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("template: parsing page fields: %w", err)
	}
	return pf, nil
}

// Converter turns flat templates into fillable PDFs.
type Converter struct {
	detector Detector
	log      *logrus.Logger
}

// NewConverter builds a converter. detector may be nil, in which case image
// templates convert without widgets.
func NewConverter(detector Detector, log *logrus.Logger) *Converter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Converter{detector: detector, log: log}
}

// Convert dispatches on the template type. pdfFields is only consulted for
// PDF input; image input uses the detector. It returns the finished PDF and
// the number of widgets placed.
func (c *Converter) Convert(ctx context.Context, data []byte, title string, pdfFields PageFields) ([]byte, int, error) {
	if IsPDF(data) {
		return c.convertPDF(data, title, pdfFields)
	}
	return c.convertImage(ctx, data, title)
}

// IsPDF sniffs the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// DecodeBase64 strips an optional data-URI prefix, repairs padding and
// decodes.
func DecodeBase64(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	if pad := len(s) % 4; pad != 0 {
		s += strings.Repeat("=", 4-pad)
	}
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("template: decoding base64: %w", err)
	}
	return out, nil
}

// ── Image templates ──

func (c *Converter) convertImage(ctx context.Context, data []byte, title string) ([]byte, int, error) {
	imgType, err := imageType(data)
	if err != nil {
		return nil, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("template: decoding image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, 0, fmt.Errorf("template: image has no dimensions")
	}

	pageW := pageWidthPts
	pageH := pageW * float64(cfg.Height) / float64(cfg.Width)

	var detected []vision.DetectedField
	if c.detector != nil {
		detected = c.detector.DetectFields(ctx, data)
	}
	c.log.WithField("fields", len(detected)).Debug("image template analysed")

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: imgType}
	pdf.RegisterImageOptionsReader("template", opts, bytes.NewReader(data))
	pdf.ImageOptions("template", 0, 0, pageW, pageH, false, opts, 0, "")

	widgets := make([]acroform.Field, 0, len(detected))
	for i, d := range detected {
		widgets = append(widgets, widgetFromDetection(d, i, 1, pageW, pageH))
	}

	return finish(pdf, widgets)
}

// imageType maps the sniffed content type to the name gofpdf expects.
func imageType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("template: unsupported image format")
	}
}

// ── PDF templates ──

func (c *Converter) convertPDF(data []byte, title string, pdfFields PageFields) ([]byte, int, error) {
	pageCount, err := pdfPageCount(data)
	if err != nil {
		return nil, 0, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt"})
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetAutoPageBreak(false, 0)

	rs := io.ReadSeeker(bytes.NewReader(data))
	imp := gofpdi.NewImporter()

	var widgets []acroform.Field
	for pageNo := 1; pageNo <= pageCount; pageNo++ {
		tpl := imp.ImportPageFromStream(pdf, &rs, pageNo, "/MediaBox")
		pageW, pageH := importedPageSize(imp, pageNo)

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, pageW, pageH)

		for i, d := range pdfFields[pageNo] {
			widgets = append(widgets, widgetFromDetection(d, pageNo*10000+i, pageNo, pageW, pageH))
		}
	}

	c.log.WithFields(logrus.Fields{
		"pages":  pageCount,
		"fields": len(widgets),
	}).Debug("pdf template rebuilt")

	return finish(pdf, widgets)
}

// pdfPageCount parses the document with pdfcpu, rejecting anything it
// cannot read.
func pdfPageCount(data []byte) (int, error) {
	pctx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("template: parsing PDF: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("template: parsing PDF: %w", err)
	}
	if pctx.PageCount < 1 {
		return 0, fmt.Errorf("template: PDF has no pages")
	}
	return pctx.PageCount, nil
}

// importedPageSize reads the page box the importer recorded for pageNo, in
// points.
func importedPageSize(imp *gofpdi.Importer, pageNo int) (w, h float64) {
	if box, ok := imp.GetPageSizes()[pageNo]["/MediaBox"]; ok {
		w, h = box["w"], box["h"]
	}
	if w <= 0 || h <= 0 {
		w, h = 612, 792
	}
	return w, h
}

// ── Shared widget construction ──

// widgetFromDetection converts percentage coordinates (top-left origin) to a
// bottom-left point rect and applies the per-type widget settings. Implied
// fields, those without a printed box, get a faint gray hint border.
func widgetFromDetection(d vision.DetectedField, index, page int, pageW, pageH float64) acroform.Field {
	if d.WPct <= 0 {
		d.WPct = 10
	}
	if d.HPct <= 0 {
		d.HPct = 3
	}

	x := clamp(d.XPct/100*pageW, 0, pageW-1)
	yTop := clamp(d.YPct/100*pageH, 0, pageH-1)
	w := clamp(d.WPct/100*pageW, 1, pageW-x)
	h := clamp(d.HPct/100*pageH, 1, pageH-yTop)
	y := pageH - yTop - h

	f := acroform.Field{
		Name:     safeName(d.Name, index),
		Tooltip:  detectionLabel(d),
		Page:     page,
		FontSize: widgetFontSize,
	}

	switch strings.ToLower(d.Type) {
	case "checkbox":
		f.Type = acroform.TypeCheckbox
		size := w
		if h < w {
			size = h
		}
		w, h = size, size
	case "multiline", "signature":
		f.Type = acroform.TypeText
		f.Multi = true
	default:
		f.Type = acroform.TypeText
	}

	if !d.HasBorder {
		f.BorderWidth = 0.5
		f.BorderColor = acroform.RGB{R: 0.6, G: 0.6, B: 0.6}
	}

	f.X, f.Y, f.W, f.H = x, y, w, h
	return f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func detectionLabel(d vision.DetectedField) string {
	if d.Label != "" {
		return d.Label
	}
	words := strings.Split(strings.ReplaceAll(d.Name, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// safeName folds unsafe runes to underscores and appends the index so names
// stay unique across a conversion.
func safeName(raw string, index int) string {
	if raw == "" {
		raw = fmt.Sprintf("field_%d", index)
	}
	var b strings.Builder
	for _, r := range raw {
		if r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return fmt.Sprintf("%s_%d", b.String(), index)
}

func finish(pdf *gofpdf.Fpdf, widgets []acroform.Field) ([]byte, int, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("template: rendering: %w", err)
	}
	out, err := acroform.Inject(buf.Bytes(), widgets)
	if err != nil {
		return nil, 0, fmt.Errorf("template: injecting widgets: %w", err)
	}
	return out, len(widgets), nil
}
