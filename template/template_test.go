package template

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/brandform/vision"
)

// stubDetector returns a fixed detection result.
type stubDetector struct {
	fields []vision.DetectedField
}

func (s *stubDetector) DetectFields(ctx context.Context, img []byte) []vision.DetectedField {
	return s.fields
}

func templatePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding PNG: %v", err)
	}
	return buf.Bytes()
}

func templatePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "Letter", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 11)
		pdf.Text(72, 72, "Name: ____________")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("building source PDF: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", "aGVsbG8=", "hello", true},
		{"data-uri", "data:image/png;base64,aGVsbG8=", "hello", true},
		{"missing-padding", "aGVsbG8", "hello", true},
		{"invalid", "!!not-base64!!", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBase64(tt.in)
			if tt.ok && err != nil {
				t.Fatalf("DecodeBase64: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if string(got) != tt.want {
				t.Errorf("decoded %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF([]byte("%PDF-1.7\n...")) {
		t.Error("PDF magic not recognized")
	}
	if IsPDF([]byte{0x89, 'P', 'N', 'G'}) {
		t.Error("PNG mistaken for PDF")
	}
}

func TestConvertImage(t *testing.T) {
	det := &stubDetector{fields: []vision.DetectedField{
		{Name: "full_name", Label: "Full Name", Type: "text",
			HasBorder: false, XPct: 10, YPct: 15, WPct: 50, HPct: 3},
		{Name: "agree", Label: "Agree", Type: "checkbox",
			HasBorder: true, XPct: 10, YPct: 30, WPct: 3, HPct: 2},
	}}
	c := NewConverter(det, nil)

	out, count, err := c.Convert(context.Background(), templatePNG(t, 1000, 1400), "Converted", nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}

	for _, want := range []string{
		"/T (full_name_0)", "/T (agree_1)",
		"/FT /Tx", "/FT /Btn", "/AcroForm",
		// Implied field gets the hint border.
		"/BS <</W 0.50 /S /S>>",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}

	// Page height follows the image aspect ratio: 612 * 1400/1000.
	if !bytes.Contains(out, []byte("856.80")) {
		t.Error("page height does not follow the image aspect ratio")
	}
}

func TestConvertImageWithoutDetector(t *testing.T) {
	c := NewConverter(nil, nil)
	out, count, err := c.Convert(context.Background(), templatePNG(t, 200, 200), "", nil)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestConvertPDF(t *testing.T) {
	src := templatePDF(t, 2)
	boxes := PageFields{
		1: {{Name: "name", Label: "Name", Type: "text", HasBorder: false,
			XPct: 15, YPct: 8, WPct: 40, HPct: 3}},
		2: {{Name: "notes", Label: "Notes", Type: "multiline", HasBorder: true,
			XPct: 15, YPct: 20, WPct: 70, HPct: 20}},
	}

	c := NewConverter(nil, nil)
	out, count, err := c.Convert(context.Background(), src, "Filled", boxes)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	for _, want := range []string{"/T (name_10000)", "/T (notes_20000)", "/AcroForm"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestParsePageFields(t *testing.T) {
	boxes, err := ParsePageFields([]byte(`{
		"1": [{"name": "account", "type": "text", "x_pct": 10, "y_pct": 20, "w_pct": 40, "h_pct": 3}],
		"3": [{"name": "agree", "type": "checkbox", "x_pct": 5, "y_pct": 90, "w_pct": 3, "h_pct": 2}]
	}`))
	if err != nil {
		t.Fatalf("ParsePageFields: %v", err)
	}
	if len(boxes) != 2 || len(boxes[1]) != 1 || len(boxes[3]) != 1 {
		t.Fatalf("unexpected shape: %+v", boxes)
	}
	if boxes[1][0].Name != "account" || boxes[1][0].WPct != 40 {
		t.Errorf("page 1 box = %+v", boxes[1][0])
	}
	if boxes[3][0].Type != "checkbox" {
		t.Errorf("page 3 box = %+v", boxes[3][0])
	}
}

func TestParsePageFieldsRejectsBadJSON(t *testing.T) {
	for _, in := range []string{`{"one": []}`, `[1, 2]`, `{`} {
		if _, err := ParsePageFields([]byte(in)); err == nil {
			t.Errorf("ParsePageFields(%q): expected error", in)
		}
	}
}

func TestConvertRejectsBrokenPDF(t *testing.T) {
	c := NewConverter(nil, nil)
	_, _, err := c.Convert(context.Background(), []byte("%PDF-1.4 truncated"), "", nil)
	if err == nil {
		t.Fatal("expected an error for an unreadable PDF")
	}
}

func TestWidgetFromDetection(t *testing.T) {
	d := vision.DetectedField{Name: "Sign Here!", Type: "signature",
		HasBorder: false, XPct: 10, YPct: 80, WPct: 40, HPct: 6}
	f := widgetFromDetection(d, 3, 1, 612, 792)

	if f.Name != "Sign_Here__3" {
		t.Errorf("name = %q", f.Name)
	}
	if !f.Multi {
		t.Error("signature widget should be multiline")
	}
	if f.BorderWidth != 0.5 {
		t.Errorf("implied field border width = %v, want 0.5", f.BorderWidth)
	}

	// Top-left percentages flip to a bottom-left rect.
	wantY := 792 - (0.80*792 + 0.06*792)
	if diff := f.Y - wantY; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("y = %v, want %v", f.Y, wantY)
	}
}

func TestWidgetFromDetectionCheckboxSquare(t *testing.T) {
	d := vision.DetectedField{Name: "opt", Type: "checkbox",
		HasBorder: true, XPct: 5, YPct: 5, WPct: 10, HPct: 2}
	f := widgetFromDetection(d, 0, 1, 1000, 1000)

	if f.W != f.H {
		t.Errorf("checkbox not square: %v x %v", f.W, f.H)
	}
	if f.W != 20 {
		t.Errorf("checkbox size = %v, want the smaller extent 20", f.W)
	}
	if f.BorderWidth != 0 {
		t.Error("bordered field should not get the hint border")
	}
}

func TestDetectionLabelFallback(t *testing.T) {
	d := vision.DetectedField{Name: "full_name"}
	if got := detectionLabel(d); got != "Full Name" {
		t.Errorf("label = %q, want %q", got, "Full Name")
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		raw   string
		index int
		want  string
	}{
		{"full name", 0, "full_name_0"},
		{"", 4, "field_4_4"},
		{"ok_name", 12, "ok_name_12"},
	}
	for _, tt := range tests {
		if got := safeName(tt.raw, tt.index); got != tt.want {
			t.Errorf("safeName(%q, %d) = %q, want %q", tt.raw, tt.index, got, tt.want)
		}
	}
}

func TestSniffUnsupportedImage(t *testing.T) {
	c := NewConverter(nil, nil)
	_, _, err := c.Convert(context.Background(), []byte(strings.Repeat("x", 600)), "", nil)
	if err == nil {
		t.Fatal("expected an error for unsupported input")
	}
}
