package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
)

// recordingCanvas captures drawing calls so tests can assert on geometry
// without producing a PDF. String widths are a fixed per-character fake.
type recordingCanvas struct {
	w, h float64
	page int
	ops  []op
}

type op struct {
	kind       string
	page       int
	x, y, w, h float64
	text       string
	fill       bool
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{w: 21.0, h: 29.7}
}

const fakeCharWidth = 0.18

func (c *recordingCanvas) PageSize() (float64, float64) { return c.w, c.h }
func (c *recordingCanvas) AddPage()                     { c.page++ }
func (c *recordingCanvas) PageNumber() int              { return c.page }

func (c *recordingCanvas) SetFont(family, style string, size float64) {}
func (c *recordingCanvas) SetFillColor(col branding.RGB)              {}
func (c *recordingCanvas) SetDrawColor(col branding.RGB)              {}
func (c *recordingCanvas) SetTextColor(col branding.RGB)              {}
func (c *recordingCanvas) SetLineWidth(w float64)                     {}
func (c *recordingCanvas) SetAlpha(alpha float64)                     {}

func (c *recordingCanvas) Rect(x, y, w, h float64, fill, stroke bool) {
	c.ops = append(c.ops, op{kind: "rect", page: c.page, x: x, y: y, w: w, h: h, fill: fill})
}

func (c *recordingCanvas) RoundRect(x, y, w, h, r float64, fill, stroke bool) {
	c.ops = append(c.ops, op{kind: "roundrect", page: c.page, x: x, y: y, w: w, h: h, fill: fill})
}

func (c *recordingCanvas) Line(x1, y1, x2, y2 float64) {
	c.ops = append(c.ops, op{kind: "line", page: c.page, x: x1, y: y1, w: x2 - x1})
}

func (c *recordingCanvas) Text(x, y float64, s string) {
	c.ops = append(c.ops, op{kind: "text", page: c.page, x: x, y: y, text: s})
}

func (c *recordingCanvas) TextRight(x, y float64, s string) {
	c.ops = append(c.ops, op{kind: "textright", page: c.page, x: x, y: y, text: s})
}

func (c *recordingCanvas) StringWidth(s string) float64 {
	return fakeCharWidth * float64(len(s))
}

func (c *recordingCanvas) Image(path string, x, y, w, h float64) {
	c.ops = append(c.ops, op{kind: "image", page: c.page, x: x, y: y, w: w, h: h, text: path})
}

// sectionBars returns the filled full-content-width bars of section height.
func (c *recordingCanvas) sectionBars() []op {
	usable := c.w - 2*Margin
	var bars []op
	for _, o := range c.ops {
		if o.kind == "rect" && o.fill && near(o.w, usable) && near(o.h, SectionBarHeight) {
			bars = append(bars, o)
		}
	}
	return bars
}

func (c *recordingCanvas) findText(s string) *op {
	for i := range c.ops {
		if c.ops[i].kind == "text" && c.ops[i].text == s {
			return &c.ops[i]
		}
	}
	return nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func run(t *testing.T, cfg *config.Document) (*recordingCanvas, *Engine, []widget) {
	t.Helper()
	canvas := newRecordingCanvas()
	eng := New(cfg, branding.Default(), canvas)
	fields := eng.Run()

	ws := make([]widget, len(fields))
	for i, f := range fields {
		ws[i] = widget{
			name:     f.Name,
			required: f.Required,
			options:  f.Options,
			value:    f.Value,
			page:     f.Page,
			x:        f.X / pointsPerCm,
			y:        f.Y / pointsPerCm,
			w:        f.W / pointsPerCm,
			h:        f.H / pointsPerCm,
		}
	}
	return canvas, eng, ws
}

// widget is an injected field with its box converted back to centimeters.
type widget struct {
	name     string
	required bool
	options  []string
	value    string
	page     int
	x, y     float64
	w, h     float64
}

func textFields(n int) []config.Field {
	out := make([]config.Field, n)
	for i := range out {
		out[i] = config.Field{Type: "text", Label: "Field", Name: "f" + string(rune('a'+i%26)) + string(rune('a'+i/26))}
	}
	return out
}

func TestSectionBarsDrawnInOrder(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{
			{Title: "First", Fields: textFields(1)},
			{Title: "Second", Fields: textFields(1)},
			{Title: "Third", Fields: textFields(1)},
		},
	}
	canvas, _, _ := run(t, cfg)

	bars := canvas.sectionBars()
	if len(bars) != 3 {
		t.Fatalf("drew %d section bars, want 3", len(bars))
	}

	var titles []string
	for _, o := range canvas.ops {
		switch o.text {
		case "First", "Second", "Third":
			titles = append(titles, o.text)
		}
	}
	if strings.Join(titles, ",") != "First,Second,Third" {
		t.Errorf("section titles out of order: %v", titles)
	}
}

func TestSingleColumnCursorDecreases(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections:    []config.Section{{Title: "S", Columns: 1, Fields: textFields(5)}},
	}
	_, _, ws := run(t, cfg)

	if len(ws) != 5 {
		t.Fatalf("got %d widgets, want 5", len(ws))
	}
	for i := 1; i < len(ws); i++ {
		if ws[i].y >= ws[i-1].y {
			t.Errorf("widget %d at y=%.2f does not sit below widget %d at y=%.2f",
				i, ws[i].y, i-1, ws[i-1].y)
		}
	}
}

func TestTwoColumnPairing(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S", Columns: 2,
			Fields: []config.Field{
				{Type: "text", Label: "Left", Name: "l"},
				{Type: "text", Label: "Right", Name: "r"},
			},
		}},
	}
	_, _, ws := run(t, cfg)

	if len(ws) != 2 {
		t.Fatalf("got %d widgets, want 2", len(ws))
	}
	if !near(ws[0].y, ws[1].y) {
		t.Errorf("pair not aligned: left y=%.3f, right y=%.3f", ws[0].y, ws[1].y)
	}

	usable := 21.0 - 2*Margin
	colW := (usable - ColGap) / 2
	if gotOffset := ws[1].x - ws[0].x; !near(gotOffset, colW+ColGap) {
		t.Errorf("column offset = %.3f, want %.3f", gotOffset, colW+ColGap)
	}
	if !near(ws[0].w, colW) || !near(ws[1].w, colW) {
		t.Errorf("column widths = %.3f, %.3f, want %.3f", ws[0].w, ws[1].w, colW)
	}
}

func TestTwoColumnTallerOfPairAdvances(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S", Columns: 2,
			Fields: []config.Field{
				{Type: "textarea", Label: "Tall", Name: "tall"},
				{Type: "text", Label: "Short", Name: "short"},
				{Type: "text", Label: "Next", Name: "next"},
			},
		}},
	}
	_, _, ws := run(t, cfg)

	if len(ws) != 3 {
		t.Fatalf("got %d widgets, want 3", len(ws))
	}
	// The row after the pair starts below the taller (textarea) field.
	pairBottom := ws[0].y // textarea bottom is the lower of the two
	wantTop := pairBottom - RowGap
	gotTop := ws[2].y + ws[2].h + LabelGap + LabelHeight
	if !near(gotTop, wantTop) {
		t.Errorf("next row top = %.3f, want %.3f (taller-of-pair rule)", gotTop, wantTop)
	}
}

func TestFullWidthFieldTakesOneSlot(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S", Columns: 2,
			Fields: []config.Field{
				{Type: "text", Label: "Wide", Name: "wide", FullWidth: true},
				{Type: "text", Label: "A", Name: "a"},
				{Type: "text", Label: "B", Name: "b"},
			},
		}},
	}
	_, _, ws := run(t, cfg)

	usable := 21.0 - 2*Margin
	if !near(ws[0].w, usable) {
		t.Errorf("full-width widget width = %.3f, want %.3f", ws[0].w, usable)
	}
	if !near(ws[1].y, ws[2].y) {
		t.Errorf("fields after the full-width one should pair up: y=%.3f vs %.3f",
			ws[1].y, ws[2].y)
	}
}

func TestFullWidthFieldInRightSlotStillDrawn(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S", Columns: 2,
			Fields: []config.Field{
				{Type: "text", Label: "A", Name: "a"},
				{Type: "text", Label: "Wide", Name: "wide", FullWidth: true},
			},
		}},
	}
	_, _, ws := run(t, cfg)

	if len(ws) != 2 {
		t.Fatalf("got %d widgets, want 2", len(ws))
	}
	usable := 21.0 - 2*Margin
	if !near(ws[1].w, usable) {
		t.Errorf("full-width widget width = %.3f, want %.3f", ws[1].w, usable)
	}
	if ws[1].y >= ws[0].y {
		t.Errorf("full-width field should move to its own row below the pair")
	}
}

func TestSignatureForcedFullWidth(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S", Columns: 2,
			Fields: []config.Field{
				{Type: "text", Label: "A", Name: "a"},
				{Type: "signature", Label: "Signature"},
				{Type: "text", Label: "B", Name: "b"},
			},
		}},
	}
	canvas, _, _ := run(t, cfg)

	usable := 21.0 - 2*Margin
	found := false
	for _, o := range canvas.ops {
		if o.kind == "roundrect" && near(o.w, usable) && near(o.h, 2.0) {
			found = true
		}
	}
	if !found {
		t.Error("signature box not drawn at full content width")
	}
}

func TestPageBreakBeforeSectionBar(t *testing.T) {
	// Twelve single-column text rows leave less than the section minimum
	// above the footer, so the second bar must open page two.
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{
			{Title: "Long", Columns: 1, Fields: textFields(12)},
			{Title: "Next", Columns: 1, Fields: textFields(1)},
		},
	}
	canvas, _, _ := run(t, cfg)

	if canvas.page != 2 {
		t.Fatalf("rendered %d pages, want 2", canvas.page)
	}
	bars := canvas.sectionBars()
	if len(bars) != 2 {
		t.Fatalf("drew %d section bars, want 2", len(bars))
	}
	if bars[1].page != 2 {
		t.Errorf("second section bar on page %d, want 2", bars[1].page)
	}

	// Continuation pages get the compact header band.
	compact := false
	for _, o := range canvas.ops {
		if o.kind == "rect" && o.page == 2 && near(o.h, ContHeaderHeight) &&
			near(o.y, 29.7-ContHeaderHeight) && near(o.w, 21.0) {
			compact = true
		}
	}
	if !compact {
		t.Error("page 2 is missing the compact header band")
	}
}

func TestRequiredMarkerAfterLabel(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S",
			Fields: []config.Field{
				{Type: "text", Label: "Name", Name: "name", Required: true},
			},
		}},
	}
	canvas, _, _ := run(t, cfg)

	label := canvas.findText("Name")
	star := canvas.findText("*")
	if label == nil || star == nil {
		t.Fatal("label or marker not drawn")
	}
	wantX := label.x + fakeCharWidth*float64(len("Name")) + 0.10
	if !near(star.x, wantX) {
		t.Errorf("marker at x=%.3f, want %.3f (label width + gap)", star.x, wantX)
	}
}

func TestDropdownPlaceholderFallback(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S",
			Fields: []config.Field{
				{Type: "dropdown", Label: "Choice", Name: "choice"},
			},
		}},
	}
	_, _, ws := run(t, cfg)

	if len(ws) != 1 {
		t.Fatalf("got %d widgets, want 1", len(ws))
	}
	if len(ws[0].options) != 1 || ws[0].options[0] != "-- Select --" {
		t.Errorf("options = %v, want the single placeholder", ws[0].options)
	}
	if ws[0].value != "-- Select --" {
		t.Errorf("value = %q, want the placeholder", ws[0].value)
	}
}

func TestDuplicateNamesGetSuffixes(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		Sections: []config.Section{{
			Title: "S",
			Fields: []config.Field{
				{Type: "text", Label: "Email"},
				{Type: "text", Label: "Email"},
				{Type: "text", Label: "Email"},
			},
		}},
	}
	_, _, ws := run(t, cfg)

	got := []string{ws[0].name, ws[1].name, ws[2].name}
	want := []string{"email", "email_2", "email_3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("widget %d named %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMinimalDocumentRoundTrip(t *testing.T) {
	cfg := &config.Document{
		DocumentTitle: "Intake",
		Sections: []config.Section{{
			Title: "Basics", Columns: 1,
			Fields: []config.Field{
				{Type: "text", Label: "Name", Name: "name", Required: true},
			},
		}},
	}
	canvas, _, ws := run(t, cfg)

	if canvas.page != 1 {
		t.Fatalf("rendered %d pages, want 1", canvas.page)
	}
	if len(canvas.sectionBars()) != 1 {
		t.Fatalf("drew %d section bars, want 1", len(canvas.sectionBars()))
	}
	if canvas.findText("Basics") == nil {
		t.Error("section title missing")
	}
	if len(ws) != 1 || ws[0].name != "name" || !ws[0].required {
		t.Errorf("widget = %+v, want one required field named %q", ws, "name")
	}
	if canvas.findText("*") == nil {
		t.Error("required marker missing")
	}

	pageNum := false
	for _, o := range canvas.ops {
		if o.kind == "textright" && o.text == "Page 1" {
			pageNum = true
		}
	}
	if !pageNum {
		t.Error("footer page number missing")
	}
}

func TestManyFieldsPaginate(t *testing.T) {
	cfg := &config.Document{
		CompanyName: "Acme",
		FooterText:  "Confidential",
		Sections:    []config.Section{{Title: "All", Columns: 1, Fields: textFields(30)}},
	}
	canvas, _, ws := run(t, cfg)

	if canvas.page < 2 {
		t.Fatalf("30 rows should not fit on one page, got %d", canvas.page)
	}
	if len(ws) != 30 {
		t.Fatalf("got %d widgets, want 30", len(ws))
	}

	reserve := FooterHeight + Margin
	lastPage := 0
	for i, w := range ws {
		if w.page < lastPage {
			t.Fatalf("widget %d on page %d after page %d", i, w.page, lastPage)
		}
		lastPage = w.page
		if w.y < reserve {
			t.Errorf("widget %d at y=%.2f overlaps the footer reserve %.2f", i, w.y, reserve)
		}
		if !near(w.x, Margin) {
			t.Errorf("widget %d at x=%.2f, want the left margin", i, w.x)
		}
	}

	// Every page carries a footer band.
	footers := 0
	for _, o := range canvas.ops {
		if o.kind == "rect" && near(o.y, 0) && near(o.h, FooterHeight) && near(o.w, 21.0) {
			footers++
		}
	}
	if footers != canvas.page {
		t.Errorf("drew %d footers over %d pages", footers, canvas.page)
	}
}

func TestIntroAdvancesCursor(t *testing.T) {
	base := &config.Document{
		CompanyName: "Acme",
		Sections:    []config.Section{{Title: "S", Fields: textFields(1)}},
	}
	withIntro := &config.Document{
		CompanyName: "Acme",
		Sections:    []config.Section{{Title: "S", Intro: "Fill this in.", Fields: textFields(1)}},
	}

	_, _, plain := run(t, base)
	canvas, _, intro := run(t, withIntro)

	if canvas.findText("Fill this in.") == nil {
		t.Fatal("intro text not drawn")
	}
	shift := plain[0].y - intro[0].y
	if !near(shift, LabelHeight+0.38) {
		t.Errorf("intro shifted the first field by %.3f, want %.3f", shift, LabelHeight+0.38)
	}
}
