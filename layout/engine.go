// Package layout renders a document configuration onto a Canvas in a single
// top-to-bottom pass and collects the interactive widgets the pass produces.
//
// The engine tracks one cursor, the Y coordinate of the top of the next
// element, measured in centimeters from the bottom of the page. Every draw
// step subtracts its own height from the cursor; when an upcoming element
// would not fit above the footer reserve, the engine closes the page and
// continues under a compact header on the next one.
package layout

import (
	"fmt"
	"os"

	"github.com/lvillar/brandform/acroform"
	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
)

// Design tokens, all in centimeters.
const (
	Margin           = 1.80 // left, right and bottom margin
	HeaderHeight     = 3.20 // full header band, first page
	ContHeaderHeight = 1.70 // compact header band, continuation pages
	FooterHeight     = 0.90 // footer band

	SectionBarHeight = 0.68 // colored section title bar
	SectionGap       = 0.50 // space below the bar before the first row
	BetweenSections  = 0.70 // space between sections

	LabelHeight    = 0.38 // field label line
	LabelGap       = 0.14 // gap between label and field box
	FieldHeight    = 0.70 // single-line field box
	TextareaHeight = 2.20 // default multi-line field box
	CheckboxSize   = 0.44 // checkbox square
	RowGap         = 0.48 // vertical gap between field rows

	ColGap = 0.55 // gap between the two columns
)

const pointsPerCm = 72.0 / 2.54

// Engine performs one layout pass over a document configuration.
type Engine struct {
	cfg    *config.Document
	theme  *branding.Theme
	canvas Canvas

	pageW   float64
	pageH   float64
	usableW float64
	y       float64

	names  map[string]int
	fields []acroform.Field
}

// New prepares an engine for a single Run. The canvas must not have any
// pages yet.
func New(cfg *config.Document, theme *branding.Theme, canvas Canvas) *Engine {
	w, h := canvas.PageSize()
	return &Engine{
		cfg:     cfg,
		theme:   theme,
		canvas:  canvas,
		pageW:   w,
		pageH:   h,
		usableW: w - 2*Margin,
		names:   make(map[string]int),
	}
}

// Run draws the whole document and returns the widgets to inject, in the
// order they were placed.
func (e *Engine) Run() []acroform.Field {
	e.beginPage(true)
	for i := range e.cfg.Sections {
		e.drawSection(&e.cfg.Sections[i])
	}
	e.drawFooter()
	return e.fields
}

// uniqueName reserves a widget name, suffixing repeats so every widget in a
// build stays individually fillable.
func (e *Engine) uniqueName(base string) string {
	e.names[base]++
	if n := e.names[base]; n > 1 {
		return fmt.Sprintf("%s_%d", base, n)
	}
	return base
}

// addWidget converts a cm-space box to PDF points and records the widget on
// the current page.
func (e *Engine) addWidget(f acroform.Field, x, y, w, h float64) {
	f.Page = e.canvas.PageNumber()
	f.X = x * pointsPerCm
	f.Y = y * pointsPerCm
	f.W = w * pointsPerCm
	f.H = h * pointsPerCm
	e.fields = append(e.fields, f)
}

// ── Page management ──

func (e *Engine) beginPage(first bool) {
	e.canvas.AddPage()
	e.drawHeader(first)
	if first {
		e.y = e.pageH - HeaderHeight - Margin*0.65
	} else {
		e.y = e.pageH - ContHeaderHeight - Margin*0.55
	}
}

func (e *Engine) newPage() {
	e.drawFooter()
	e.beginPage(false)
}

// ensureSpace starts a new page when fewer than needed centimeters remain
// above the footer reserve.
func (e *Engine) ensureSpace(needed float64) {
	if e.y-needed < FooterHeight+Margin {
		e.newPage()
	}
}

// ── Header and footer ──

func (e *Engine) drawHeader(first bool) {
	c, t := e.canvas, e.theme
	hh := HeaderHeight
	if !first {
		hh = ContHeaderHeight
	}

	c.SetFillColor(t.Primary)
	c.Rect(0, e.pageH-hh, e.pageW, hh, true, false)

	// Thin accent stripe along the bottom edge of the band
	c.SetFillColor(t.Accent)
	c.Rect(0, e.pageH-hh, e.pageW, 0.20, true, false)

	txt := t.HeaderText()
	c.SetTextColor(txt)

	if !first {
		label := e.cfg.CompanyName
		if e.cfg.DocumentTitle != "" {
			if label != "" {
				label += "  –  "
			}
			label += e.cfg.DocumentTitle
		}
		if label == "" {
			label = "Document"
		}
		c.SetFont(t.FontBold, "B", 10)
		c.Text(Margin, e.pageH-hh+ContHeaderHeight*0.30, label)
		return
	}

	textX := Margin
	if e.cfg.Logo != "" {
		if _, err := os.Stat(e.cfg.Logo); err == nil {
			lw, lh := imageDims(e.cfg.Logo, hh-0.85, 5.0)
			ly := e.pageH - hh + (hh-lh)/2
			c.Image(e.cfg.Logo, Margin, ly, lw, lh)
			textX = Margin + lw + 0.55
		}
	}

	if e.cfg.CompanyName != "" {
		c.SetFont(t.FontBold, "B", 15)
		c.Text(textX, e.pageH-hh+1.95, e.cfg.CompanyName)
	}
	if e.cfg.DocumentTitle != "" {
		c.SetFont(t.Font, "", 11)
		c.Text(textX, e.pageH-hh+1.15, e.cfg.DocumentTitle)
	}
	if e.cfg.DocumentSubtitle != "" {
		c.SetAlpha(0.82)
		c.SetFont(t.FontItalic, "I", 8.5)
		c.Text(textX, e.pageH-hh+0.46, e.cfg.DocumentSubtitle)
		c.SetAlpha(1.0)
	}
}

func (e *Engine) drawFooter() {
	c, t := e.canvas, e.theme

	c.SetFillColor(t.Primary)
	c.Rect(0, 0, e.pageW, FooterHeight, true, false)

	c.SetTextColor(t.HeaderText())
	c.SetFont(t.Font, "", 7.5)
	if e.cfg.FooterText != "" {
		c.Text(Margin, FooterHeight*0.30, e.cfg.FooterText)
	}
	c.TextRight(e.pageW-Margin, FooterHeight*0.30,
		fmt.Sprintf("Page %d", c.PageNumber()))
}

// ── Sections ──

func (e *Engine) drawSection(s *config.Section) {
	// The bar never sits alone at the bottom of a page: commit only when the
	// bar plus one minimal field row fit.
	minNeeded := SectionBarHeight + SectionGap + LabelHeight + FieldHeight + RowGap
	e.ensureSpace(minNeeded)

	c, t := e.canvas, e.theme

	barY := e.y - SectionBarHeight
	c.SetFillColor(t.Secondary)
	c.Rect(Margin, barY, e.usableW, SectionBarHeight, true, false)

	c.SetFillColor(t.Accent)
	c.Rect(Margin, barY, 0.30, SectionBarHeight, true, false)

	title := s.Title
	if title == "" {
		title = "Section"
	}
	c.SetTextColor(t.SectionText())
	c.SetFont(t.FontBold, "B", 9.5)
	c.Text(Margin+0.55, barY+0.17, title)

	e.y = barY - SectionGap

	if s.Intro != "" {
		e.drawIntro(s.Intro)
	}

	if s.ColumnCount() == 2 {
		e.layoutTwoCol(s.Fields)
	} else {
		e.layoutOneCol(s.Fields)
	}

	e.y -= BetweenSections
}

func (e *Engine) drawIntro(text string) {
	c, t := e.canvas, e.theme
	c.SetTextColor(t.TextDark)
	c.SetFont(t.FontItalic, "I", 9)
	c.Text(Margin, e.y-LabelHeight, text)
	e.y -= LabelHeight + 0.38
}

// ── Row layout ──

func (e *Engine) layoutOneCol(fields []config.Field) {
	for i := range fields {
		f := &fields[i]
		e.ensureSpace(rowHeight(f) + RowGap)
		e.drawField(f, Margin, e.usableW)
		e.y -= RowGap
	}
}

func (e *Engine) layoutTwoCol(fields []config.Field) {
	colW := (e.usableW - ColGap) / 2

	i := 0
	for i < len(fields) {
		left := &fields[i]

		// A full-width field breaks the paired flow and takes the whole row.
		if isFullWidth(left) {
			e.ensureSpace(rowHeight(left) + RowGap)
			e.drawField(left, Margin, e.usableW)
			e.y -= RowGap
			i++
			continue
		}

		// A full-width neighbor keeps its own slot on the next iteration.
		var right *config.Field
		if i+1 < len(fields) && !isFullWidth(&fields[i+1]) {
			right = &fields[i+1]
		}

		rowH := rowHeight(left)
		if right != nil {
			if rh := rowHeight(right); rh > rowH {
				rowH = rh
			}
		}
		e.ensureSpace(rowH + RowGap)

		ySave := e.y
		e.drawField(left, Margin, colW)
		yAfterLeft := e.y

		e.y = ySave
		yAfterRight := ySave
		if right != nil {
			e.drawField(right, Margin+colW+ColGap, colW)
			yAfterRight = e.y
			i += 2
		} else {
			i++
		}

		// Advance past the taller of the pair.
		if yAfterLeft < yAfterRight {
			e.y = yAfterLeft - RowGap
		} else {
			e.y = yAfterRight - RowGap
		}
	}
}

// isFullWidth reports whether a field takes the whole content width even in
// a two-column section. Signature fields always do.
func isFullWidth(f *config.Field) bool {
	return f.FullWidth || f.Kind() == config.TypeSignature
}

// rowHeight returns the vertical space a field consumes, label included.
func rowHeight(f *config.Field) float64 {
	switch f.Kind() {
	case config.TypeTextarea:
		h := f.Height
		if h <= 0 {
			h = TextareaHeight
		}
		return LabelHeight + LabelGap + h
	case config.TypeCheckbox:
		return CheckboxSize
	case config.TypeSignature:
		h := f.Height
		if h <= 0 {
			h = 2.0
		}
		return LabelHeight + LabelGap + h
	default:
		return LabelHeight + LabelGap + FieldHeight
	}
}
