package layout

import (
	"github.com/lvillar/brandform/acroform"
	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
)

var (
	requiredRed = branding.RGB{R: 217, G: 26, B: 26}
	hintGray    = branding.RGB{R: 140, G: 140, B: 140}
)

func (e *Engine) drawField(f *config.Field, x, w float64) {
	switch f.Kind() {
	case config.TypeDate:
		e.fieldDate(f, x, w)
	case config.TypeTextarea:
		e.fieldTextarea(f, x, w)
	case config.TypeCheckbox:
		e.fieldCheckbox(f, x, w)
	case config.TypeDropdown:
		e.fieldDropdown(f, x, w)
	case config.TypeSignature:
		e.fieldSignature(f, x, w)
	default:
		e.fieldText(f, x, w)
	}
}

// drawLabel paints the field label at the top of the row. Required fields
// get a red asterisk right after the measured label width.
func (e *Engine) drawLabel(text string, x, yTop float64, required bool) {
	c, t := e.canvas, e.theme
	c.SetTextColor(t.TextDark)
	c.SetFont(t.FontBold, "B", 8.5)
	c.Text(x, yTop-LabelHeight+0.04, text)
	if required {
		labelW := c.StringWidth(text)
		c.SetTextColor(requiredRed)
		c.SetFont(t.FontBold, "B", 9.5)
		c.Text(x+labelW+0.10, yTop-LabelHeight+0.04, "*")
	}
}

// fieldBackground paints the rounded box a widget sits on.
func (e *Engine) fieldBackground(x, y, w, h float64) {
	c, t := e.canvas, e.theme
	c.SetFillColor(t.Surface)
	c.SetDrawColor(t.Border)
	c.SetLineWidth(0.014)
	c.RoundRect(x, y, w, h, 0.07, true, true)
}

func (e *Engine) tooltip(f *config.Field) string {
	if f.Tooltip != "" {
		return f.Tooltip
	}
	return f.DisplayLabel()
}

func (e *Engine) fieldText(f *config.Field, x, w float64) {
	yTop := e.y
	e.drawLabel(f.DisplayLabel(), x, yTop, f.Required)

	fy := yTop - LabelHeight - LabelGap - FieldHeight
	e.fieldBackground(x, fy, w, FieldHeight)
	e.addWidget(acroform.Field{
		Name:     e.uniqueName(f.SafeName()),
		Type:     acroform.TypeText,
		Value:    f.Default,
		Tooltip:  e.tooltip(f),
		FontSize: 9,
		Required: f.Required,
	}, x, fy, w, FieldHeight)
	e.y = fy
}

// fieldDate is a text field with a subtle format hint under the label.
func (e *Engine) fieldDate(f *config.Field, x, w float64) {
	e.fieldText(f, x, w)

	hint := f.Placeholder
	if hint == "" {
		hint = "DD / MM / YYYY"
	}
	c := e.canvas
	c.SetTextColor(hintGray)
	c.SetFont(e.theme.FontItalic, "I", 7.5)
	c.Text(x+0.22, e.y+0.18, hint)
}

func (e *Engine) fieldTextarea(f *config.Field, x, w float64) {
	h := f.Height
	if h <= 0 {
		h = TextareaHeight
	}

	yTop := e.y
	e.drawLabel(f.DisplayLabel(), x, yTop, f.Required)

	fy := yTop - LabelHeight - LabelGap - h
	e.fieldBackground(x, fy, w, h)
	e.addWidget(acroform.Field{
		Name:     e.uniqueName(f.SafeName()),
		Type:     acroform.TypeText,
		Value:    f.Default,
		Tooltip:  e.tooltip(f),
		FontSize: 9,
		Multi:    true,
		Required: f.Required,
	}, x, fy, w, h)
	e.y = fy
}

func (e *Engine) fieldCheckbox(f *config.Field, x, w float64) {
	c, t := e.canvas, e.theme

	cy := e.y - CheckboxSize
	c.SetFillColor(t.Surface)
	c.SetDrawColor(t.Accent)
	c.SetLineWidth(0.018)
	c.Rect(x, cy, CheckboxSize, CheckboxSize, true, true)

	e.addWidget(acroform.Field{
		Name:     e.uniqueName(f.SafeName()),
		Type:     acroform.TypeCheckbox,
		Value:    f.Default,
		Tooltip:  e.tooltip(f),
		Required: f.Required,
	}, x, cy, CheckboxSize, CheckboxSize)

	c.SetTextColor(t.TextDark)
	c.SetFont(t.Font, "", 9)
	c.Text(x+CheckboxSize+0.30, cy+CheckboxSize*0.18, f.DisplayLabel())
	e.y = cy
}

func (e *Engine) fieldDropdown(f *config.Field, x, w float64) {
	options := f.Options
	if len(options) == 0 {
		options = []string{"-- Select --"}
	}
	value := f.Default
	if value == "" {
		value = options[0]
	}

	yTop := e.y
	e.drawLabel(f.DisplayLabel(), x, yTop, f.Required)

	fy := yTop - LabelHeight - LabelGap - FieldHeight
	e.fieldBackground(x, fy, w, FieldHeight)
	e.addWidget(acroform.Field{
		Name:     e.uniqueName(f.SafeName()),
		Type:     acroform.TypeDropdown,
		Options:  options,
		Value:    value,
		Tooltip:  e.tooltip(f),
		FontSize: 9,
		Required: f.Required,
	}, x, fy, w, FieldHeight)
	e.y = fy
}

// fieldSignature draws a styled signing area: rounded box, cross mark,
// baseline and hint. It is a visual target, not an interactive widget.
func (e *Engine) fieldSignature(f *config.Field, x, w float64) {
	c, t := e.canvas, e.theme

	label := f.Label
	if label == "" {
		label = "Signature"
	}
	h := f.Height
	if h <= 0 {
		h = 2.0
	}

	yTop := e.y
	e.drawLabel(label, x, yTop, f.Required)

	fy := yTop - LabelHeight - LabelGap - h

	c.SetFillColor(t.Background)
	c.SetDrawColor(t.Accent)
	c.SetLineWidth(0.026)
	c.RoundRect(x, fy, w, h, 0.11, true, true)

	c.SetTextColor(t.TextDark)
	c.SetFont(t.FontBold, "B", 14)
	c.Text(x+0.35, fy+0.38, "×")

	c.SetDrawColor(t.Border)
	c.SetLineWidth(0.014)
	c.Line(x+1.10, fy+0.68, x+w-0.50, fy+0.68)

	c.SetTextColor(hintGray)
	c.SetFont(t.FontItalic, "I", 8)
	c.Text(x+1.20, fy+0.75, "Sign here")

	e.y = fy
}
