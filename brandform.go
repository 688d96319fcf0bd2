// Package brandform builds branded, fillable PDF forms from a JSON
// configuration and a visual theme derived from a company logo.
//
// The pipeline has three stages: the layout engine paints the static
// document onto a gofpdf canvas and records where every interactive widget
// belongs, the canvas is serialized, and the widget annotations are injected
// into the finished bytes.
//
// Example:
//
//	cfg, err := config.Load("intake.json")
//	if err != nil { ... }
//	b, err := brandform.New(cfg)
//	if err != nil { ... }
//	err = b.BuildFile(cfg.Output)
package brandform

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/lvillar/brandform/acroform"
	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
	"github.com/lvillar/brandform/layout"
)

// Builder renders one configuration into a fillable PDF. A Builder is safe
// to reuse for repeated builds of the same configuration.
type Builder struct {
	cfg   *config.Document
	theme *branding.Theme
	log   *logrus.Logger
	title string
}

// New validates cfg and prepares a Builder. When no theme option is given,
// the theme is extracted from the configured logo; extraction failures fall
// back to the default palette with a warning rather than failing the build.
func New(cfg *config.Document, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(cfg.Sections) == 0 {
		return nil, ErrNoSections
	}

	bc := &builderConfig{}
	for _, opt := range opts {
		opt(bc)
	}
	if bc.logger == nil {
		bc.logger = logrus.StandardLogger()
	}

	theme := bc.theme
	if theme == nil {
		theme = resolveTheme(cfg, bc.logger)
	}

	return &Builder{
		cfg:   cfg,
		theme: theme,
		log:   bc.logger,
		title: bc.title,
	}, nil
}

// Theme returns the visual identity the builder will render with.
func (b *Builder) Theme() *branding.Theme {
	return b.theme
}

// Build renders the document and writes the finished PDF to w.
func (b *Builder) Build(w io.Writer) error {
	out, err := b.render()
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return newBuildError("write", err)
	}
	return nil
}

// BuildFile renders the document to path, creating parent directories as
// needed.
func (b *Builder) BuildFile(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return newBuildError("write", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return newBuildError("write", err)
	}
	defer f.Close()
	return b.Build(f)
}

func (b *Builder) render() ([]byte, error) {
	size := "Letter"
	if strings.EqualFold(b.cfg.PageSize, "a4") {
		size = "A4"
	}

	pdf := gofpdf.New("P", "cm", size, "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	title := b.title
	if title == "" {
		title = b.cfg.DocumentTitle
	}
	if title != "" {
		pdf.SetTitle(title, true)
	}
	if b.cfg.CompanyName != "" {
		pdf.SetAuthor(b.cfg.CompanyName, true)
	}

	eng := layout.New(b.cfg, b.theme, layout.NewPDFCanvas(pdf))
	fields := eng.Run()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, newBuildError("render", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyDocument
	}

	b.log.WithFields(logrus.Fields{
		"pages":  pdf.PageCount(),
		"fields": len(fields),
	}).Debug("document rendered")

	out, err := acroform.Inject(buf.Bytes(), fields)
	if err != nil {
		return nil, newBuildError("inject", err)
	}
	return out, nil
}

// resolveTheme extracts a theme from the configured logo, falling back to
// the default palette.
func resolveTheme(cfg *config.Document, log *logrus.Logger) *branding.Theme {
	if cfg.Logo == "" {
		return branding.Default()
	}
	theme, err := branding.FromLogo(cfg.Logo)
	if err != nil {
		log.WithError(err).WithField("logo", cfg.Logo).
			Warn("logo color extraction failed, using default theme")
		return branding.Default()
	}
	return theme
}
