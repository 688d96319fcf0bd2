package brandform

import (
	"github.com/sirupsen/logrus"

	"github.com/lvillar/brandform/branding"
)

// Option is a functional option for configuring a Builder via New.
type Option func(*builderConfig)

type builderConfig struct {
	theme  *branding.Theme
	logger *logrus.Logger
	title  string
}

// WithTheme sets the visual identity explicitly, skipping logo color
// extraction.
func WithTheme(t *branding.Theme) Option {
	return func(c *builderConfig) {
		c.theme = t
	}
}

// WithLogger sets the logger used for build progress and warnings.
func WithLogger(l *logrus.Logger) Option {
	return func(c *builderConfig) {
		c.logger = l
	}
}

// WithMetadataTitle overrides the PDF metadata title. The header title from
// the configuration is unaffected.
func WithMetadataTitle(title string) Option {
	return func(c *builderConfig) {
		c.title = title
	}
}
