package brandform

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
)

func sampleConfig() *config.Document {
	return &config.Document{
		CompanyName:   "Acme Corp",
		DocumentTitle: "Client Intake Form",
		FooterText:    "Acme Corp - Confidential",
		Sections: []config.Section{
			{
				Title:   "Contact Information",
				Columns: 2,
				Fields: []config.Field{
					{Type: "text", Label: "Full Name", Name: "full_name", Required: true},
					{Type: "email", Label: "Email", Name: "email", Required: true},
					{Type: "phone", Label: "Phone", Name: "phone"},
					{Type: "date", Label: "Date of Birth", Name: "dob"},
				},
			},
			{
				Title: "Details",
				Fields: []config.Field{
					{Type: "dropdown", Label: "Country", Name: "country",
						Options: []string{"Spain", "France", "Germany"}},
					{Type: "textarea", Label: "Notes", Name: "notes"},
					{Type: "checkbox", Label: "Subscribe to updates", Name: "subscribe"},
					{Type: "signature", Label: "Signature"},
				},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	b, err := New(sampleConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := b.Build(&buf); err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	for _, want := range []string{
		"/AcroForm", "/NeedAppearances true",
		"/T (full_name)", "/T (country)", "/T (subscribe)",
		"/FT /Tx", "/FT /Ch", "/FT /Btn",
	} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestBuildFile(t *testing.T) {
	b, err := New(sampleConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "intake.pdf")
	if err := b.BuildFile(path); err != nil {
		t.Fatalf("BuildFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("file is not a PDF")
	}
}

func TestBuildPageSizeCaseInsensitive(t *testing.T) {
	tests := []struct {
		pageSize string
		mediaBox string
	}{
		{"a4", "595.28 841.89"},
		{"A4", "595.28 841.89"},
		{"letter", "612.00 792.00"},
		{"Letter", "612.00 792.00"},
		{"", "612.00 792.00"},
	}
	for _, tt := range tests {
		cfg := sampleConfig()
		cfg.PageSize = tt.pageSize

		b, err := New(cfg)
		if err != nil {
			t.Fatalf("New(page_size=%q): %v", tt.pageSize, err)
		}
		var buf bytes.Buffer
		if err := b.Build(&buf); err != nil {
			t.Fatalf("Build(page_size=%q): %v", tt.pageSize, err)
		}
		if !bytes.Contains(buf.Bytes(), []byte(tt.mediaBox)) {
			t.Errorf("page_size %q: media box %s missing", tt.pageSize, tt.mediaBox)
		}
	}
}

func TestNewRejectsEmptySections(t *testing.T) {
	cfg := &config.Document{CompanyName: "Acme Corp"}
	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected an error for a configuration without sections")
	}
	if !errors.Is(err, ErrNoSections) && !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWithTheme(t *testing.T) {
	theme := branding.Default()
	theme.Primary = branding.RGB{R: 10, G: 20, B: 30}

	b, err := New(sampleConfig(), WithTheme(theme))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Theme().Primary != theme.Primary {
		t.Errorf("builder theme = %+v, want the supplied one", b.Theme().Primary)
	}
}

func TestMissingLogoFallsBackToDefault(t *testing.T) {
	cfg := sampleConfig()
	cfg.Logo = filepath.Join(t.TempDir(), "absent.png")

	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Theme().Primary != branding.Default().Primary {
		t.Errorf("theme = %+v, want the default palette", b.Theme().Primary)
	}
}
