// Command brandform generates branded fillable PDF forms.
//
// # Installation
//
//	go install github.com/lvillar/brandform/cmd/brandform@latest
//
// # Commands
//
//   - generate: build a form PDF from a JSON configuration
//   - convert: turn an existing PDF or image template into a fillable PDF
//   - fill: set field values on an existing fillable PDF
//   - serve: run the HTTP API
//   - mcp: run the Model Context Protocol server over stdio
//
// # Environment
//
//   - BRANDFORM_ADDR: listen address for serve (default :8080)
//   - BRANDFORM_PROVIDER: vision provider (openai, anthropic, ollama, mistral)
//   - BRANDFORM_MODEL: vision model name (default per provider)
//   - BRANDFORM_LOGLEVEL: debug, info, warn or error (default info)
//
// plus the provider's own credentials (OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OLLAMA_HOST, MISTRAL_API_KEY).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lvillar/brandform"
	"github.com/lvillar/brandform/acroform"
	"github.com/lvillar/brandform/config"
	"github.com/lvillar/brandform/mcp"
	"github.com/lvillar/brandform/server"
	"github.com/lvillar/brandform/template"
	"github.com/lvillar/brandform/vision"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "brandform: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	viper.SetEnvPrefix("BRANDFORM")
	viper.AutomaticEnv()
	viper.SetDefault("addr", ":8080")
	viper.SetDefault("provider", "")
	viper.SetDefault("model", "")
	viper.SetDefault("loglevel", "info")

	root := &cobra.Command{
		Use:           "brandform",
		Short:         "Branded fillable PDF form generator",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newGenerateCmd(),
		newConvertCmd(),
		newFillCmd(),
		newServeCmd(),
		newMCPCmd(),
	)
	return root
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(viper.GetString("loglevel"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// visionClient builds the configured vision client, or nil when no provider
// is configured.
func visionClient(log *logrus.Logger) *vision.Client {
	provider := viper.GetString("provider")
	if provider == "" {
		return nil
	}
	client, err := vision.NewClient(provider, viper.GetString("model"), log)
	if err != nil {
		log.WithError(err).Warn("vision provider unavailable, AI features disabled")
		return nil
	}
	return client
}

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		company    string
		title      string
		logo       string
		footer     string
		pageSize   string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a fillable form PDF",
		Long: `Generate a branded fillable PDF form.

With --config the form layout comes from a JSON configuration file.
Without it a default intake layout is used, branded with the given
company name, title and logo.

Examples:
  brandform generate --config form.json
  brandform generate --company "Acme Corp" --title "Client Intake" -o intake.pdf
  brandform generate --company "Acme Corp" --logo logo.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			var cfg *config.Document
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				cfg = config.Minimal(logo, company, title, output)
			}
			if output != "" {
				cfg.Output = output
			}
			if footer != "" {
				cfg.FooterText = footer
			}
			if pageSize != "" {
				cfg.PageSize = pageSize
			}

			builder, err := brandform.New(cfg, brandform.WithLogger(log))
			if err != nil {
				return err
			}
			if err := builder.BuildFile(cfg.Output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON form configuration file")
	cmd.Flags().StringVar(&company, "company", "", "company name for the header")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().StringVar(&logo, "logo", "", "logo image for the header and theme")
	cmd.Flags().StringVar(&footer, "footer", "", "footer text")
	cmd.Flags().StringVar(&pageSize, "page-size", "", "page size: a4 or letter")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var (
		title      string
		output     string
		fieldsPath string
		detect     bool
	)

	cmd := &cobra.Command{
		Use:   "convert <template>",
		Short: "Convert a PDF or image template into a fillable PDF",
		Long: `Convert an existing form template into a fillable PDF.

PDF templates keep their original pages as the background; their widget
positions come from a --fields JSON file keyed by 1-based page number:

  {"1": [{"name": "account", "type": "text",
          "x_pct": 10, "y_pct": 20, "w_pct": 40, "h_pct": 3}]}

Image templates become single-page documents. With --detect and a
configured vision provider, field positions on image templates are
detected automatically.

Examples:
  brandform convert legacy-form.pdf --fields boxes.json
  brandform convert scan.png --detect -o scan_fillable.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			path := args[0]

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			if output == "" {
				output = strings.TrimSuffix(path, filepath.Ext(path)) + "_fillable.pdf"
			}

			var detector template.Detector
			if detect {
				if client := visionClient(log); client != nil {
					detector = client
				} else {
					log.Warn("--detect requested but no vision provider configured")
				}
			}

			var boxes template.PageFields
			if fieldsPath != "" {
				raw, err := os.ReadFile(fieldsPath)
				if err != nil {
					return err
				}
				if boxes, err = template.ParsePageFields(raw); err != nil {
					return err
				}
			}

			conv := template.NewConverter(detector, log)
			pdf, count, err := conv.Convert(cmd.Context(), data, title, boxes)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d fields)\n", output, count)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title for the converted document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path")
	cmd.Flags().StringVar(&fieldsPath, "fields", "", "JSON file of input boxes per page (PDF templates)")
	cmd.Flags().BoolVar(&detect, "detect", false, "detect field positions with the vision provider")
	return cmd
}

func newFillCmd() *cobra.Command {
	var (
		sets   []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "fill <form.pdf>",
		Short: "Fill field values on an existing fillable PDF",
		Long: `Fill named form fields of a fillable PDF with values.

Checkbox fields treat "true", "Yes" and "on" as checked; anything else
clears the box.

Examples:
  brandform fill intake.pdf --set first_name=Ana --set terms_agreed=Yes
  brandform fill intake.pdf --set email=ana@example.com -o intake_ana.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			values := make(map[string]string, len(sets))
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return fmt.Errorf("--set %q: want name=value", kv)
				}
				values[name] = value
			}

			filled, err := acroform.Fill(data, values)
			if err != nil {
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(path, filepath.Ext(path)) + "_filled.pdf"
			}
			if err := os.WriteFile(output, filled, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d fields)\n", output, len(values))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field to fill as name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for form generation and template conversion.

Endpoints:
  POST /api/generate
  POST /api/convert-template
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			opts := []server.Option{server.WithLogger(log)}
			if client := visionClient(log); client != nil {
				opts = append(opts, server.WithEnhancer(client), server.WithDetector(client))
			}
			return server.New(opts...).Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", viper.GetString("addr"), "listen address")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			log.SetOutput(os.Stderr)

			var detector template.Detector
			if client := visionClient(log); client != nil {
				detector = client
			}
			return mcp.NewServer(version, detector, log).Run()
		},
	}
}
