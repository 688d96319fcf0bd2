// Package mcp exposes form generation and template conversion as Model
// Context Protocol tools for AI assistants.
//
// The server communicates over stdio. Add to your MCP client configuration:
//
//	{
//	  "mcpServers": {
//	    "brandform": {
//	      "command": "brandform",
//	      "args": ["mcp"]
//	    }
//	  }
//	}
package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/lvillar/brandform/template"
)

const serverName = "brandform"

// Server wraps the MCP protocol server and the form-building collaborators
// its tools call into.
type Server struct {
	version   string
	log       *logrus.Logger
	converter *template.Converter
	mcpServer *server.MCPServer
}

// NewServer builds the protocol server and registers all tools and
// resources. The detector may be nil, in which case convert_template places
// no detected widgets on image templates.
func NewServer(version string, detector template.Detector, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		version:   version,
		log:       log,
		converter: template.NewConverter(detector, log),
		mcpServer: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

func (s *Server) registerTools() {
	generateFormTool := mcp.NewTool(
		"generate_form",
		mcp.WithDescription("Generate a branded fillable PDF form from a JSON configuration file, or from a company name and document title using the default intake layout"),
		mcp.WithString("config_path",
			mcp.Description("Path to a JSON form configuration file"),
		),
		mcp.WithString("company_name",
			mcp.Description("Company name for the header when no config file is given"),
		),
		mcp.WithString("document_title",
			mcp.Description("Document title when no config file is given"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the PDF (overrides the config's output setting)"),
		),
	)
	s.mcpServer.AddTool(generateFormTool, s.handleGenerateForm)

	defaultConfigTool := mcp.NewTool(
		"default_config",
		mcp.WithDescription("Return the default intake-form configuration as JSON, ready to edit and feed back into generate_form"),
		mcp.WithString("company_name",
			mcp.Description("Company name for the header"),
		),
		mcp.WithString("document_title",
			mcp.Description("Document title"),
		),
		mcp.WithString("logo_path",
			mcp.Description("Path to a logo image"),
		),
	)
	s.mcpServer.AddTool(defaultConfigTool, s.handleDefaultConfig)

	themeFromLogoTool := mcp.NewTool(
		"theme_from_logo",
		mcp.WithDescription("Extract a document color theme from a logo image and report the palette as hex colors"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the logo image (PNG, JPEG or GIF)"),
		),
	)
	s.mcpServer.AddTool(themeFromLogoTool, s.handleThemeFromLogo)

	convertTemplateTool := mcp.NewTool(
		"convert_template",
		mcp.WithDescription("Convert an existing PDF or image form template into a fillable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the template file"),
		),
		mcp.WithString("document_title",
			mcp.Description("Title for the converted document"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the fillable PDF (defaults to <template>_fillable.pdf)"),
		),
		mcp.WithString("fields_path",
			mcp.Description("JSON file of input boxes per page for PDF templates, keyed by 1-based page number: {\"1\": [{\"name\": \"account\", \"type\": \"text\", \"x_pct\": 10, \"y_pct\": 20, \"w_pct\": 40, \"h_pct\": 3}]}"),
		),
	)
	s.mcpServer.AddTool(convertTemplateTool, s.handleConvertTemplate)

	fillFormTool := mcp.NewTool(
		"fill_form",
		mcp.WithDescription("Fill named form fields of an existing fillable PDF with values"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the fillable PDF"),
		),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description("JSON object of field names to values, e.g. {\"first_name\": \"Ana\", \"terms_agreed\": \"yes\"}"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the filled PDF (defaults to <form>_filled.pdf)"),
		),
	)
	s.mcpServer.AddTool(fillFormTool, s.handleFillForm)
}

// Run serves MCP over stdio until the client disconnects.
func (s *Server) Run() error {
	s.log.WithField("version", s.version).Info("mcp server starting on stdio")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
