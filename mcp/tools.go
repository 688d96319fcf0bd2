package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lvillar/brandform"
	"github.com/lvillar/brandform/acroform"
	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
	"github.com/lvillar/brandform/template"
)

func (s *Server) handleGenerateForm(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var cfg *config.Document
	if path, ok := args["config_path"].(string); ok && path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg = loaded
	} else {
		company, _ := args["company_name"].(string)
		title, _ := args["document_title"].(string)
		cfg = config.Minimal("", company, title, "")
	}
	if out, ok := args["output_path"].(string); ok && out != "" {
		cfg.Output = out
	}

	builder, err := brandform.New(cfg, brandform.WithLogger(s.log))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := builder.BuildFile(cfg.Output); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fields := 0
	for _, sec := range cfg.Sections {
		fields += len(sec.Fields)
	}
	text := fmt.Sprintf("Generated fillable form: %s\n", cfg.Output)
	text += fmt.Sprintf("Title: %s\n", cfg.DocumentTitle)
	text += fmt.Sprintf("Sections: %d\n", len(cfg.Sections))
	text += fmt.Sprintf("Fields: %d\n", fields)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleDefaultConfig(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	company, _ := args["company_name"].(string)
	title, _ := args["document_title"].(string)
	logo, _ := args["logo_path"].(string)

	cfg := config.Minimal(logo, company, title, "")
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleThemeFromLogo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	theme, err := branding.FromLogo(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Theme extracted from %s\n", path)
	text += fmt.Sprintf("Primary:   %s\n", theme.Primary.Hex())
	text += fmt.Sprintf("Secondary: %s\n", theme.Secondary.Hex())
	text += fmt.Sprintf("Accent:    %s\n", theme.Accent.Hex())
	text += fmt.Sprintf("Surface:   %s\n", theme.Surface.Hex())
	text += fmt.Sprintf("Border:    %s\n", theme.Border.Hex())
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleConvertTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title, _ := args["document_title"].(string)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	out, _ := args["output_path"].(string)
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_fillable.pdf"
	}

	var boxes template.PageFields
	if fieldsPath, ok := args["fields_path"].(string); ok && fieldsPath != "" {
		raw, err := os.ReadFile(fieldsPath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		boxes, err = template.ParsePageFields(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	pdf, count, err := s.converter.Convert(ctx, data, title, boxes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Converted %s to fillable PDF: %s\n", path, out)
	text += fmt.Sprintf("Form fields placed: %d\n", count)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleFillForm(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()

	values := map[string]string{}
	switch v := args["values"].(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &values); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("values must be a JSON object of field names to strings: %v", err)), nil
		}
	case map[string]interface{}:
		for name, val := range v {
			values[name] = fmt.Sprint(val)
		}
	default:
		return mcp.NewToolResultError("values is required"), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := args["output_path"].(string)
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_filled.pdf"
	}

	filled, err := acroform.Fill(data, values)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.WriteFile(out, filled, 0o644); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Filled %d fields of %s: %s\n", len(values), path, out)), nil
}
