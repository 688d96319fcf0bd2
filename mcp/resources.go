package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lvillar/brandform/branding"
	"github.com/lvillar/brandform/config"
)

// registerResources exposes the built-in defaults so assistants can inspect
// them without calling a tool.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		"brandform://config/default",
		"Default Form Configuration",
		mcp.WithResourceDescription("The default intake-form configuration as JSON. Edit and pass to generate_form via config_path."),
		mcp.WithMIMEType("application/json"),
	), handleDefaultConfigResource)

	s.mcpServer.AddResource(mcp.NewResource(
		"brandform://theme/default",
		"Default Theme Palette",
		mcp.WithResourceDescription("The default document color palette as hex values."),
		mcp.WithMIMEType("application/json"),
	), handleDefaultThemeResource)
}

func handleDefaultConfigResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw, err := json.MarshalIndent(config.Minimal("", "", "", ""), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(raw),
		},
	}, nil
}

func handleDefaultThemeResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	theme := branding.Default()
	palette := map[string]string{
		"primary":   theme.Primary.Hex(),
		"secondary": theme.Secondary.Hex(),
		"accent":    theme.Accent.Hex(),
		"surface":   theme.Surface.Hex(),
		"border":    theme.Border.Hex(),
	}
	raw, err := json.MarshalIndent(palette, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(raw),
		},
	}, nil
}
