// Package mcpserver exposes the agent tools to MCP clients over streamable
// http, with the same contracts the agent sees.
package mcpserver

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"github.com/baalimago/webagent/internal/tools"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const EndpointPath = "/mcp"

// New creates an MCP server offering ts.
func New(version string, ts ...pub_models.LLMTool) *server.MCPServer {
	s := server.NewMCPServer(
		"webagent",
		version,
		server.WithToolCapabilities(false),
	)
	reg := tools.NewRegistry(ts...)
	for _, t := range reg.Tools() {
		spec := t.Specification()
		s.AddTool(toMCPTool(spec), handlerFor(reg, spec.Name))
	}
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.Okf("mcp server initialized with tools: %v\n", reg.Names())
	}
	return s
}

// Handler serves s over streamable http at EndpointPath.
func Handler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(EndpointPath))
}

func toMCPTool(spec pub_models.Specification) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	if spec.Inputs == nil {
		return mcp.NewTool(spec.Name, opts...)
	}
	required := make(map[string]bool, len(spec.Inputs.Required))
	for _, r := range spec.Inputs.Required {
		required[r] = true
	}
	for name, p := range spec.Inputs.Properties {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if required[name] {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(name, popts...))
		default:
			if p.Enum != nil {
				popts = append(popts, mcp.Enum(*p.Enum...))
			}
			opts = append(opts, mcp.WithString(name, popts...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

func handlerFor(reg *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := reg.Invoke(ctx, pub_models.Call{
			Name:   name,
			Inputs: pub_models.Input(req.GetArguments()),
		})
		if strings.HasPrefix(out, "ERROR:") {
			return mcp.NewToolResultError(out), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
