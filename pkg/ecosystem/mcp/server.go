// Package mcp exposes a use-case catalog as Model Context Protocol tools:
// one tool per use case plus a listing tool.
package mcp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ormasoftchile/ucrepl/pkg/prompt"
	"github.com/ormasoftchile/ucrepl/pkg/render"
	"github.com/ormasoftchile/ucrepl/pkg/usecase"
)

// ListToolName is the tool that lists the catalog.
const ListToolName = "ucrepl_list"

// ToolPrefix precedes every use case tool name.
const ToolPrefix = "usecase_"

// Named is implemented by use cases that carry a catalog name.
type Named interface {
	Name() string
}

// Options configures the server.
type Options struct {
	Version  string
	GroupBy  string
	Identity usecase.Identity
	Logger   *zap.Logger
}

var toolNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ToolName derives the tool name of the i-th entry.
func ToolName(i int, e usecase.Entry) string {
	name := ""
	if n, ok := e.UseCase.(Named); ok {
		name = n.Name()
	}
	name = strings.Trim(toolNameUnsafe.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = fmt.Sprintf("%d", i+1)
	}
	return ToolPrefix + name
}

// NewServer creates a new MCP server with one tool per entry registered.
func NewServer(entries []usecase.Entry, opts Options) *server.MCPServer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := server.NewMCPServer(
		"ucrepl",
		opts.Version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool(ListToolName,
			mcp.WithDescription("List the use cases of the catalog with their tool names"),
		),
		HandleList(entries, opts.GroupBy),
	)

	for i, e := range entries {
		name := ToolName(i, e)
		s.AddTool(NewUseCaseTool(name, e.UseCase), HandleUseCase(name, e.UseCase, opts.Identity, opts.Logger))
	}
	return s
}

// NewUseCaseTool describes uc as a tool. Parameters are typed like the
// interactive prompts and are all required.
func NewUseCaseTool(name string, uc usecase.UseCase) mcp.Tool {
	doc := uc.Doc()
	toolOpts := []mcp.ToolOption{
		mcp.WithDescription(doc.Description + "\n\n" + render.Text(doc)),
	}
	for _, spec := range prompt.Derive(uc.RequestSchema()) {
		desc := mcp.Description(spec.Label)
		switch spec.Kind {
		case prompt.KindNumber:
			toolOpts = append(toolOpts, mcp.WithNumber(spec.Name, mcp.Required(), desc))
		case prompt.KindConfirm:
			toolOpts = append(toolOpts, mcp.WithBoolean(spec.Name, mcp.Required(), desc))
		default:
			toolOpts = append(toolOpts, mcp.WithString(spec.Name, mcp.Required(), desc))
		}
	}
	return mcp.NewTool(name, toolOpts...)
}
