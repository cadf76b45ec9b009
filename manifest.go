package wikimcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// ProtocolVersion is the MCP protocol version written to mcp.json.
	ProtocolVersion = "2024-11-05"
	// ServerVersion is the server version written to mcp.json.
	ServerVersion = "1.0.0"

	StatsURI    = "wikipedia://stats"
	ArticlesURI = "wikipedia://articles"

	jsonMIME = "application/json"
)

// Manifest is the mcp.json document.
type Manifest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      mcp.Implementation `json:"serverInfo"`
	Capabilities    Capabilities       `json:"capabilities"`
}

// Capabilities lists what the static server offers.
type Capabilities struct {
	Resources []mcp.Resource `json:"resources"`
	Tools     []mcp.Tool     `json:"tools"`
}

// ServerName is the manifest name for a language and optional filter.
func ServerName(lang string, f TopicFilter) string {
	if f != nil {
		return f.ServerName(lang)
	}
	return fmt.Sprintf("Wikipedia %s StaticMCP", strings.ToUpper(lang))
}

// NewManifest builds the manifest.
func NewManifest(lang string, f TopicFilter) *Manifest {
	return &Manifest{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: mcp.Implementation{
			Name:    ServerName(lang, f),
			Version: ServerVersion,
		},
		Capabilities: Capabilities{
			Resources: []mcp.Resource{
				mcp.NewResource(StatsURI, "Wikipedia Statistics",
					mcp.WithResourceDescription("Statistics about the Wikipedia dump"),
					mcp.WithMIMEType(jsonMIME)),
				mcp.NewResource(ArticlesURI, "Article List",
					mcp.WithResourceDescription("List of all available Wikipedia articles"),
					mcp.WithMIMEType(jsonMIME)),
			},
			Tools: []mcp.Tool{
				tool("get_article", "Get the full content of a specific Wikipedia article",
					map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Article title",
						},
					}, "title"),
				tool("list_articles", "List available Wikipedia articles with pagination",
					map[string]any{
						"page": map[string]any{
							"type":        "integer",
							"description": "Page number (1-based, default: 1)",
							"minimum":     1,
						},
					}),
				tool("list_categories", "List available article categories",
					map[string]any{}),
				tool("categories", "Get articles from a specific category",
					map[string]any{
						"category": map[string]any{
							"type":        "string",
							"description": "Category name",
						},
					}, "category"),
			},
		},
	}
}

// inputSchema is an object schema that always carries "required", even
// when it is empty.
type inputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

func tool(name, desc string, props map[string]any, required ...string) mcp.Tool {
	if required == nil {
		required = []string{}
	}
	b, err := json.Marshal(inputSchema{Type: "object", Properties: props, Required: required})
	if err != nil {
		panic(fmt.Sprintf("input schema for %v: %v", name, err))
	}
	return mcp.NewToolWithRawSchema(name, desc, b)
}
