// Package resources implements MCP resource handlers for the TRIZ catalog.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (triz://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

// Resource URIs.
const (
	ParametersURI = "triz://catalog/parameters"
	PrinciplesURI = "triz://catalog/principles"
	MatrixURI     = "triz://catalog/matrix"
)

// Handler serves the catalog tables.
type Handler struct {
	catalog *catalog.Catalog
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(c *catalog.Catalog) *Handler {
	return &Handler{catalog: c}
}

// ParametersResource returns the MCP resource definition for the parameter table.
func (h *Handler) ParametersResource() mcp.Resource {
	return mcp.NewResource(
		ParametersURI,
		"TRIZ Engineering Parameters",
		mcp.WithResourceDescription("The 39 engineering parameters with Arabic and English names"),
		mcp.WithMIMEType("application/json"),
	)
}

// PrinciplesResource returns the MCP resource definition for the principle table.
func (h *Handler) PrinciplesResource() mcp.Resource {
	return mcp.NewResource(
		PrinciplesURI,
		"TRIZ Inventive Principles",
		mcp.WithResourceDescription("Inventive principles with descriptions and examples"),
		mcp.WithMIMEType("application/json"),
	)
}

// MatrixResource returns the MCP resource definition for the curated matrix.
func (h *Handler) MatrixResource() mcp.Resource {
	return mcp.NewResource(
		MatrixURI,
		"TRIZ Contradiction Matrix",
		mcp.WithResourceDescription("Curated directional (improving, worsening) entries and their principle ids"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleParameters returns the parameter table as JSON.
func (h *Handler) HandleParameters(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.catalog.Parameters())
}

// HandlePrinciples returns the principle table as JSON.
func (h *Handler) HandlePrinciples(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.catalog.Principles())
}

// HandleMatrix returns the curated matrix as JSON, sorted by pair.
func (h *Handler) HandleMatrix(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.catalog.Entries())
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
