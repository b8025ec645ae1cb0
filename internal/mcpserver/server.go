// Package mcpserver exposes the CV pipeline and the version store as MCP
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cv-creator/internal/domain"
	"cv-creator/internal/model"
	"cv-creator/internal/usecase"
	"cv-creator/internal/versions"
)

const schemaURI = "cv://profile-schema"

// Server wraps the MCP server with the CV tools.
type Server struct {
	mcp      *server.MCPServer
	proc     *usecase.Processor
	store    *versions.Store
	defaults domain.SessionContext
	outDir   string
}

// New registers every tool. Exports are written below outDir.
func New(proc *usecase.Processor, store *versions.Store, defaults domain.SessionContext, outDir string) *Server {
	s := &Server{proc: proc, store: store, defaults: defaults, outDir: outDir}

	s.mcp = server.NewMCPServer(
		"cv-creator",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	profileArg := mcp.WithString("profile", mcp.Required(),
		mcp.Description("CV as JSON, in the format described by the "+schemaURI+" resource"))
	presentation := []mcp.ToolOption{
		mcp.WithString("template", mcp.Description("classic, modern or minimal")),
		mcp.WithString("color", mcp.Description("blue, green, purple, red, orange or teal")),
		mcp.WithString("locale", mcp.Description("Output language, e.g. en-US or ru-RU")),
	}

	s.mcp.AddTool(mcp.NewTool("render_markdown", append([]mcp.ToolOption{
		mcp.WithDescription("Render a CV as Markdown. Needs first name, last name, email and phone."),
		profileArg,
	}, presentation...)...), s.renderMarkdown)

	s.mcp.AddTool(mcp.NewTool("progress",
		mcp.WithDescription("Report how complete a CV is and which parts are missing."),
		profileArg,
	), s.progress)

	s.mcp.AddTool(mcp.NewTool("export", append([]mcp.ToolOption{
		mcp.WithDescription("Export a CV to a file and return its path."),
		profileArg,
		mcp.WithString("format", mcp.Required(), mcp.Description("pdf, markdown, html or json")),
	}, presentation...)...), s.export)

	s.mcp.AddTool(mcp.NewTool("list_versions",
		mcp.WithDescription("List saved CV versions, oldest first. The autosave slot is not listed."),
	), s.listVersions)

	s.mcp.AddTool(mcp.NewTool("save_version", append([]mcp.ToolOption{
		mcp.WithDescription("Save a CV under a version name, replacing a version of the same name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Version name")),
		profileArg,
	}, presentation[:2]...)...), s.saveVersion)

	s.mcp.AddTool(mcp.NewTool("load_version",
		mcp.WithDescription("Return a saved version as JSON with its template and color."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Version name, or \"current\" for the autosave slot")),
	), s.loadVersion)

	s.mcp.AddTool(mcp.NewTool("delete_version",
		mcp.WithDescription("Delete a saved version. The autosave slot cannot be deleted."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Version name")),
	), s.deleteVersion)

	s.mcp.AddResource(
		mcp.NewResource(schemaURI, "CV JSON schema",
			mcp.WithResourceDescription("JSON schema of the CV import and export format."),
			mcp.WithMIMEType("application/schema+json"),
		),
		s.readSchema,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) profile(req mcp.CallToolRequest) (model.Profile, error) {
	raw, err := req.RequireString("profile")
	if err != nil {
		return model.Profile{}, err
	}
	return s.proc.Import([]byte(raw))
}

// session builds the presentation context from optional arguments.
func (s *Server) session(req mcp.CallToolRequest) (domain.SessionContext, error) {
	sc := s.defaults
	if v := req.GetString("template", ""); v != "" {
		t, err := domain.ParseTemplate(v)
		if err != nil {
			return sc, err
		}
		sc.Template = t
	}
	if v := req.GetString("color", ""); v != "" {
		c, err := domain.ParseColor(v)
		if err != nil {
			return sc, err
		}
		sc.Color = c
	}
	if v := req.GetString("locale", ""); v != "" {
		sc.Locale = v
	}
	return sc, nil
}

func (s *Server) renderMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prof, err := s.profile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc, err := s.session(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.proc.Export(ctx, prof, sc, s.proc.Labels(ctx, sc.Locale), usecase.FormatMarkdown)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(a.Data)), nil
}

func (s *Server) progress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prof, err := s.profile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(usecase.ComputeProgress(prof), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) export(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prof, err := s.profile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc, err := s.session(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := usecase.ParseFormat(req.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.proc.Export(ctx, prof, sc, s.proc.Labels(ctx, sc.Locale), format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path := filepath.Join(s.outDir, a.Name)
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("exported: %s", path)), nil
}

func (s *Server) listVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no saved versions"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) saveVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prof, err := s.profile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc, err := s.session(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.store.Save(ctx, name, prof, sc.Template, sc.Color)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s at %s", strings.TrimSpace(name), snap.SavedAt.Format(time.RFC3339))), nil
}

func (s *Server) loadVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(snap, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Delete(ctx, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", strings.TrimSpace(name))), nil
}

func (s *Server) readSchema(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "application/schema+json",
			Text:     string(model.Schema()),
		},
	}, nil
}
