// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Jera tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/linker"
	"github.com/starford/jera/internal/phrase"
	"github.com/starford/jera/internal/storage"
)

// Server wraps the MCP server with Jera tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *linker.Service
	db    index.PeriodicIndex
	store storage.Provider
}

// New creates a new MCP server with all Jera tools registered.
func New(svc *linker.Service, db index.PeriodicIndex, store storage.Provider) *Server {
	s := &Server{svc: svc, db: db, store: store}

	s.mcp = server.NewMCPServer(
		"Jera",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_phrase",
		mcp.WithDescription("Resolve a natural-language time expression (e.g. '3 days ago', "+
			"'next thursday') to a periodic-note target. See the jera://phrase-grammar "+
			"resource for the supported expressions."),
		mcp.WithString("phrase", mcp.Required(), mcp.Description("The time expression to resolve")),
		mcp.WithString("context", mcp.Description("Granularity of the current document (day/week/month/quarter/year), empty for none")),
		mcp.WithString("anchor", mcp.Description("Reference date as YYYY-MM-DD; defaults to today")),
	), s.resolvePhrase)

	s.mcp.AddTool(mcp.NewTool("detect_note",
		mcp.WithDescription("Classify a document name as a periodic note and decode its date."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Document name without extension (e.g. 2025-06-10)")),
		mcp.WithString("path", mcp.Description("Vault-relative path, for folder-encoded formats")),
	), s.detectNote)

	s.mcp.AddTool(mcp.NewTool("open_periodic",
		mcp.WithDescription("Open the periodic note covering a date, creating it from its "+
			"template when missing. Returns the vault path and content."),
		mcp.WithString("granularity", mcp.Required(), mcp.Description("day, week, month, quarter, or year")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Canonical date as YYYY-MM-DD")),
	), s.openPeriodic)

	s.mcp.AddTool(mcp.NewTool("list_periodic",
		mcp.WithDescription("List indexed periodic notes, newest first."),
		mcp.WithString("granularity", mcp.Description("Optional granularity filter (empty for all)")),
	), s.listPeriodic)

	s.mcp.AddTool(mcp.NewTool("get_phrase_grammar",
		mcp.WithDescription("Returns the grammar of time expressions the resolver understands."),
	), s.getPhraseGrammar)

	// Resource: phrase grammar.
	s.mcp.AddResource(
		mcp.NewResource("jera://phrase-grammar", "Phrase Grammar",
			mcp.WithResourceDescription("Time expressions the resolver understands."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPhraseGrammarResource,
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

func (s *Server) resolvePhrase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("phrase")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var docCtx granularity.Granularity
	if c, err := req.RequireString("context"); err == nil && c != "" {
		docCtx = granularity.Granularity(c)
		if !docCtx.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown context granularity: %s", c)), nil
		}
	}

	var anchor time.Time
	if a, err := req.RequireString("anchor"); err == nil && a != "" {
		anchor, err = time.ParseInLocation(index.DateLayout, a, time.Local)
		if err != nil {
			return mcp.NewToolResultError("anchor must be YYYY-MM-DD"), nil
		}
	}

	target, ok := s.svc.ResolvePhrase(text, docCtx, anchor)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("cannot resolve: %s", text)), nil
	}
	path, err := s.svc.TargetPath(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, readErr := s.store.Read(path)

	out, _ := json.MarshalIndent(map[string]any{
		"granularity": target.Granularity,
		"date":        target.Date.Format(index.DateLayout),
		"path":        path,
		"exists":      readErr == nil,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) detectNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notePath := ""
	if p, err := req.RequireString("path"); err == nil {
		notePath = p
	}

	g, ok := s.svc.Detect(name, notePath)
	if !ok {
		return mcp.NewToolResultText(`{"periodic": false}`), nil
	}
	result := map[string]any{"periodic": true, "granularity": g}
	if d, decoded := s.svc.DecodeDate(name, notePath, g); decoded {
		result["date"] = d.Format(index.DateLayout)
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) openPeriodic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gs, err := req.RequireString("granularity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g := granularity.Granularity(gs)
	if !g.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown granularity: %s", gs)), nil
	}
	ds, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := time.ParseInLocation(index.DateLayout, ds, time.Local)
	if err != nil {
		return mcp.NewToolResultError("date must be YYYY-MM-DD"), nil
	}

	path, created, err := s.svc.Materialize(ctx, phrase.Target{Granularity: g, Date: date})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := fmt.Sprintf("path: %s\ncreated: %v\n\n", path, created)
	return mcp.NewToolResultText(header + string(content)), nil
}

func (s *Server) listPeriodic(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var g granularity.Granularity
	if gs, err := req.RequireString("granularity"); err == nil && gs != "" {
		g = granularity.Granularity(gs)
		if !g.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown granularity: %s", gs)), nil
		}
	}

	notes, _, err := s.db.ListByGranularity(g, 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no periodic notes indexed"), nil
	}

	var lines []string
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", n.Path, n.Granularity, n.Date.Format(index.DateLayout)))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getPhraseGrammar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PhraseGrammar), nil
}

func (s *Server) readPhraseGrammarResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "jera://phrase-grammar",
			MIMEType: "text/markdown",
			Text:     PhraseGrammar,
		},
	}, nil
}
