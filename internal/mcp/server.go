package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/store"
)

// Analyzer produces a review for one file.
type Analyzer interface {
	Analyze(ctx context.Context, filename, content string) models.ReviewReport
}

// Server exposes code reviews as MCP tools.
type Server struct {
	store    store.Store
	analyzer Analyzer
	version  string
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, a Analyzer, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{store: s, analyzer: a, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("cra", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.reviewCodeTool())
	srv.AddTool(s.listReviewsTool())
	srv.AddTool(s.getReviewTool())
	srv.AddTool(s.deleteReviewTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// reviewOut is the tool-facing shape of a review, with suggestions as a list.
type reviewOut struct {
	ID          string              `json:"id,omitempty"`
	Filename    string              `json:"filename"`
	Report      string              `json:"report"`
	Scores      models.ReviewScores `json:"scores"`
	Suggestions []string            `json:"suggestions"`
	CreatedAt   string              `json:"created_at,omitempty"`
}

func toOut(r *models.Review) reviewOut {
	return reviewOut{
		ID:       r.ID,
		Filename: r.Filename,
		Report:   r.ReviewReport,
		Scores: models.ReviewScores{
			Readability: r.Readability,
			Modularity:  r.Modularity,
			BugRisk:     r.BugRisk,
			Overall:     r.Overall,
		},
		Suggestions: r.SuggestionList(),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// cra_review_code
func (s *Server) reviewCodeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_review_code",
		mcp.WithDescription("Review a source file for readability, modularity and bug risk. Returns a JSON report with four 0-10 scores and improvement suggestions."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name, used to infer the language (e.g. main.go)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full source text of the file")),
		mcp.WithBoolean("save", mcp.Description("Persist the review to history (default true)")),
	)
	return tool, s.handleReviewCode
}

func (s *Server) handleReviewCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil || filename == "" {
		return mcp.NewToolResultError("missing required parameter: filename"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	report := s.analyzer.Analyze(ctx, filename, content)
	rec := models.NewReview(filename, content, report)

	if request.GetBool("save", true) {
		if err := s.store.SaveReview(ctx, rec); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to save review: %v", err)), nil
		}
		return jsonResult(toOut(rec))
	}

	return jsonResult(reviewOut{
		Filename:    filename,
		Report:      report.Report,
		Scores:      report.Scores,
		Suggestions: report.Suggestions,
	})
}

// cra_list_reviews
func (s *Server) listReviewsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_list_reviews",
		mcp.WithDescription("List saved code reviews, oldest first. Returns id, filename, overall score and creation time for each."),
		mcp.WithNumber("skip", mcp.Description("Number of reviews to skip (default 0)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of reviews to return (default 100)")),
	)
	return tool, s.handleListReviews
}

func (s *Server) handleListReviews(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skip := request.GetInt("skip", 0)
	limit := request.GetInt("limit", store.DefaultListLimit)
	if skip < 0 || limit < 0 {
		return mcp.NewToolResultError("skip and limit must be non-negative"), nil
	}

	reviews, err := s.store.ListReviews(ctx, skip, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reviews: %v", err)), nil
	}

	type summary struct {
		ID        string  `json:"id"`
		Filename  string  `json:"filename"`
		Overall   float64 `json:"overall_score"`
		CreatedAt string  `json:"created_at"`
	}
	out := make([]summary, len(reviews))
	for i, r := range reviews {
		out[i] = summary{
			ID:        r.ID,
			Filename:  r.Filename,
			Overall:   r.Overall,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}
	return jsonResult(out)
}

// cra_get_review
func (s *Server) getReviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_get_review",
		mcp.WithDescription("Get a saved code review by ID, including the full report and suggestions."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Review ID")),
	)
	return tool, s.handleGetReview
}

func (s *Server) handleGetReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	r, err := s.store.GetReview(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("review not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get review: %v", err)), nil
	}
	return jsonResult(toOut(r))
}

// cra_delete_review
func (s *Server) deleteReviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("cra_delete_review",
		mcp.WithDescription("Delete a saved code review by ID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Review ID")),
	)
	return tool, s.handleDeleteReview
}

func (s *Server) handleDeleteReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	deleted, err := s.store.DeleteReview(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete review: %v", err)), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("review not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted review %s", id)), nil
}
