package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/cra/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients request code reviews and browse the review history.
Configure in Claude Code with:

  {
    "mcpServers": {
      "cra": { "command": "cra", "args": ["mcp"] }
    }
  }

Available tools: cra_review_code, cra_list_reviews, cra_get_review,
cra_delete_review`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals()...)
	defer stop()

	s, err := getStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	reviewer, err := newReviewer(ctx, nil)
	if err != nil {
		return fmt.Errorf("initialize model backend: %w", err)
	}
	defer func() { _ = reviewer.Close() }()

	// stdout carries the protocol; logs stay on stderr.
	slog.Info("mcp server starting", "version", buildVersion)
	return mcp.NewServer(s, reviewer, buildVersion).ServeStdio(ctx)
}
