package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/joescharf/cra/internal/api"
	"github.com/joescharf/cra/internal/models"
)

var (
	reviewNoSave bool
	reviewJSON   bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <file>",
	Short: "Review a source file",
	Long: `Review a source file for readability, modularity and bug risk.

The review is saved to the history unless --no-save is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewFileRun(cmd.Context(), args[0])
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewNoSave, "no-save", false, "Do not save the review to the history")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "Print the review as JSON")
	rootCmd.AddCommand(reviewCmd)
}

func reviewFileRun(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > api.MaxUploadSize {
		return fmt.Errorf("file is too large (%d bytes, max %d)", info.Size(), api.MaxUploadSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("file must be a valid text file (UTF-8 encoded)")
	}

	reviewer, err := newReviewer(ctx, nil)
	if err != nil {
		return fmt.Errorf("initialize model backend: %w", err)
	}
	defer func() { _ = reviewer.Close() }()

	filename := filepath.Base(path)
	ui.VerboseLog("Reviewing %s (%d bytes)", filename, len(data))
	report := reviewer.Analyze(ctx, filename, string(data))

	rec := models.NewReview(filename, string(data), report)
	if !reviewNoSave {
		s, err := getStore()
		if err != nil {
			return err
		}
		if err := s.SaveReview(ctx, rec); err != nil {
			return fmt.Errorf("save review: %w", err)
		}
	}

	if reviewJSON {
		return printJSON(rec)
	}
	ui.Review(rec)
	if rec.ID != "" {
		fmt.Fprintln(ui.Out)
		ui.Success("Saved review %s", rec.ID)
	}
	return nil
}

// printJSON writes v to ui.Out as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(ui.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
