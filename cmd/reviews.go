package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/cra/internal/output"
	"github.com/joescharf/cra/internal/store"
)

var (
	reviewsSkip  int
	reviewsLimit int
	reviewsJSON  bool
)

var reviewsCmd = &cobra.Command{
	Use:     "reviews",
	Aliases: []string{"history"},
	Short:   "Browse saved reviews",
	Long: `Browse saved reviews.

Running bare 'cra reviews' is the same as 'cra reviews list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsListRun(cmd.Context())
	},
}

var reviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reviews, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsListRun(cmd.Context())
	},
}

var reviewsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsShowRun(cmd.Context(), args[0])
	},
}

var reviewsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved review",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewsDeleteRun(cmd.Context(), args[0])
	},
}

func init() {
	reviewsCmd.PersistentFlags().IntVar(&reviewsSkip, "skip", 0, "Number of reviews to skip")
	reviewsCmd.PersistentFlags().IntVar(&reviewsLimit, "limit", store.DefaultListLimit, "Maximum number of reviews to list")
	reviewsCmd.PersistentFlags().BoolVar(&reviewsJSON, "json", false, "Print as JSON")

	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsShowCmd)
	reviewsCmd.AddCommand(reviewsDeleteCmd)
	rootCmd.AddCommand(reviewsCmd)
}

func reviewsListRun(ctx context.Context) error {
	if reviewsSkip < 0 || reviewsLimit < 0 {
		return fmt.Errorf("--skip and --limit must not be negative")
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	reviews, err := s.ListReviews(ctx, reviewsSkip, reviewsLimit)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}

	if reviewsJSON {
		return printJSON(reviews)
	}
	if len(reviews) == 0 {
		ui.Info("No reviews found")
		return nil
	}

	table := ui.Table([]string{"ID", "File", "Readability", "Modularity", "Bug risk", "Overall", "Created"})
	for _, r := range reviews {
		_ = table.Append([]string{
			r.ID,
			r.Filename,
			output.ScoreColor(r.Readability),
			output.ScoreColor(r.Modularity),
			output.ScoreColor(r.BugRisk),
			output.ScoreColor(r.Overall),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func reviewsShowRun(ctx context.Context, id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	r, err := s.GetReview(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("review %s not found", id)
		}
		return err
	}

	if reviewsJSON {
		return printJSON(r)
	}
	ui.Review(r)
	return nil
}

func reviewsDeleteRun(ctx context.Context, id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	if dryRun {
		if _, err := s.GetReview(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("review %s not found", id)
			}
			return err
		}
		ui.DryRunMsg("Would delete review %s", id)
		return nil
	}

	deleted, err := s.DeleteReview(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if !deleted {
		return fmt.Errorf("review %s not found", id)
	}
	ui.Success("Deleted review %s", id)
	return nil
}
