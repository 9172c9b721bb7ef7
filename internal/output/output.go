package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/joescharf/cra/internal/models"
)

// UI provides colored terminal output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	bold          = color.New(color.Bold).SprintFunc()
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
)

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// Green returns a green-colored string.
func Green(s string) string { return green(s) }

// Yellow returns a yellow-colored string.
func Yellow(s string) string { return yellow(s) }

// Red returns a red-colored string.
func Red(s string) string { return red(s) }

// ScoreColor formats a 0-10 score with one decimal, colored by band:
// green from 7, yellow from 5, red below.
func ScoreColor(score float64) string {
	s := fmt.Sprintf("%.1f", score)
	switch {
	case score >= 7:
		return green(s)
	case score >= 5:
		return yellow(s)
	default:
		return red(s)
	}
}

// ScoreBar renders a 0-10 score as a ten-cell bar.
func ScoreBar(score float64) string {
	filled := int(score + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Error(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", errorPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Heading prints a bold section title followed by a blank line.
func (u *UI) Heading(title string) {
	fmt.Fprintf(u.Out, "\n%s\n", bold(title))
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

// Review renders a review with score bars, the report and numbered
// suggestions.
func (u *UI) Review(r *models.Review) {
	u.Heading("Review: " + r.Filename)
	if r.ID != "" {
		fmt.Fprintf(u.Out, "  %s %s\n", cyan("ID:"), r.ID)
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(u.Out, "  %s %s\n", cyan("Created:"), r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(u.Out)
	scores := []struct {
		label string
		value float64
	}{
		{"Readability", r.Readability},
		{"Modularity", r.Modularity},
		{"Bug risk", r.BugRisk},
		{"Overall", r.Overall},
	}
	for _, s := range scores {
		fmt.Fprintf(u.Out, "  %-12s %s  %s\n", s.label, ScoreBar(s.value), ScoreColor(s.value))
	}

	u.Heading("Report")
	fmt.Fprintln(u.Out, strings.TrimSpace(r.ReviewReport))

	if suggestions := r.SuggestionList(); len(suggestions) > 0 {
		u.Heading("Suggestions")
		for i, s := range suggestions {
			fmt.Fprintf(u.Out, "  %d. %s\n", i+1, s)
		}
	}
}
