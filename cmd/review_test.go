package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/cra/internal/models"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetReviewFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		reviewNoSave = false
		reviewJSON = false
		reviewsSkip = 0
		reviewsLimit = 100
		reviewsJSON = false
	})
}

func outString() string {
	return ui.Out.(*bytes.Buffer).String()
}

func TestReviewFileRun_HeuristicAndSave(t *testing.T) {
	dir := testEnv(t)
	resetReviewFlags(t)
	path := writeSource(t, dir, "main.go", "package main\n\nfunc main() {}\n")

	require.NoError(t, reviewFileRun(context.Background(), path))

	out := outString()
	assert.Contains(t, out, "Review: main.go")
	assert.Contains(t, out, "Demo Analysis for main.go")
	assert.Contains(t, out, "Saved review")

	s, err := getStore()
	require.NoError(t, err)
	reviews, err := s.ListReviews(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "main.go", reviews[0].Filename)
	assert.Equal(t, "package main\n\nfunc main() {}\n", reviews[0].FileContent)
}

func TestReviewFileRun_NoSaveJSON(t *testing.T) {
	dir := testEnv(t)
	resetReviewFlags(t)
	reviewNoSave = true
	reviewJSON = true
	path := writeSource(t, dir, "util.py", "print('hi')\n")

	require.NoError(t, reviewFileRun(context.Background(), path))

	var got models.Review
	require.NoError(t, json.Unmarshal([]byte(outString()), &got))
	assert.Empty(t, got.ID)
	assert.Equal(t, "util.py", got.Filename)
	assert.Equal(t, 8.0, got.Readability)
	assert.NotEmpty(t, got.SuggestionList())

	// Nothing was written.
	_, err := os.Stat(filepath.Join(dir, "code_reviews.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestReviewFileRun_Errors(t *testing.T) {
	dir := testEnv(t)
	resetReviewFlags(t)

	err := reviewFileRun(context.Background(), filepath.Join(dir, "missing.go"))
	assert.Error(t, err)

	err = reviewFileRun(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")

	bin := writeSource(t, dir, "blob.bin", string([]byte{0xff, 0xfe, 0x00}))
	err = reviewFileRun(context.Background(), bin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UTF-8")

	big := writeSource(t, dir, "big.txt", strings.Repeat("a", 5<<20+1))
	err = reviewFileRun(context.Background(), big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestReviewsCommands(t *testing.T) {
	dir := testEnv(t)
	resetReviewFlags(t)
	ctx := context.Background()

	for _, name := range []string{"a.go", "b.go"} {
		require.NoError(t, reviewFileRun(ctx, writeSource(t, dir, name, "package x\n")))
	}
	s, err := getStore()
	require.NoError(t, err)
	all, err := s.ListReviews(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)

	ui.Out.(*bytes.Buffer).Reset()
	require.NoError(t, reviewsListRun(ctx))
	out := outString()
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "b.go")

	ui.Out.(*bytes.Buffer).Reset()
	reviewsSkip, reviewsLimit, reviewsJSON = 1, 1, true
	require.NoError(t, reviewsListRun(ctx))
	var page []models.Review
	require.NoError(t, json.Unmarshal([]byte(outString()), &page))
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)
	reviewsSkip, reviewsLimit, reviewsJSON = 0, 100, false

	ui.Out.(*bytes.Buffer).Reset()
	require.NoError(t, reviewsShowRun(ctx, all[0].ID))
	assert.Contains(t, outString(), all[0].ID)

	err = reviewsShowRun(ctx, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, reviewsDeleteRun(ctx, all[0].ID))
	err = reviewsDeleteRun(ctx, all[0].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReviewsDelete_DryRun(t *testing.T) {
	dir := testEnv(t)
	resetReviewFlags(t)
	ctx := context.Background()
	require.NoError(t, reviewFileRun(ctx, writeSource(t, dir, "a.go", "package x\n")))

	s, err := getStore()
	require.NoError(t, err)
	all, err := s.ListReviews(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)

	dryRun = true
	ui.DryRun = true
	t.Cleanup(func() { dryRun = false })

	require.NoError(t, reviewsDeleteRun(ctx, all[0].ID))
	_, err = s.GetReview(ctx, all[0].ID)
	assert.NoError(t, err, "dry run must not delete")
}

func TestReviewsList_Empty(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)

	require.NoError(t, reviewsListRun(context.Background()))
	assert.Contains(t, outString(), "No reviews found")
}

func TestReviewsList_NegativeFlags(t *testing.T) {
	testEnv(t)
	resetReviewFlags(t)
	reviewsSkip = -1

	assert.Error(t, reviewsListRun(context.Background()))
}
