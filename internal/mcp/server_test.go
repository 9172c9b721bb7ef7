package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/cra/internal/models"
	"github.com/joescharf/cra/internal/store"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockStore implements store.Store in memory.
type mockStore struct {
	reviews []*models.Review
	nextID  int

	// Optional error injection.
	saveErr error
	listErr error
}

func (m *mockStore) SaveReview(_ context.Context, r *models.Review) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.nextID++
	r.ID = fmt.Sprintf("rev-%d", m.nextID)
	r.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *mockStore) ListReviews(_ context.Context, offset, limit int) ([]*models.Review, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if offset >= len(m.reviews) {
		return []*models.Review{}, nil
	}
	end := len(m.reviews)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return m.reviews[offset:end], nil
}

func (m *mockStore) GetReview(_ context.Context, id string) (*models.Review, error) {
	for _, r := range m.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
}

func (m *mockStore) DeleteReview(_ context.Context, id string) (bool, error) {
	for i, r := range m.reviews {
		if r.ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }

// mockAnalyzer returns a canned report.
type mockAnalyzer struct {
	calls int
}

func (a *mockAnalyzer) Analyze(_ context.Context, filename, _ string) models.ReviewReport {
	a.calls++
	return models.ReviewReport{
		Report:      "Looks fine: " + filename,
		Scores:      models.ReviewScores{Readability: 8, Modularity: 7, BugRisk: 6, Overall: 7},
		Suggestions: []string{"Add tests", "Split main"},
	}
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) (*Server, *mockStore, *mockAnalyzer) {
	t.Helper()
	ms := &mockStore{}
	ma := &mockAnalyzer{}
	srv := NewServer(ms, ma, "test")
	require.NotNil(t, srv)
	return srv, ms, ma
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	text := resultText(t, result)
	err := json.Unmarshal([]byte(text), target)
	require.NoError(t, err, "failed to parse result JSON: %s", text)
}

func seedReview(t *testing.T, ms *mockStore, filename string) *models.Review {
	t.Helper()
	r := models.NewReview(filename, "code", models.ReviewReport{
		Report:      "stored report",
		Scores:      models.ReviewScores{Readability: 5, Modularity: 5, BugRisk: 5, Overall: 5},
		Suggestions: []string{"one", "two"},
	})
	require.NoError(t, ms.SaveReview(context.Background(), r))
	return r
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestMCPIntegration_ListTools(t *testing.T) {
	srv, _, _ := newTestServer(t)
	mcpSrv := srv.MCPServer()
	require.NotNil(t, mcpSrv)

	// Call tools/list via HandleMessage to verify registration.
	reqJSON := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	respMsg := mcpSrv.HandleMessage(context.Background(), reqJSON)
	require.NotNil(t, respMsg)

	respBytes, err := json.Marshal(respMsg)
	require.NoError(t, err)

	var rpcResp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &rpcResp))

	toolNames := make(map[string]bool)
	for _, tool := range rpcResp.Result.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range []string{"cra_review_code", "cra_list_reviews", "cra_get_review", "cra_delete_review"} {
		assert.True(t, toolNames[name], "expected tool %q to be registered", name)
	}
}

func TestReviewCode_Saves(t *testing.T) {
	srv, ms, ma := newTestServer(t)

	result, err := srv.handleReviewCode(context.Background(), callToolReq("cra_review_code", map[string]any{
		"filename": "main.go",
		"content":  "package main",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out reviewOut
	resultJSON(t, result, &out)
	assert.Equal(t, "rev-1", out.ID)
	assert.Equal(t, "Looks fine: main.go", out.Report)
	assert.Equal(t, 7.0, out.Scores.Overall)
	assert.Equal(t, []string{"Add tests", "Split main"}, out.Suggestions)
	assert.Equal(t, "2026-01-02T03:04:05Z", out.CreatedAt)

	assert.Equal(t, 1, ma.calls)
	assert.Len(t, ms.reviews, 1)
}

func TestReviewCode_NoSave(t *testing.T) {
	srv, ms, _ := newTestServer(t)

	result, err := srv.handleReviewCode(context.Background(), callToolReq("cra_review_code", map[string]any{
		"filename": "main.go",
		"content":  "package main",
		"save":     false,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out reviewOut
	resultJSON(t, result, &out)
	assert.Empty(t, out.ID)
	assert.Equal(t, "main.go", out.Filename)
	assert.Empty(t, ms.reviews)
}

func TestReviewCode_MissingArgs(t *testing.T) {
	srv, _, ma := newTestServer(t)

	result, err := srv.handleReviewCode(context.Background(), callToolReq("cra_review_code", map[string]any{
		"content": "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "should error when filename is missing")

	result, err = srv.handleReviewCode(context.Background(), callToolReq("cra_review_code", map[string]any{
		"filename": "a.go",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "should error when content is missing")
	assert.Equal(t, 0, ma.calls)
}

func TestReviewCode_SaveError(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	ms.saveErr = errors.New("disk full")

	result, err := srv.handleReviewCode(context.Background(), callToolReq("cra_review_code", map[string]any{
		"filename": "a.go",
		"content":  "package a",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "disk full")
}

func TestListReviews(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	seedReview(t, ms, "a.go")
	seedReview(t, ms, "b.go")
	seedReview(t, ms, "c.go")

	result, err := srv.handleListReviews(context.Background(), callToolReq("cra_list_reviews", map[string]any{
		"skip":  1,
		"limit": 5,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out []map[string]any
	resultJSON(t, result, &out)
	require.Len(t, out, 2)
	assert.Equal(t, "b.go", out[0]["filename"])
	assert.Equal(t, 5.0, out[0]["overall_score"])
}

func TestListReviews_Error(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	ms.listErr = errors.New("db down")

	result, err := srv.handleListReviews(context.Background(), callToolReq("cra_list_reviews", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestGetReview(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	r := seedReview(t, ms, "a.go")

	result, err := srv.handleGetReview(context.Background(), callToolReq("cra_get_review", map[string]any{"id": r.ID}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out reviewOut
	resultJSON(t, result, &out)
	assert.Equal(t, "stored report", out.Report)
	assert.Equal(t, []string{"one", "two"}, out.Suggestions)

	result, err = srv.handleGetReview(context.Background(), callToolReq("cra_get_review", map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "review not found")

	result, err = srv.handleGetReview(context.Background(), callToolReq("cra_get_review", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError, "should error when id is missing")
}

func TestDeleteReview(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	r := seedReview(t, ms, "a.go")

	result, err := srv.handleDeleteReview(context.Background(), callToolReq("cra_delete_review", map[string]any{"id": r.ID}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Empty(t, ms.reviews)

	result, err = srv.handleDeleteReview(context.Background(), callToolReq("cra_delete_review", map[string]any{"id": r.ID}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// Compile-time interface check for the mock.
var _ store.Store = (*mockStore)(nil)
