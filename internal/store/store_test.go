package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"url":       "sqlite://" + filepath.Join(dir, "a.db"),
		"bare path": filepath.Join(dir, "b.db"),
	}
	for name, url := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Open(url)
			require.NoError(t, err)
			defer s.Close()

			_, ok := s.(*SQLiteStore)
			assert.True(t, ok)
			require.NoError(t, s.Migrate(context.Background()))
		})
	}

	_, err := os.Stat(filepath.Join(dir, "a.db"))
	assert.NoError(t, err)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)

	_, err = Open("postgres://localhost/reviews")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database scheme: postgres")

	_, err = Open("mysql://not a dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mysql dsn")
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "./code_reviews.db", sqlitePath("/./code_reviews.db"))
	assert.Equal(t, "../x.db", sqlitePath("/../x.db"))
	assert.Equal(t, "/var/lib/cra.db", sqlitePath("/var/lib/cra.db"))
	assert.Equal(t, "reviews.db", sqlitePath("reviews.db"))
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")

	assert.NotContains(t, sqliteDSN(":memory:"), "journal_mode")
}

func TestNewSQLiteStore_Memory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	reviews, err := s.ListReviews(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
