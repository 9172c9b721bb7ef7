package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joescharf/cra/internal/models"
)

// ErrNotFound is returned when a requested review does not exist.
var ErrNotFound = errors.New("review not found")

// DefaultListLimit caps ListReviews when the caller passes no limit.
const DefaultListLimit = 100

// Store defines the persistence interface for code reviews.
type Store interface {
	// Reviews
	SaveReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, offset, limit int) ([]*models.Review, error)
	GetReview(ctx context.Context, id string) (*models.Review, error)
	DeleteReview(ctx context.Context, id string) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the database named by a URL. Supported forms are
// sqlite://path, sqlite:///abs/path, mysql://dsn, and a bare file path,
// which is treated as SQLite.
func Open(databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "mysql://"):
		return NewMySQLStore(strings.TrimPrefix(databaseURL, "mysql://"))
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLiteStore(sqlitePath(strings.TrimPrefix(databaseURL, "sqlite://")))
	case strings.Contains(databaseURL, "://"):
		scheme, _, _ := strings.Cut(databaseURL, "://")
		return nil, fmt.Errorf("unsupported database scheme: %s", scheme)
	case databaseURL == "":
		return nil, errors.New("database url is empty")
	default:
		return NewSQLiteStore(databaseURL)
	}
}

// sqlitePath maps the part after sqlite:// to a file path. A leading
// "/./" or "/../" is read as relative, so sqlite:///./reviews.db lands in
// the working directory.
func sqlitePath(rest string) string {
	if strings.HasPrefix(rest, "/./") || strings.HasPrefix(rest, "/../") {
		return rest[1:]
	}
	return rest
}
