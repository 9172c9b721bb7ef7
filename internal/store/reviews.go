package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joescharf/cra/internal/models"
)

const reviewColumns = `id, filename, file_content, review_report, readability_score, modularity_score, bug_risk_score, overall_score, suggestions, created_at`

func (s *sqlStore) SaveReview(ctx context.Context, r *models.Review) error {
	if r.ID == "" {
		r.ID = newULID()
	}
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO code_reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Filename, r.FileContent, r.ReviewReport,
		r.Readability, r.Modularity, r.BugRisk, r.Overall,
		r.Suggestions, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func (s *sqlStore) GetReview(ctx context.Context, id string) (*models.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM code_reviews WHERE id = ?`, id)

	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// ListReviews returns reviews oldest first. A non-positive limit means
// DefaultListLimit.
func (s *sqlStore) ListReviews(ctx context.Context, offset, limit int) ([]*models.Review, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM code_reviews ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reviews := []*models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (s *sqlStore) DeleteReview(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM code_reviews WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.Review, error) {
	r := &models.Review{}
	err := row.Scan(&r.ID, &r.Filename, &r.FileContent, &r.ReviewReport,
		&r.Readability, &r.Modularity, &r.BugRisk, &r.Overall,
		&r.Suggestions, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}
