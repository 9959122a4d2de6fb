// Package sqlite provides the SQLite-backed review catalog source.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/game-reviews/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/game-reviews/internal/reviews"
	"github.com/louisbranch/game-reviews/internal/reviews/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store reads the review catalog from SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the catalog database and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Categories returns all categories ordered by sort order.
func (s *Store) Categories(ctx context.Context) ([]reviews.Category, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, sort_order, description FROM category ORDER BY sort_order`,
	)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []reviews.Category
	for rows.Next() {
		var category reviews.Category
		if err := rows.Scan(&category.ID, &category.Title, &category.SortOrder, &category.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// ByCategory returns a category's reviews, best rated first, ties broken by
// title.
func (s *Store) ByCategory(ctx context.Context, categoryID int64) ([]reviews.GameReview, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, igdb_id, title, year_played, rating, description, pros, cons, heart_count, category_id
		 FROM game_review
		 WHERE category_id = ?
		 GROUP BY id
		 ORDER BY rating DESC, title`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var result []reviews.GameReview
	for rows.Next() {
		var review reviews.GameReview
		var yearPlayed, pros, cons sql.NullString
		var rating, heartCount sql.NullInt64
		if err := rows.Scan(
			&review.ID,
			&review.IGDBID,
			&review.Title,
			&yearPlayed,
			&rating,
			&review.Description,
			&pros,
			&cons,
			&heartCount,
			&review.CategoryID,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		review.YearPlayed = yearPlayed.String
		review.Pros = pros.String
		review.Cons = cons.String
		review.HeartCount = heartCount.Int64
		if rating.Valid {
			value := rating.Int64
			review.Rating = &value
		}
		result = append(result, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return result, nil
}
