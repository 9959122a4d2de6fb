// Package reviews reads the personal game review catalog: categories and the
// reviews filed under them. The catalog is an external input; this package
// never writes to it.
package reviews

import "context"

// Category groups reviews on the rendered page, ordered by SortOrder.
type Category struct {
	ID          int64
	Title       string
	SortOrder   int64
	Description string
}

// GameReview is one reviewed game. IGDBID links the review to its remote
// metadata record.
type GameReview struct {
	ID          int64
	IGDBID      int64
	Title       string
	YearPlayed  string
	Rating      *int64
	Description string
	Pros        string
	Cons        string
	HeartCount  int64
	CategoryID  int64
}

// Store is the read-only review source.
type Store interface {
	// Categories returns all categories ordered by sort order.
	Categories(ctx context.Context) ([]Category, error)
	// ByCategory returns a category's reviews ordered by rating descending,
	// then title.
	ByCategory(ctx context.Context, categoryID int64) ([]GameReview, error)
}
