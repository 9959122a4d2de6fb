// Package site assembles review sections from the catalog and IGDB metadata
// and renders them as a static page.
package site

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/game-reviews/internal/igdb"
	"github.com/louisbranch/game-reviews/internal/reviews"
)

// Section is one category with its fully joined reviews, in render order.
type Section struct {
	Category reviews.Category
	Reviews  []Review
}

// Review is a catalog review joined with its IGDB metadata, shaped for
// presentation.
type Review struct {
	Title        string
	Link         string
	CoverURL     string
	DateReleased string
	YearPlayed   string
	Rating       *int64
	Description  string
	Pros         string
	Cons         string
	HeartCount   int64
	Genres       []string
}

// Resolver supplies IGDB metadata for sections.
type Resolver interface {
	Games(ctx context.Context, ids []int64) ([]igdb.Game, error)
	Genres(ctx context.Context, ids []int64) ([]igdb.Genre, error)
	Covers(ctx context.Context, ids []int64) ([]igdb.Cover, error)
}

// BuildSections loads every category and joins its reviews with IGDB games,
// genres, and covers. Any missing piece of metadata fails the whole build:
// generation is single-shot and a partial page is worse than no page.
func BuildSections(ctx context.Context, store reviews.Store, resolver Resolver) ([]Section, error) {
	categories, err := store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	sections := make([]Section, 0, len(categories))
	for _, category := range categories {
		catalog, err := store.ByCategory(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("load reviews for %q: %w", category.Title, err)
		}

		gameIDs := make([]int64, 0, len(catalog))
		for _, review := range catalog {
			gameIDs = append(gameIDs, review.IGDBID)
		}
		games, err := resolver.Games(ctx, gameIDs)
		if err != nil {
			return nil, err
		}

		genreIDs := collectGenreIDs(games)
		coverIDs := make([]int64, 0, len(games))
		for _, game := range games {
			if game.Cover != 0 {
				coverIDs = append(coverIDs, game.Cover)
			}
		}

		// Genres and covers depend only on the games result, so the two
		// batches resolve concurrently.
		var genres []igdb.Genre
		var covers []igdb.Cover
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			genres, err = resolver.Genres(groupCtx, genreIDs)
			return err
		})
		group.Go(func() error {
			var err error
			covers, err = resolver.Covers(groupCtx, coverIDs)
			return err
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}

		joined := make([]Review, 0, len(catalog))
		for _, review := range catalog {
			entry, err := makeReview(games, genres, covers, review)
			if err != nil {
				return nil, err
			}
			joined = append(joined, entry)
		}
		sections = append(sections, Section{Category: category, Reviews: joined})
	}
	return sections, nil
}

func collectGenreIDs(games []igdb.Game) []int64 {
	seen := make(map[int64]struct{})
	for _, game := range games {
		for _, id := range game.Genres {
			seen[id] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func makeReview(games []igdb.Game, genres []igdb.Genre, covers []igdb.Cover, review reviews.GameReview) (Review, error) {
	var game *igdb.Game
	for i := range games {
		if games[i].ID == review.IGDBID {
			game = &games[i]
			break
		}
	}
	if game == nil {
		return Review{}, fmt.Errorf("no igdb game %d for review %q", review.IGDBID, review.Title)
	}

	var coverURL string
	for _, cover := range covers {
		if cover.ID == game.Cover {
			coverURL = cover.URL
			break
		}
	}
	if coverURL == "" {
		return Review{}, fmt.Errorf("no cover for igdb game %d (%q)", game.ID, game.Name)
	}

	var genreNames []string
	for _, genre := range genres {
		for _, id := range game.Genres {
			if genre.ID == id {
				genreNames = append(genreNames, genre.Name)
				break
			}
		}
	}

	var released string
	if game.FirstReleaseDate != nil {
		released = game.FirstReleaseDate.Format("01/2006")
	}

	return Review{
		Title:        game.Name,
		Link:         game.URL,
		CoverURL:     coverURL,
		DateReleased: released,
		YearPlayed:   review.YearPlayed,
		Rating:       review.Rating,
		Description:  review.Description,
		Pros:         review.Pros,
		Cons:         review.Cons,
		HeartCount:   review.HeartCount,
		Genres:       genreNames,
	}, nil
}
