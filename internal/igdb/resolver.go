package igdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/game-reviews/internal/igdb/cache"
)

// IGDB endpoint names. An endpoint partitions both the remote API and the
// cache: entries for distinct endpoints never mix, even when ids collide.
const (
	EndpointGames  = "games"
	EndpointGenres = "genres"
	EndpointCovers = "covers"
)

// Field selectors per endpoint.
const (
	gameFields  = "id,name,slug,url,summary,first_release_date,genres,cover"
	genreFields = "id,name"
	coverFields = "id,url"
)

// fetchLimit caps one bulk request. The API silently truncates past its own
// limit, so a short result is reported as a warning, never retried with
// pagination.
const fetchLimit = 500

// Remote issues one bulk query against an IGDB endpoint. *Client implements
// it; tests substitute a counting double.
type Remote interface {
	Fetch(ctx context.Context, endpoint, body string) ([]json.RawMessage, error)
}

// Resolver answers id-batch metadata lookups cache-aside: cached records are
// served from the store, the rest are fetched remotely in one request and
// persisted before the call returns. Both collaborators are injected.
type Resolver struct {
	remote Remote
	store  cache.Store
}

// NewResolver returns a resolver over the given remote and cache store. A nil
// store disables caching.
func NewResolver(remote Remote, store cache.Store) *Resolver {
	if store == nil {
		store = cache.Noop{}
	}
	return &Resolver{remote: remote, store: store}
}

// Games resolves games records for the given ids.
func (r *Resolver) Games(ctx context.Context, ids []int64) ([]Game, error) {
	return Resolve[Game](ctx, r, EndpointGames, gameFields, ids)
}

// Genres resolves genres records for the given ids.
func (r *Resolver) Genres(ctx context.Context, ids []int64) ([]Genre, error) {
	return Resolve[Genre](ctx, r, EndpointGenres, genreFields, ids)
}

// Covers resolves covers records for the given ids, with display-ready URLs.
func (r *Resolver) Covers(ctx context.Context, ids []int64) ([]Cover, error) {
	return Resolve[Cover](ctx, r, EndpointCovers, coverFields, ids)
}

// Resolve returns records for every requested id: cache hits plus whatever
// one remote fetch of the misses yields. Fetched records are persisted before
// returning, so an overlapping follow-up call observes cache hits. Input ids
// are not deduplicated; duplicate cached ids collapse naturally while
// duplicate missing ids repeat in the query, which the API tolerates.
//
// A cache read failure, a fetch failure, or a cache write failure each abort
// the whole call; nothing is written from a failed fetch, and nothing is
// returned when persistence is uncertain.
func Resolve[T Record](ctx context.Context, r *Resolver, endpoint, fields string, ids []int64) ([]T, error) {
	ctx, span := tracer.Start(ctx, "igdb.resolve", trace.WithAttributes(
		attribute.String("igdb.endpoint", endpoint),
		attribute.Int("igdb.requested", len(ids)),
	))
	defer span.End()

	cachedRaw, err := r.store.GetMany(ctx, endpoint, ids)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("resolve %s: cache read: %w", endpoint, err)
	}

	cached := make([]T, 0, len(cachedRaw))
	for id, payload := range cachedRaw {
		var record T
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("resolve %s: decode cached record %d: %w", endpoint, id, err)
		}
		cached = append(cached, record)
	}

	var misses []int64
	for _, id := range ids {
		if _, ok := cachedRaw[id]; !ok {
			misses = append(misses, id)
		}
	}
	span.SetAttributes(
		attribute.Int("igdb.cache_hits", len(cached)),
		attribute.Int("igdb.cache_misses", len(misses)),
	)

	// Fully cached: no remote call, no rate-limiter consumption.
	if len(misses) == 0 {
		return cached, nil
	}

	body := queryBody(fields, misses)
	raw, err := r.remote.Fetch(ctx, endpoint, body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	fetched := make([]T, 0, len(raw))
	entries := make([]cache.Entry, 0, len(raw))
	for _, item := range raw {
		var record T
		if err := json.Unmarshal(item, &record); err != nil {
			decodeErr := &DecodeError{Endpoint: endpoint, RequestBody: body, Response: string(item), Err: err}
			log.Printf("igdb: ERROR unexpected %s record shape: %v", endpoint, err)
			span.RecordError(decodeErr)
			return nil, decodeErr
		}
		if n, ok := any(&record).(normalizable); ok {
			n.normalize()
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: encode record %d: %w", endpoint, record.RecordID(), err)
		}
		fetched = append(fetched, record)
		entries = append(entries, cache.Entry{ID: record.RecordID(), Payload: payload})
	}

	if len(fetched) < len(misses) {
		log.Printf("igdb: %s returned %d of %d requested records", endpoint, len(fetched), len(misses))
	}

	if err := r.store.PutMany(ctx, endpoint, entries); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("resolve %s: cache write: %w", endpoint, err)
	}

	return append(fetched, cached...), nil
}

func queryBody(fields string, ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("limit %d; fields %s; where id=(%s);", fetchLimit, fields, strings.Join(parts, ","))
}
