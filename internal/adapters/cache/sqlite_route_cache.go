package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"delivery-tracking-service/internal/platform/obs"
	"delivery-tracking-service/internal/ports"

	"github.com/pkg/errors"
)

// Default freshness for cached optimizer responses. Directions reflect
// traffic, so entries go stale quickly.
const DefaultRouteTTL = 15 * time.Minute

// SqliteRouteCache is a SQLite backed cache for optimizer responses, keyed by
// a normalized request signature. Staleness is enforced at read time; stale
// rows are overwritten by the next Put.
type SqliteRouteCache struct {
	DB  *sql.DB
	TTL time.Duration

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db, TTL: DefaultRouteTTL}
}

func (s *SqliteRouteCache) Get(ctx context.Context, key string) (_ ports.OptimizedRoute, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return ports.OptimizedRoute{}, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return ports.OptimizedRoute{}, false, errors.New("get route cache: key must not be empty")
	}

	var payload, cachedAt string
	err = s.DB.QueryRowContext(ctx, `
	SELECT payload, cached_at FROM directions_cache WHERE cache_key = ?;
	`, key).Scan(&payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.OptimizedRoute{}, false, nil
	}
	if err != nil {
		return ports.OptimizedRoute{}, false, errors.Wrap(err, "get route cache: query directions_cache table")
	}

	ts, err := time.Parse(time.RFC3339, cachedAt)
	if err != nil || s.now().Sub(ts) > s.ttl() {
		return ports.OptimizedRoute{}, false, nil
	}

	var route ports.OptimizedRoute
	if err := json.Unmarshal([]byte(payload), &route); err != nil {
		// An unreadable payload is treated as a miss and overwritten later.
		return ports.OptimizedRoute{}, false, nil
	}

	return route, true, nil
}

func (s *SqliteRouteCache) Put(ctx context.Context, key string, route ports.OptimizedRoute) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := json.Marshal(route)
	if err != nil {
		return errors.Wrap(err, "insert route cache: marshal payload")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO directions_cache (cache_key, payload, cached_at)
	VALUES (?, ?, ?);
	`, key, string(payload), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Wrapf(err, "insert route cache key=%q", key)
	}

	return nil
}

func (s *SqliteRouteCache) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultRouteTTL
}

func (s *SqliteRouteCache) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
