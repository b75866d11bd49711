package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/alejandrodnm/pacebot/internal/ports"
)

const defaultTTL = 24 * time.Hour

// CachedProvider resolves season metrics with a two-level cache: per-team
// rows persisted in Storage (survive restarts), plus an in-memory snapshot
// of the full ratings table refreshed on a TTL. Team names from the live
// feed are joined to ratings rows through the Matcher.
type CachedProvider struct {
	scraper *Scraper
	store   ports.Storage
	matcher *Matcher
	ttl     time.Duration

	mu      sync.Mutex
	ratings map[string]domain.TeamMetrics
	fetched time.Time
}

// NewCachedProvider creates a provider backed by the given scraper and
// storage. A non-positive ttl falls back to 24h.
func NewCachedProvider(scraper *Scraper, store ports.Storage, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedProvider{
		scraper: scraper,
		store:   store,
		matcher: NewMatcher(),
		ttl:     ttl,
	}
}

// TeamMetrics returns season metrics for the named team, or (nil, nil)
// when no ratings row matches. Scrape failures fall back to the last
// known row before surfacing an error.
func (p *CachedProvider) TeamMetrics(ctx context.Context, team string) (*domain.TeamMetrics, error) {
	cached, err := p.store.GetTeamMetrics(ctx, team)
	if err != nil {
		slog.Warn("team metrics cache read failed", "team", team, "error", err)
	} else if cached != nil && time.Since(cached.FetchedAt) < p.ttl {
		return cached, nil
	}

	ratings, err := p.snapshot(ctx)
	if err != nil {
		if cached != nil {
			slog.Warn("serving stale team metrics", "team", team, "age", time.Since(cached.FetchedAt).Round(time.Minute), "error", err)
			return cached, nil
		}
		return nil, err
	}

	row, ok := p.lookup(ratings, team)
	if !ok {
		return nil, nil
	}

	// Persist under the requested name so the next lookup is a direct hit.
	row.Team = team
	if err := p.store.SaveTeamMetrics(ctx, row); err != nil {
		slog.Warn("team metrics cache write failed", "team", team, "error", err)
	}
	return &row, nil
}

// lookup tries the canonical key first and falls back to a fuzzy scan.
func (p *CachedProvider) lookup(ratings map[string]domain.TeamMetrics, team string) (domain.TeamMetrics, bool) {
	if row, ok := ratings[Canonical(team)]; ok {
		return row, true
	}
	for _, row := range ratings {
		if p.matcher.Match(team, row.Team) {
			return row, true
		}
	}
	return domain.TeamMetrics{}, false
}

// snapshot returns the in-memory ratings table, refreshing it when stale.
// A failed refresh keeps serving the previous snapshot if one exists.
func (p *CachedProvider) snapshot(ctx context.Context) (map[string]domain.TeamMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ratings != nil && time.Since(p.fetched) < p.ttl {
		return p.ratings, nil
	}

	ratings, err := p.scraper.FetchRatings(ctx)
	if err != nil {
		if p.ratings != nil {
			slog.Warn("ratings refresh failed, serving previous snapshot", "error", err)
			return p.ratings, nil
		}
		return nil, err
	}

	p.ratings = ratings
	p.fetched = time.Now()
	return p.ratings, nil
}
