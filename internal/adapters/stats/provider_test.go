package stats_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pacebot/internal/adapters/stats"
	"github.com/alejandrodnm/pacebot/internal/domain"
)

// memStore is a map-backed Storage stub; only the team metrics methods
// matter for these tests.
type memStore struct {
	metrics map[string]domain.TeamMetrics
}

func newMemStore() *memStore {
	return &memStore{metrics: make(map[string]domain.TeamMetrics)}
}

func (s *memStore) SavePoll(context.Context, domain.PollRecord) error { return nil }
func (s *memStore) GetPolls(context.Context, time.Time, time.Time) ([]domain.PollRecord, error) {
	return nil, nil
}
func (s *memStore) SaveResult(context.Context, domain.GameResult) error { return nil }
func (s *memStore) HasResult(context.Context, string) (bool, error)     { return false, nil }
func (s *memStore) GetResults(context.Context, time.Time, time.Time) ([]domain.GameResult, error) {
	return nil, nil
}
func (s *memStore) SaveTeamMetrics(_ context.Context, m domain.TeamMetrics) error {
	s.metrics[m.Team] = m
	return nil
}
func (s *memStore) GetTeamMetrics(_ context.Context, team string) (*domain.TeamMetrics, error) {
	if m, ok := s.metrics[team]; ok {
		return &m, nil
	}
	return nil, nil
}
func (s *memStore) PruneOlderThan(context.Context, time.Time) error { return nil }
func (s *memStore) Close() error                                    { return nil }

func ratingsServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile("../../../testdata/fixtures/ratings.html")
	require.NoError(t, err)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write(data)
	}))
}

func TestCachedProvider_FreshRowSkipsScrape(t *testing.T) {
	store := newMemStore()
	store.metrics["Butler Bulldogs"] = domain.TeamMetrics{
		Team: "Butler Bulldogs", Pace: 60, FetchedAt: time.Now(),
	}

	var hits atomic.Int32
	srv := ratingsServer(t, &hits)
	defer srv.Close()

	p := stats.NewCachedProvider(stats.NewScraper(srv.URL, 0), store, time.Hour)
	m, err := p.TeamMetrics(context.Background(), "Butler Bulldogs")

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 60.0, m.Pace)
	assert.Equal(t, int32(0), hits.Load())
}

func TestCachedProvider_ScrapeOnMissPersistsMatch(t *testing.T) {
	store := newMemStore()
	var hits atomic.Int32
	srv := ratingsServer(t, &hits)
	defer srv.Close()

	p := stats.NewCachedProvider(stats.NewScraper(srv.URL, 0), store, time.Hour)
	ctx := context.Background()

	// display name with mascot matches the short ratings name
	m, err := p.TeamMetrics(ctx, "Butler Bulldogs")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Butler Bulldogs", m.Team, "row renamed to the requested name")
	assert.InDelta(t, 65.2, m.Pace, 0.001)
	assert.Equal(t, int32(1), hits.Load())

	saved, err := store.GetTeamMetrics(ctx, "Butler Bulldogs")
	require.NoError(t, err)
	require.NotNil(t, saved, "match persisted for the next direct hit")

	// a second team reuses the in-memory snapshot, no extra fetch
	m2, err := p.TeamMetrics(ctx, "Creighton Bluejays")
	require.NoError(t, err)
	require.NotNil(t, m2)
	assert.InDelta(t, 69.0, m2.Pace, 0.001)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedProvider_StaleRowRefreshes(t *testing.T) {
	store := newMemStore()
	store.metrics["Butler"] = domain.TeamMetrics{
		Team: "Butler", Pace: 60, FetchedAt: time.Now().Add(-25 * time.Hour),
	}

	var hits atomic.Int32
	srv := ratingsServer(t, &hits)
	defer srv.Close()

	p := stats.NewCachedProvider(stats.NewScraper(srv.URL, 0), store, 24*time.Hour)
	m, err := p.TeamMetrics(context.Background(), "Butler")

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 65.2, m.Pace, 0.001, "stale row replaced by a fresh scrape")
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedProvider_ScrapeFailureServesStale(t *testing.T) {
	store := newMemStore()
	store.metrics["Butler"] = domain.TeamMetrics{
		Team: "Butler", Pace: 60, FetchedAt: time.Now().Add(-25 * time.Hour),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := stats.NewCachedProvider(stats.NewScraper(srv.URL, 0), store, 24*time.Hour)
	m, err := p.TeamMetrics(context.Background(), "Butler")

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 60.0, m.Pace, "stale beats nothing")
}

func TestCachedProvider_UnknownTeamIsNil(t *testing.T) {
	var hits atomic.Int32
	srv := ratingsServer(t, &hits)
	defer srv.Close()

	p := stats.NewCachedProvider(stats.NewScraper(srv.URL, 0), newMemStore(), time.Hour)
	m, err := p.TeamMetrics(context.Background(), "Vermont Catamounts")

	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCachedProvider_NoDataAnywhereErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := stats.NewCachedProvider(stats.NewScraper(srv.URL, 0), newMemStore(), time.Hour)
	_, err := p.TeamMetrics(context.Background(), "Butler")
	assert.Error(t, err)
}
