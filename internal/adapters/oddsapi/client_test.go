package oddsapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pacebot/internal/adapters/oddsapi"
	"github.com/alejandrodnm/pacebot/internal/domain"
)

const totalsFixture = `[
  {
    "id": "e9a1b2c3",
    "sport_key": "basketball_ncaab",
    "commence_time": "2026-02-14T00:00:00Z",
    "home_team": "Butler Bulldogs",
    "away_team": "Creighton Bluejays",
    "bookmakers": [
      {
        "key": "fanduel",
        "title": "FanDuel",
        "last_update": "2026-02-14T01:12:43Z",
        "markets": [
          {"key": "h2h", "outcomes": [{"name": "Butler Bulldogs", "price": -130}]}
        ]
      },
      {
        "key": "draftkings",
        "title": "DraftKings",
        "last_update": "2026-02-14T01:13:05Z",
        "markets": [
          {
            "key": "totals",
            "outcomes": [
              {"name": "Over", "point": 144.5, "price": -110},
              {"name": "Under", "point": 144.5, "price": -110}
            ]
          }
        ]
      }
    ]
  },
  {
    "id": "f1d2e3a4",
    "sport_key": "basketball_ncaab",
    "commence_time": "2026-02-14T00:30:00Z",
    "home_team": "Gonzaga Bulldogs",
    "away_team": "Saint Mary's Gaels",
    "bookmakers": []
  }
]`

func TestFetchTotals_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/sports/basketball_ncaab/odds/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apiKey"))
		assert.Equal(t, "us", q.Get("regions"))
		assert.Equal(t, "totals", q.Get("markets"))
		assert.Equal(t, "american", q.Get("oddsFormat"))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Requests-Remaining", "482")
		w.Header().Set("X-Requests-Used", "18")
		w.Write([]byte(totalsFixture))
	}))
	defer srv.Close()

	client := oddsapi.NewClient(srv.URL, "test-key", "us", domain.SportNCAAB, 100, 0)
	lines, err := client.FetchTotals(context.Background())

	require.NoError(t, err)
	// el evento sin mercado de totales se omite
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "Butler Bulldogs", line.HomeTeam)
	assert.Equal(t, "Creighton Bluejays", line.AwayTeam)
	assert.InDelta(t, 144.5, line.Line, 0.001)
	// la primera casa con totales gana, no la primera casa
	assert.Equal(t, "draftkings", line.Bookmaker)
	assert.Equal(t, 2026, line.LastUpdate.Year())
}

func TestFetchTotals_NBASportKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/sports/basketball_nba/odds/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := oddsapi.NewClient(srv.URL, "test-key", "us", domain.SportNBA, 100, 0)
	lines, err := client.FetchTotals(context.Background())

	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFetchTotals_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "Invalid API key"}`))
	}))
	defer srv.Close()

	client := oddsapi.NewClient(srv.URL, "bad-key", "us", domain.SportNCAAB, 100, 0)
	_, err := client.FetchTotals(context.Background())
	assert.Error(t, err)
}
