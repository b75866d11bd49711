package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pacebot/internal/adapters/storage"
	"github.com/alejandrodnm/pacebot/internal/domain"
)

func makePoll(id, gameID string, ts time.Time, confidence float64) domain.PollRecord {
	return domain.PollRecord{
		ID:           id,
		Timestamp:    ts,
		GameID:       gameID,
		HomeTeam:     "Butler Bulldogs",
		AwayTeam:     "Creighton Bluejays",
		HomeScore:    58,
		AwayScore:    54,
		Period:       2,
		ClockMinutes: 5,
		Status:       domain.StatusLive,
		Line:         145,
		Reading: domain.PaceReading{
			Total:            112,
			MinutesElapsed:   35,
			MinutesRemaining: 5,
			RequiredPPM:      6.6,
			CurrentPPM:       3.2,
			PPMDifference:    -3.4,
			ProjectedFinal:   128,
		},
		Side:       domain.SideUnder,
		Triggered:  true,
		Reasons:    []string{"required_ppm=6.60 > 4.5"},
		Confidence: confidence,
		Units:      2,
		Breakdown: domain.Breakdown{
			Base:       domain.Factor{Points: 50},
			FinalScore: confidence,
		},
	}
}

func makeResult(gameID string, outcome domain.Outcome, profit float64) domain.GameResult {
	return domain.GameResult{
		GameID:         gameID,
		Date:           "2026-02-14",
		HomeTeam:       "Butler Bulldogs",
		AwayTeam:       "Creighton Bluejays",
		FinalHomeScore: 71,
		FinalAwayScore: 66,
		FinalTotal:     137,
		Line:           144.5,
		OUResult:       domain.OUUnder,
		Triggered:      true,
		TriggerSide:    domain.SideUnder,
		MaxConfidence:  87,
		MaxUnits:       2,
		TriggeredAt:    time.Now().UTC().Truncate(time.Second),
		Outcome:        outcome,
		UnitProfit:     profit,
	}
}

func TestSQLiteStorage_SavePollRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, db.SavePoll(ctx, makePoll("p1", "g1", t0, 87)))
	require.NoError(t, db.SavePoll(ctx, makePoll("p2", "g1", t0.Add(time.Minute), 91)))

	polls, err := db.GetPolls(ctx, t0.Add(-time.Minute), t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, polls, 2)

	// orden cronológico
	assert.Equal(t, "p1", polls[0].ID)
	assert.Equal(t, "p2", polls[1].ID)

	p := polls[0]
	assert.Equal(t, t0, p.Timestamp)
	assert.Equal(t, "g1", p.GameID)
	assert.Equal(t, "Butler Bulldogs", p.HomeTeam)
	assert.Equal(t, 58, p.HomeScore)
	assert.Equal(t, 2, p.Period)
	assert.Equal(t, domain.StatusLive, p.Status)
	assert.InDelta(t, 145, p.Line, 0.001)
	assert.Equal(t, 112, p.Reading.Total)
	assert.InDelta(t, 6.6, p.Reading.RequiredPPM, 0.001)
	assert.InDelta(t, -3.4, p.Reading.PPMDifference, 0.001)
	assert.Equal(t, domain.SideUnder, p.Side)
	assert.True(t, p.Triggered)
	assert.Equal(t, []string{"required_ppm=6.60 > 4.5"}, p.Reasons)
	assert.InDelta(t, 87, p.Confidence, 0.001)
	assert.InDelta(t, 50, p.Breakdown.Base.Points, 0.001)
	assert.InDelta(t, 87, p.Breakdown.FinalScore, 0.001)
}

func TestSQLiteStorage_GetPolls_RangeFilter(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, db.SavePoll(ctx, makePoll("old", "g1", now.Add(-2*time.Hour), 60)))
	require.NoError(t, db.SavePoll(ctx, makePoll("new", "g1", now.Add(-time.Minute), 70)))

	polls, err := db.GetPolls(ctx, now.Add(-time.Hour), now)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, "new", polls[0].ID)
}

func TestSQLiteStorage_SaveResult_FirstWriteWins(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	require.NoError(t, db.SaveResult(ctx, makeResult("g1", domain.OutcomeWin, 2)))
	// reejecutar un backfill no reescribe la fila existente
	require.NoError(t, db.SaveResult(ctx, makeResult("g1", domain.OutcomeLoss, -2)))

	results, err := db.GetResults(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "g1", r.GameID)
	assert.Equal(t, "2026-02-14", r.Date)
	assert.Equal(t, domain.OutcomeWin, r.Outcome)
	assert.InDelta(t, 2, r.UnitProfit, 0.001)
	assert.Equal(t, domain.OUUnder, r.OUResult)
	assert.Equal(t, domain.SideUnder, r.TriggerSide)
	assert.False(t, r.TriggeredAt.IsZero())

	has, err := db.HasResult(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = db.HasResult(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSQLiteStorage_ResultWithoutTriggerKeepsNullTriggeredAt(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	r := makeResult("g2", domain.OutcomeNone, 0)
	r.Triggered = false
	r.TriggerSide = domain.SideNone
	r.TriggeredAt = time.Time{}
	require.NoError(t, db.SaveResult(ctx, r))

	results, err := db.GetResults(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Triggered)
	assert.True(t, results[0].TriggeredAt.IsZero())
}

func TestSQLiteStorage_TeamMetricsUpsert(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	m, err := db.GetTeamMetrics(ctx, "Butler")
	require.NoError(t, err)
	assert.Nil(t, m, "sin entrada devuelve nil")

	fetched := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, db.SaveTeamMetrics(ctx, domain.TeamMetrics{
		Team: "Butler", Games: 28, Pace: 65.2, OffEfficiency: 110.4,
		DefEfficiency: 92.1, ThreePRate: 0.28, ThreePPct: 0.33,
		FTRate: 15.2, TORate: 15.3, EFGPct: 48, FetchedAt: fetched,
	}))

	m, err = db.GetTeamMetrics(ctx, "Butler")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 65.2, m.Pace, 0.001)
	assert.InDelta(t, 92.1, m.DefEfficiency, 0.001)
	assert.Equal(t, fetched, m.FetchedAt)

	// upsert: la segunda escritura reemplaza
	require.NoError(t, db.SaveTeamMetrics(ctx, domain.TeamMetrics{
		Team: "Butler", Games: 29, Pace: 66.0, FetchedAt: fetched.Add(time.Hour),
	}))
	m, err = db.GetTeamMetrics(ctx, "Butler")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 29, m.Games)
	assert.InDelta(t, 66.0, m.Pace, 0.001)
}

func TestSQLiteStorage_PruneOlderThan(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, db.SavePoll(ctx, makePoll("old", "g1", now.Add(-48*time.Hour), 60)))
	require.NoError(t, db.SavePoll(ctx, makePoll("new", "g2", now, 70)))
	require.NoError(t, db.PruneOlderThan(ctx, now.Add(-24*time.Hour)))

	polls, err := db.GetPolls(ctx, now.Add(-72*time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, "new", polls[0].ID)
}
