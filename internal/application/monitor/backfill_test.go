package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backfillPoll(gameID string, ts time.Time, period int, line float64, triggered bool, confidence, units float64) domain.PollRecord {
	p := domain.PollRecord{
		ID:         gameID + ts.Format("150405"),
		Timestamp:  ts,
		GameID:     gameID,
		HomeTeam:   "Butler Bulldogs",
		AwayTeam:   "Creighton Bluejays",
		Period:     period,
		Status:     domain.StatusLive,
		Line:       line,
		Reading:    domain.PaceReading{RequiredPPM: 6.0},
		Triggered:  triggered,
		Confidence: confidence,
		Units:      units,
	}
	if triggered {
		p.Side = domain.SideUnder
	}
	return p
}

func TestBackfill_SettlesPendingGames(t *testing.T) {
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	store := newMemStorage()
	store.polls = []domain.PollRecord{
		backfillPoll("401", at(18, 0), 1, 145, false, 40, 0),
		backfillPoll("401", at(18, 30), 2, 145, true, 80, 1.5),
		backfillPoll("401", at(18, 45), 2, 144.5, true, 87, 2),
		backfillPoll("402", at(19, 0), 2, 150, true, 70, 1),
		backfillPoll("403", at(19, 30), 2, 138, false, 0, 0),
	}
	// 402 ya quedó liquidado en vivo: el backfill no lo toca.
	store.results["402"] = domain.GameResult{GameID: "402", Outcome: domain.OutcomeLoss}

	d := &deps{
		games: &fakeGames{details: map[string]domain.GameDetail{
			"401": {GameID: "401", HomeScore: 70, AwayScore: 66, Completed: true, ClosingTotal: 144.5, OpeningTotal: 147},
			// 403 sin resumen confirmado: queda pendiente.
			"403": {GameID: "403", HomeScore: 60, AwayScore: 55},
		}},
		storage: store,
	}
	e := newTestEngine(Config{}, d)

	rep, err := e.Backfill(context.Background(), at(17, 0), at(21, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Candidates)
	assert.Equal(t, 1, rep.Settled)
	assert.Equal(t, 1, rep.Skipped)

	r, ok := store.results["401"]
	require.True(t, ok)
	assert.Equal(t, "2026-02-14", r.Date)
	assert.Equal(t, 136, r.FinalTotal)
	assert.InDelta(t, 144.5, r.Line, 1e-9)
	assert.InDelta(t, 147, r.OpeningLine, 1e-9)
	assert.Equal(t, domain.OUUnder, r.OUResult)
	assert.True(t, r.Triggered)
	assert.Equal(t, domain.SideUnder, r.TriggerSide)
	assert.Equal(t, at(18, 30), r.TriggeredAt) // primer poll disparado
	assert.InDelta(t, 87, r.MaxConfidence, 1e-9)
	assert.InDelta(t, 2, r.MaxUnits, 1e-9) // unidades del poll de máxima confianza
	assert.Equal(t, domain.OutcomeWin, r.Outcome)
	assert.InDelta(t, 2, r.UnitProfit, 1e-9)
	assert.False(t, r.WentToOT)

	// La fila del 402 sigue intacta.
	assert.Equal(t, domain.OutcomeLoss, store.results["402"].Outcome)
	assert.Equal(t, 1, store.saveResultCalls)
}

func TestBackfill_EmptyRange(t *testing.T) {
	d := &deps{storage: newMemStorage()}
	e := newTestEngine(Config{}, d)

	rep, err := e.Backfill(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Zero(t, rep.Candidates)
	assert.Zero(t, rep.Settled)
	assert.Zero(t, rep.Skipped)
}

func TestBackfill_ContextCancelled(t *testing.T) {
	store := newMemStorage()
	store.polls = []domain.PollRecord{
		backfillPoll("401", time.Date(2026, 2, 14, 18, 0, 0, 0, time.UTC), 2, 145, true, 80, 1),
	}
	d := &deps{storage: store}
	e := newTestEngine(Config{}, d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Backfill(ctx, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, context.Canceled)
}
