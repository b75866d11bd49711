package analyzer

import (
	"testing"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryPoll(gameID, home, away string, ts time.Time, required float64, total int, line, confidence float64, triggered bool) domain.PollRecord {
	p := domain.PollRecord{
		Timestamp:  ts,
		GameID:     gameID,
		HomeTeam:   home,
		AwayTeam:   away,
		Line:       line,
		Reading:    domain.PaceReading{Total: total, RequiredPPM: required},
		Confidence: confidence,
		Triggered:  triggered,
	}
	if triggered {
		p.Side = domain.SideUnder
	}
	return p
}

func TestSummarize_DayRollup(t *testing.T) {
	day := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return time.Date(2026, 2, 14, h, m, 0, 0, time.UTC)
	}

	polls := []domain.PollRecord{
		summaryPoll("espn-1", "Butler", "Creighton", at(18, 0), 4.2, 60, 145, 55, false),
		summaryPoll("espn-1", "Butler", "Creighton", at(18, 5), 5.1, 74, 145, 72, true),
		summaryPoll("espn-1", "Butler", "Creighton", at(18, 10), 6.0, 90, 144.5, 81, true),
		summaryPoll("espn-2", "Kansas", "Duke", at(19, 0), 0, 30, 0, 0, false),
		// Madrugada UTC del día siguiente: fuera del resumen.
		summaryPoll("espn-3", "UCLA", "Arizona", time.Date(2026, 2, 15, 1, 0, 0, 0, time.UTC), 5.0, 80, 140, 60, true),
	}

	s := Summarize(day, polls)

	assert.Equal(t, "2026-02-14", s.Date)
	assert.Equal(t, 4, s.Polls)
	assert.Equal(t, 2, s.TriggeredPolls)
	assert.InDelta(t, 50.0, s.TriggerRate, 1e-9)
	assert.Equal(t, 2, s.Games)

	require.Len(t, s.Histogram, 8)
	counts := map[string]int{}
	for _, h := range s.Histogram {
		counts[h.Label] = h.Count
	}
	assert.Equal(t, 1, counts["4.0-4.9"])
	assert.Equal(t, 1, counts["5.0-5.9"])
	assert.Equal(t, 1, counts["6.0-6.9"])
	assert.Equal(t, 0, counts["0.0-0.9"]) // required 0 no entra al histograma

	require.Len(t, s.PerGame, 2)
	g := s.PerGame[0] // orden alfabético por matchup
	assert.Equal(t, "Creighton @ Butler", g.Matchup)
	assert.Equal(t, 3, g.Polls)
	assert.True(t, g.Triggered)
	assert.Equal(t, domain.SideUnder, g.Side)
	assert.InDelta(t, 144.5, g.Line, 1e-9) // última línea publicada
	assert.Equal(t, 90, g.LastTotal)
	assert.InDelta(t, 4.2, g.MinRequired, 1e-9)
	assert.InDelta(t, 6.0, g.MaxRequired, 1e-9)
	assert.InDelta(t, 5.1, g.AvgRequired, 1e-9)
	assert.InDelta(t, 81, g.MaxConfidence, 1e-9)

	g = s.PerGame[1]
	assert.Equal(t, "Duke @ Kansas", g.Matchup)
	assert.False(t, g.Triggered)
	assert.Zero(t, g.Line)
	assert.Zero(t, g.AvgRequired)
}

func TestSummarize_HighRequiredFallsInLastBucket(t *testing.T) {
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	polls := []domain.PollRecord{
		summaryPoll("g1", "A", "B", day.Add(18*time.Hour), 7.2, 80, 145, 60, false),
		summaryPoll("g1", "A", "B", day.Add(19*time.Hour), 12.0, 95, 145, 70, false),
	}

	s := Summarize(day, polls)

	require.Len(t, s.Histogram, 8)
	assert.Equal(t, "7.0+", s.Histogram[7].Label)
	assert.Equal(t, 2, s.Histogram[7].Count)
}

func TestSummarize_EmptyDay(t *testing.T) {
	s := Summarize(time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, 0, s.Polls)
	assert.Zero(t, s.TriggerRate)
	assert.Equal(t, 0, s.Games)
	assert.Len(t, s.Histogram, 8)
	assert.Empty(t, s.PerGame)
}
