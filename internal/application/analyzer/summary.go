package analyzer

import (
	"sort"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// histogramLabels cubre el rango útil de PPM requerido; todo lo que pase
// de 7 cae en el último bucket.
var histogramLabels = [8]string{
	"0.0-0.9", "1.0-1.9", "2.0-2.9", "3.0-3.9",
	"4.0-4.9", "5.0-5.9", "6.0-6.9", "7.0+",
}

type rollupAcc struct {
	roll   domain.GameRollup
	reqSum float64
	reqN   int
}

// Summarize condensa los polls de una fecha (UTC) en el resumen diario:
// totales, histograma de PPM requerido y un rollup por partido.
func Summarize(date time.Time, polls []domain.PollRecord) domain.DailySummary {
	day := date.UTC().Format("2006-01-02")
	s := domain.DailySummary{Date: day}

	hist := [8]int{}
	games := make(map[string]*rollupAcc)

	for _, p := range polls {
		if p.Timestamp.UTC().Format("2006-01-02") != day {
			continue
		}
		s.Polls++
		if p.Triggered {
			s.TriggeredPolls++
		}
		if r := p.Reading.RequiredPPM; r > 0 {
			idx := int(r)
			if idx > 7 {
				idx = 7
			}
			hist[idx]++
		}

		acc, ok := games[p.GameID]
		if !ok {
			acc = &rollupAcc{roll: domain.GameRollup{
				GameID:  p.GameID,
				Matchup: p.AwayTeam + " @ " + p.HomeTeam,
			}}
			games[p.GameID] = acc
		}
		acc.roll.Polls++
		acc.roll.LastTotal = p.Reading.Total
		if p.Line > 0 {
			acc.roll.Line = p.Line
		}
		if p.Triggered && !acc.roll.Triggered {
			// El primer disparo fija el lado del partido.
			acc.roll.Triggered = true
			acc.roll.Side = p.Side
		}
		if p.Confidence > acc.roll.MaxConfidence {
			acc.roll.MaxConfidence = p.Confidence
		}
		if r := p.Reading.RequiredPPM; p.Line > 0 && r > 0 {
			if acc.reqN == 0 || r < acc.roll.MinRequired {
				acc.roll.MinRequired = r
			}
			if r > acc.roll.MaxRequired {
				acc.roll.MaxRequired = r
			}
			acc.reqSum += r
			acc.reqN++
		}
	}

	for i, n := range hist {
		s.Histogram = append(s.Histogram, domain.HistogramBucket{Label: histogramLabels[i], Count: n})
	}
	for _, acc := range games {
		if acc.reqN > 0 {
			acc.roll.AvgRequired = acc.reqSum / float64(acc.reqN)
		}
		s.PerGame = append(s.PerGame, acc.roll)
	}
	sort.Slice(s.PerGame, func(i, j int) bool {
		return s.PerGame[i].Matchup < s.PerGame[j].Matchup
	})

	s.Games = len(s.PerGame)
	if s.Polls > 0 {
		s.TriggerRate = float64(s.TriggeredPolls) / float64(s.Polls) * 100
	}
	return s
}
