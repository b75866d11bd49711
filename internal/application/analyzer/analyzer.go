package analyzer

// analyzer.go — barrido retrospectivo de umbrales sobre el log de polls.
//
// Para cada umbral candidato T:
// 1. Por partido, busca el primer poll que habría disparado con T,
//    aplicando retroactivamente la regla del lado registrado en el poll.
// 2. Cruza con el resultado final y liquida la apuesta hipotética con
//    las unidades registradas en ese momento, no recalculadas.
// 3. Agrega triggers, win/loss/push, unidades y profit por umbral.

import (
	"context"
	"fmt"
	"math"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// Config delimita el barrido de umbrales.
type Config struct {
	Min       float64
	Max       float64
	Step      float64
	MinSample int // partidos disparados mínimos para recomendar un umbral
}

// DefaultConfig devuelve el barrido estándar: 0.5–10.0 en pasos de 0.1.
func DefaultConfig() Config {
	return Config{Min: 0.5, Max: 10.0, Step: 0.1, MinSample: 10}
}

// Sweep recorre los umbrales candidatos contra el histórico y devuelve un
// bucket por umbral más la recomendación. Cancelable entre iteraciones.
func Sweep(ctx context.Context, cfg Config, polls []domain.PollRecord, results []domain.GameResult) ([]domain.ThresholdBucket, domain.Recommendation, error) {
	resultByGame := make(map[string]domain.GameResult, len(results))
	for _, r := range results {
		if r.Line > 0 {
			resultByGame[r.GameID] = r
		}
	}

	// Solo entran al replay los polls con lado registrado y resultado
	// conocido. GetPolls devuelve orden cronológico, se conserva.
	pollsByGame := make(map[string][]domain.PollRecord)
	for _, p := range polls {
		if p.Side == domain.SideNone {
			continue
		}
		if _, ok := resultByGame[p.GameID]; !ok {
			continue
		}
		pollsByGame[p.GameID] = append(pollsByGame[p.GameID], p)
	}

	var buckets []domain.ThresholdBucket
	for i := 0; ; i++ {
		t := cfg.Min + float64(i)*cfg.Step
		if t > cfg.Max+1e-9 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, domain.Recommendation{}, ctx.Err()
		default:
		}
		buckets = append(buckets, sweepThreshold(math.Round(t*10)/10, pollsByGame, resultByGame))
	}

	return buckets, recommend(cfg, buckets), nil
}

// sweepThreshold liquida las apuestas hipotéticas de un umbral.
func sweepThreshold(t float64, pollsByGame map[string][]domain.PollRecord, resultByGame map[string]domain.GameResult) domain.ThresholdBucket {
	b := domain.ThresholdBucket{Threshold: t}

	var confSum float64
	for gameID, ps := range pollsByGame {
		p, ok := firstTrigger(ps, t)
		if !ok {
			continue
		}
		r := resultByGame[gameID]

		b.Triggers++
		confSum += p.Confidence
		b.TotalUnits += p.Units

		switch {
		case r.OUResult == domain.OUPush:
			b.Pushes++
		case r.OUResult.Matches(p.Side):
			b.Wins++
			b.Profit += p.Units
		default:
			b.Losses++
			b.Profit -= p.Units
		}
	}

	if b.Triggers > 0 {
		b.AvgConfidence = confSum / float64(b.Triggers)
		b.AvgUnits = b.TotalUnits / float64(b.Triggers)
	}
	if decided := b.Wins + b.Losses; decided > 0 {
		b.WinRate = float64(b.Wins) / float64(decided) * 100
	}
	if b.TotalUnits > 0 {
		b.ROI = b.Profit / b.TotalUnits * 100
	}
	return b
}

// firstTrigger devuelve el primer poll del partido que dispararía con el
// umbral dado: la apuesta queda fijada ahí, igual que en producción.
func firstTrigger(ps []domain.PollRecord, t float64) (domain.PollRecord, bool) {
	for _, p := range ps {
		if hypotheticalTrigger(p, t) {
			return p, true
		}
	}
	return domain.PollRecord{}, false
}

func hypotheticalTrigger(p domain.PollRecord, t float64) bool {
	switch p.Side {
	case domain.SideUnder:
		return p.Reading.RequiredPPM > t
	case domain.SideOver:
		return p.Reading.RequiredPPM > 0 && p.Reading.RequiredPPM < t
	default:
		return false
	}
}

// recommend selecciona el mejor ROI con muestra suficiente y, entre los
// umbrales rentables, el mejor win rate. Sin muestra suficiente lo dice
// explícitamente en vez de inventar un óptimo.
func recommend(cfg Config, buckets []domain.ThresholdBucket) domain.Recommendation {
	var rec domain.Recommendation
	maxTriggers := 0

	for i := range buckets {
		b := buckets[i]
		if b.Triggers > maxTriggers {
			maxTriggers = b.Triggers
		}
		if b.Triggers < cfg.MinSample {
			continue
		}
		if rec.BestROI == nil || b.ROI > rec.BestROI.ROI {
			bc := b
			rec.BestROI = &bc
		}
		if b.ROI > 0 && (rec.BestWinRate == nil || b.WinRate > rec.BestWinRate.WinRate) {
			bc := b
			rec.BestWinRate = &bc
		}
	}

	if rec.BestROI == nil {
		rec.Insufficient = true
		rec.Reason = fmt.Sprintf(
			"insufficient data: no threshold reached %d triggered games (max seen %d)",
			cfg.MinSample, maxTriggers,
		)
	}
	return rec
}
