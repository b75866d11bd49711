package analyzer

import "github.com/alejandrodnm/pacebot/internal/domain"

// confidenceTiers replica las bandas de unidades del scorer para que el
// reporte responda directamente cómo rinde cada nivel de stake.
var confidenceTiers = []struct {
	name     string
	min, max float64
}{
	{"0-60", 0, 60},
	{"61-75", 61, 75},
	{"76-85", 76, 85},
	{"86-100", 86, 100},
}

// Performance agrega las señales ya liquidadas: sólo cuentan los partidos
// que dispararon y tienen desenlace. El win rate usa todas las apuestas
// como denominador, pushes incluidos.
func Performance(results []domain.GameResult) domain.PerformanceReport {
	var rep domain.PerformanceReport
	tiers := make([]domain.TierStats, len(confidenceTiers))
	for i, t := range confidenceTiers {
		tiers[i] = domain.TierStats{Name: t.name, MinScore: t.min, MaxScore: t.max}
	}

	for _, r := range results {
		if !r.Triggered || r.Outcome == domain.OutcomeNone {
			continue
		}
		rep.Bets++
		rep.TotalUnits += r.MaxUnits
		rep.Profit += r.UnitProfit

		switch r.TriggerSide {
		case domain.SideOver:
			rep.OverBets++
		case domain.SideUnder:
			rep.UnderBets++
		}

		t := &tiers[tierIndex(r.MaxConfidence)]
		t.Bets++
		t.Profit += r.UnitProfit
		switch r.Outcome {
		case domain.OutcomeWin:
			rep.Wins++
			t.Wins++
		case domain.OutcomeLoss:
			rep.Losses++
			t.Losses++
		case domain.OutcomePush:
			rep.Pushes++
			t.Pushes++
		}
	}

	if rep.Bets > 0 {
		rep.WinRate = float64(rep.Wins) / float64(rep.Bets) * 100
	}
	if rep.TotalUnits > 0 {
		rep.ROI = rep.Profit / rep.TotalUnits * 100
	}
	for i := range tiers {
		if tiers[i].Bets > 0 {
			tiers[i].WinRate = float64(tiers[i].Wins) / float64(tiers[i].Bets) * 100
		}
	}
	rep.Tiers = tiers
	return rep
}

func tierIndex(score float64) int {
	switch {
	case score >= 86:
		return 3
	case score >= 76:
		return 2
	case score >= 61:
		return 1
	default:
		return 0
	}
}
