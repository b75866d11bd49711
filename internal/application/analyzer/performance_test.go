package analyzer

import (
	"testing"

	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledResult(gameID string, side domain.BetSide, outcome domain.Outcome, confidence, units, profit float64) domain.GameResult {
	return domain.GameResult{
		GameID:        gameID,
		Date:          "2026-02-14",
		Line:          145,
		Triggered:     true,
		TriggerSide:   side,
		MaxConfidence: confidence,
		MaxUnits:      units,
		Outcome:       outcome,
		UnitProfit:    profit,
	}
}

func TestPerformance_Aggregates(t *testing.T) {
	results := []domain.GameResult{
		settledResult("g1", domain.SideUnder, domain.OutcomeWin, 88, 3.0, 3.0),
		settledResult("g2", domain.SideOver, domain.OutcomeLoss, 70, 1.5, -1.5),
		settledResult("g3", domain.SideUnder, domain.OutcomePush, 80, 2.0, 0),
		settledResult("g4", domain.SideUnder, domain.OutcomeWin, 61, 1.0, 1.0),
		// No disparó: no es apuesta.
		{GameID: "g5", Line: 145, OUResult: domain.OUOver},
		// Disparó pero sigue sin liquidar.
		{GameID: "g6", Line: 145, Triggered: true, TriggerSide: domain.SideUnder, MaxUnits: 1.0},
	}

	rep := Performance(results)

	assert.Equal(t, 4, rep.Bets)
	assert.Equal(t, 2, rep.Wins)
	assert.Equal(t, 1, rep.Losses)
	assert.Equal(t, 1, rep.Pushes)
	// 2 de 4: los pushes cuentan en el denominador.
	assert.InDelta(t, 50.0, rep.WinRate, 1e-9)
	assert.Equal(t, 1, rep.OverBets)
	assert.Equal(t, 3, rep.UnderBets)
	assert.InDelta(t, 7.5, rep.TotalUnits, 1e-9)
	assert.InDelta(t, 2.5, rep.Profit, 1e-9)
	assert.InDelta(t, 100*2.5/7.5, rep.ROI, 1e-9)

	require.Len(t, rep.Tiers, 4)
	byName := map[string]domain.TierStats{}
	for _, tier := range rep.Tiers {
		byName[tier.Name] = tier
	}
	assert.Equal(t, 0, byName["0-60"].Bets)

	tier := byName["61-75"]
	assert.Equal(t, 2, tier.Bets)
	assert.Equal(t, 1, tier.Wins)
	assert.Equal(t, 1, tier.Losses)
	assert.InDelta(t, 50.0, tier.WinRate, 1e-9)
	assert.InDelta(t, -0.5, tier.Profit, 1e-9)

	tier = byName["76-85"]
	assert.Equal(t, 1, tier.Bets)
	assert.Equal(t, 1, tier.Pushes)
	assert.Zero(t, tier.WinRate)

	tier = byName["86-100"]
	assert.Equal(t, 1, tier.Bets)
	assert.InDelta(t, 100.0, tier.WinRate, 1e-9)
	assert.InDelta(t, 3.0, tier.Profit, 1e-9)
}

func TestPerformance_Empty(t *testing.T) {
	rep := Performance(nil)

	assert.Equal(t, 0, rep.Bets)
	assert.Zero(t, rep.WinRate)
	assert.Zero(t, rep.ROI)
	require.Len(t, rep.Tiers, 4)
}

func TestTierIndex(t *testing.T) {
	assert.Equal(t, 0, tierIndex(0))
	assert.Equal(t, 0, tierIndex(60.9))
	assert.Equal(t, 1, tierIndex(61))
	assert.Equal(t, 1, tierIndex(75.9))
	assert.Equal(t, 2, tierIndex(76))
	assert.Equal(t, 3, tierIndex(86))
	assert.Equal(t, 3, tierIndex(100))
}
