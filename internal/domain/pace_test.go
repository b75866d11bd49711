package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ncaaSnapshot() GameSnapshot {
	return GameSnapshot{
		GameID:       "401745001",
		HomeTeam:     "Butler Bulldogs",
		AwayTeam:     "Creighton Bluejays",
		HomeScore:    58,
		AwayScore:    54,
		Period:       2,
		ClockMinutes: 5,
		ClockSeconds: 0,
		PostedTotal:  145,
		TotalMinutes: 40,
		Status:       StatusLive,
	}
}

func TestComputeReading_SecondHalfScenario(t *testing.T) {
	r := ComputeReading(ncaaSnapshot())

	// total = 112, remaining = 5:00 del último período
	// elapsed = 40 - 5 = 35
	// required = (145-112)/5 = 6.6
	// current = 112/35 = 3.2
	assert.Equal(t, 112, r.Total)
	assert.InDelta(t, 5.0, r.MinutesRemaining, 0.001)
	assert.InDelta(t, 35.0, r.MinutesElapsed, 0.001)
	assert.InDelta(t, 6.6, r.RequiredPPM, 0.001)
	assert.InDelta(t, 3.2, r.CurrentPPM, 0.001)
	assert.InDelta(t, -3.4, r.PPMDifference, 0.001)
	// proyección sin mezcla: 112 + 3.2×5 = 128
	assert.InDelta(t, 128.0, r.ProjectedFinal, 0.001)
}

func TestComputeReading_PregameNoDivideError(t *testing.T) {
	s := ncaaSnapshot()
	s.HomeScore, s.AwayScore = 0, 0
	s.Period = 0
	s.ClockMinutes, s.ClockSeconds = 0, 0
	s.Status = StatusPre

	r := ComputeReading(s)
	assert.Equal(t, 0.0, r.CurrentPPM)
	assert.InDelta(t, 40.0, r.MinutesRemaining, 0.001)
	assert.Equal(t, 0.0, r.MinutesElapsed)
	// required = 145/40 = 3.625
	assert.InDelta(t, 3.625, r.RequiredPPM, 0.001)
	// elapsed 0 → mezcla total con la línea
	assert.InDelta(t, 145.0, r.ProjectedFinal, 0.001)
	assert.False(t, math.IsNaN(r.PPMDifference))
}

func TestComputeReading_FirstHalfAddsSecondHalf(t *testing.T) {
	s := ncaaSnapshot()
	s.Period = 1
	s.ClockMinutes, s.ClockSeconds = 12, 30
	s.HomeScore, s.AwayScore = 20, 18

	r := ComputeReading(s)
	// remaining = 12.5 + 20 = 32.5, elapsed = 7.5
	assert.InDelta(t, 32.5, r.MinutesRemaining, 0.001)
	assert.InDelta(t, 7.5, r.MinutesElapsed, 0.001)
}

func TestComputeReading_NBAPeriodClock(t *testing.T) {
	s := GameSnapshot{
		HomeScore: 61, AwayScore: 58,
		Period: 3, ClockMinutes: 8, ClockSeconds: 0,
		PostedTotal: 224.5, TotalMinutes: 48,
	}
	r := ComputeReading(s)
	// remaining = 8 + 12 = 20, elapsed = 28
	assert.InDelta(t, 20.0, r.MinutesRemaining, 0.001)
	assert.InDelta(t, 28.0, r.MinutesElapsed, 0.001)

	s.Period, s.ClockMinutes = 4, 2
	r = ComputeReading(s)
	assert.InDelta(t, 2.0, r.MinutesRemaining, 0.001)
	assert.InDelta(t, 46.0, r.MinutesElapsed, 0.001)
}

func TestComputeReading_RegulationConservation(t *testing.T) {
	for period := 1; period <= 2; period++ {
		for clock := 0; clock <= 20; clock += 5 {
			s := ncaaSnapshot()
			s.Period = period
			s.ClockMinutes = clock
			r := ComputeReading(s)
			assert.InDelta(t, 40.0, r.MinutesElapsed+r.MinutesRemaining, 0.001)
		}
	}
}

func TestComputeReading_LineSurpassedRequiredZero(t *testing.T) {
	s := ncaaSnapshot()
	s.HomeScore, s.AwayScore = 80, 70 // total 150 > 145

	r := ComputeReading(s)
	assert.Equal(t, 0.0, r.RequiredPPM, "required nunca negativo")
	assert.Greater(t, r.PPMDifference, 0.0)
}

func TestComputeReading_FinalBuzzerZeroRemaining(t *testing.T) {
	s := ncaaSnapshot()
	s.ClockMinutes, s.ClockSeconds = 0, 0
	s.HomeScore, s.AwayScore = 70, 68

	r := ComputeReading(s)
	assert.Equal(t, 0.0, r.MinutesRemaining)
	assert.Equal(t, 0.0, r.RequiredPPM)
	// current = 138/40 = 3.45
	assert.InDelta(t, 3.45, r.CurrentPPM, 0.001)
	assert.False(t, math.IsInf(r.RequiredPPM, 0))
}

func TestComputeReading_OvertimeExtendsElapsed(t *testing.T) {
	s := ncaaSnapshot()
	s.Period = 3 // primera prórroga NCAA
	s.ClockMinutes, s.ClockSeconds = 3, 0
	s.HomeScore, s.AwayScore = 72, 72

	r := ComputeReading(s)
	// duración = 40 + 5, remaining = 3 → elapsed = 42
	assert.InDelta(t, 3.0, r.MinutesRemaining, 0.001)
	assert.InDelta(t, 42.0, r.MinutesElapsed, 0.001)
	// current usa los minutos reales jugados: 144/42 ≈ 3.43
	assert.InDelta(t, 144.0/42.0, r.CurrentPPM, 0.001)
}

func TestComputeReading_EarlyGameBlendsWithLine(t *testing.T) {
	s := ncaaSnapshot()
	s.Period = 1
	s.ClockMinutes, s.ClockSeconds = 18, 0
	s.HomeScore, s.AwayScore = 5, 4

	r := ComputeReading(s)
	// elapsed = 2, current = 9/2 = 4.5
	// extrapolación cruda: 9 + 4.5×38 = 180
	// w = 1 - 2/5 = 0.6 → 0.6×145 + 0.4×180 = 159
	assert.InDelta(t, 2.0, r.MinutesElapsed, 0.001)
	assert.InDelta(t, 159.0, r.ProjectedFinal, 0.001)
}

func TestSport_TotalMinutes(t *testing.T) {
	assert.Equal(t, 40.0, SportNCAAB.TotalMinutes())
	assert.Equal(t, 48.0, SportNBA.TotalMinutes())
}

func TestGameSnapshot_Matchup(t *testing.T) {
	s := ncaaSnapshot()
	assert.Equal(t, "Creighton Bluejays @ Butler Bulldogs", s.Matchup())
	assert.Equal(t, 112, s.Total())
}
