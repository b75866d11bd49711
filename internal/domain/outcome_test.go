package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func underTrigger(units float64) TriggerState {
	return TriggerState{
		Triggered:     true,
		Side:          SideUnder,
		MaxConfidence: 82,
		MaxUnits:      units,
		TriggeredAt:   time.Date(2026, 2, 14, 19, 42, 0, 0, time.UTC),
	}
}

func TestResolveOutcome_UnderWin(t *testing.T) {
	st, err := ResolveOutcome(60, 55, 145, underTrigger(2))
	require.NoError(t, err)

	assert.Equal(t, OUUnder, st.OUResult)
	assert.Equal(t, OutcomeWin, st.Outcome)
	assert.Equal(t, 2.0, st.UnitProfit)
}

func TestResolveOutcome_UnderLoss(t *testing.T) {
	st, err := ResolveOutcome(78, 72, 145, underTrigger(2))
	require.NoError(t, err)

	assert.Equal(t, OUOver, st.OUResult)
	assert.Equal(t, OutcomeLoss, st.Outcome)
	assert.Equal(t, -2.0, st.UnitProfit)
}

func TestResolveOutcome_OverWin(t *testing.T) {
	trig := underTrigger(1)
	trig.Side = SideOver

	st, err := ResolveOutcome(78, 72, 145, trig)
	require.NoError(t, err)

	assert.Equal(t, OUOver, st.OUResult)
	assert.Equal(t, OutcomeWin, st.Outcome)
	assert.Equal(t, 1.0, st.UnitProfit)
}

func TestResolveOutcome_PushReturnsStake(t *testing.T) {
	st, err := ResolveOutcome(73, 72, 145, underTrigger(3))
	require.NoError(t, err)

	assert.Equal(t, OUPush, st.OUResult)
	assert.Equal(t, OutcomePush, st.Outcome)
	assert.Equal(t, 0.0, st.UnitProfit)
}

func TestResolveOutcome_NoTriggerInformsOUOnly(t *testing.T) {
	st, err := ResolveOutcome(80, 70, 145, TriggerState{})
	require.NoError(t, err)

	assert.Equal(t, OUOver, st.OUResult)
	assert.Equal(t, OutcomeNone, st.Outcome)
	assert.Equal(t, 0.0, st.UnitProfit)
}

func TestResolveOutcome_MissingLine(t *testing.T) {
	_, err := ResolveOutcome(80, 70, 0, underTrigger(2))
	assert.ErrorIs(t, err, ErrNoLine)

	_, err = ResolveOutcome(80, 70, -1, TriggerState{})
	assert.ErrorIs(t, err, ErrNoLine)
}

func TestResolveOutcome_RoundTrip(t *testing.T) {
	// total > línea → over; == → push; < → under
	for _, c := range []struct {
		home, away int
		want       OUResult
	}{
		{80, 70, OUOver},
		{73, 72, OUPush},
		{60, 55, OUUnder},
	} {
		st, err := ResolveOutcome(c.home, c.away, 145, TriggerState{})
		require.NoError(t, err)
		assert.Equal(t, c.want, st.OUResult)
	}
}

// --- WentToOvertime ---

func TestWentToOvertime_ObservedPeriod(t *testing.T) {
	assert.True(t, WentToOvertime(3, 150, 40), "período 3 en NCAA es prórroga")
	assert.False(t, WentToOvertime(2, 190, 40), "con período observado no aplica heurística")
	assert.True(t, WentToOvertime(5, 250, 48))
	assert.False(t, WentToOvertime(4, 250, 48))
}

func TestWentToOvertime_PointsHeuristic(t *testing.T) {
	// sin período observado (backfill) decide por puntos
	assert.True(t, WentToOvertime(0, 185, 40))
	assert.False(t, WentToOvertime(0, 175, 40))
	assert.True(t, WentToOvertime(0, 245, 48))
	assert.False(t, WentToOvertime(0, 235, 48))
}

// --- TriggerState ---

func TestTriggerState_Observe_FirstTriggerFixesSide(t *testing.T) {
	var st TriggerState
	t0 := time.Date(2026, 2, 14, 19, 30, 0, 0, time.UTC)

	st.Observe(TriggerDecision{}, 35, 0, t0)
	assert.False(t, st.Triggered)
	assert.Equal(t, 35.0, st.MaxConfidence)

	st.Observe(TriggerDecision{Triggered: true, Side: SideUnder}, 70, 1, t0.Add(time.Minute))
	assert.True(t, st.Triggered)
	assert.Equal(t, SideUnder, st.Side)
	assert.Equal(t, t0.Add(time.Minute), st.TriggeredAt)

	// una señal posterior no cambia lado ni hora
	st.Observe(TriggerDecision{Triggered: true, Side: SideOver}, 60, 0.5, t0.Add(2*time.Minute))
	assert.Equal(t, SideUnder, st.Side)
	assert.Equal(t, t0.Add(time.Minute), st.TriggeredAt)
}

func TestTriggerState_Observe_MaxPairMovesTogether(t *testing.T) {
	var st TriggerState
	now := time.Now()

	st.Observe(TriggerDecision{Triggered: true, Side: SideUnder}, 70, 1, now)
	st.Observe(TriggerDecision{Triggered: true, Side: SideUnder}, 80, 2, now)
	st.Observe(TriggerDecision{Triggered: true, Side: SideUnder}, 75, 3, now)

	// el par confianza/unidades viene siempre del mismo poll
	assert.Equal(t, 80.0, st.MaxConfidence)
	assert.Equal(t, 2.0, st.MaxUnits)
}
