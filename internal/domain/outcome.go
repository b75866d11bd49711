package domain

import (
	"errors"
	"time"
)

// ErrNoLine señala que el partido terminó sin línea de total publicada:
// el over/under no puede resolverse y nunca se adivina un lado.
var ErrNoLine = errors.New("no posted total line")

// OUResult es la resolución del total frente a la línea.
type OUResult string

const (
	OUOver  OUResult = "over"
	OUUnder OUResult = "under"
	OUPush  OUResult = "push"
)

// Matches indica si el resultado O/U coincide con el lado señalado.
func (r OUResult) Matches(side BetSide) bool {
	return string(r) == string(side)
}

// Outcome es el desenlace de la señal: vacío si el partido nunca disparó.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// TriggerState es el estado acumulado de un partido monitoreado: si
// disparó, el lado de la primera señal y los máximos de confianza y
// unidades observados (siempre del mismo poll).
type TriggerState struct {
	Triggered     bool
	Side          BetSide
	MaxConfidence float64
	MaxUnits      float64
	TriggeredAt   time.Time
}

// Observe incorpora un poll al estado: fija lado y hora en la primera
// señal y actualiza el par confianza/unidades cuando la confianza supera
// el máximo previo.
func (t *TriggerState) Observe(d TriggerDecision, confidence, units float64, at time.Time) {
	if d.Triggered && !t.Triggered {
		t.Triggered = true
		t.Side = d.Side
		t.TriggeredAt = at
	}
	if confidence > t.MaxConfidence {
		t.MaxConfidence = confidence
		t.MaxUnits = units
	}
}

// Settlement es la liquidación de un partido terminado.
type Settlement struct {
	OUResult   OUResult
	Outcome    Outcome
	UnitProfit float64
}

// ResolveOutcome liquida un partido terminado contra la línea y el estado
// de disparo. Gana la señal cuyo lado coincide con el resultado O/U; un
// push devuelve las unidades. Sin disparo la liquidación sólo informa el
// O/U. Con línea no positiva devuelve ErrNoLine.
func ResolveOutcome(finalHome, finalAway int, line float64, trig TriggerState) (Settlement, error) {
	if line <= 0 {
		return Settlement{}, ErrNoLine
	}

	total := float64(finalHome + finalAway)
	var ou OUResult
	switch {
	case total > line:
		ou = OUOver
	case total < line:
		ou = OUUnder
	default:
		ou = OUPush
	}

	st := Settlement{OUResult: ou}
	if !trig.Triggered {
		return st, nil
	}

	switch {
	case ou == OUPush:
		st.Outcome = OutcomePush
	case ou.Matches(trig.Side):
		st.Outcome = OutcomeWin
		st.UnitProfit = trig.MaxUnits
	default:
		st.Outcome = OutcomeLoss
		st.UnitProfit = -trig.MaxUnits
	}
	return st, nil
}

// WentToOvertime determina si hubo prórroga. Con el último período
// observado basta compararlo contra los períodos reglamentarios; sin él
// (backfill de partidos no observados) se usa la heurística de puntos del
// total combinado.
func WentToOvertime(lastPeriod, finalTotal int, totalMinutes float64) bool {
	periods, _ := regulationSplit(totalMinutes)
	if lastPeriod > 0 {
		return lastPeriod > periods
	}
	if totalMinutes >= 48 {
		return finalTotal > 240
	}
	return finalTotal > 180
}

// GameResult es el registro final de un partido monitoreado, una fila por
// partido.
type GameResult struct {
	GameID         string
	Date           string // YYYY-MM-DD
	HomeTeam       string
	AwayTeam       string
	FinalHomeScore int
	FinalAwayScore int
	FinalTotal     int
	Line           float64
	OpeningLine    float64
	OUResult       OUResult
	WentToOT       bool
	Triggered      bool
	TriggerSide    BetSide
	MaxConfidence  float64
	MaxUnits       float64
	TriggeredAt    time.Time
	Outcome        Outcome
	UnitProfit     float64
	Notes          string
}
