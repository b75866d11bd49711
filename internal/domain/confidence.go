package domain

import (
	"fmt"
	"sync"
)

// baseScore es el punto de partida neutral de toda puntuación.
const baseScore = 50.0

// Weights son los parámetros configurables de los factores de confianza.
// Los umbrales se comparan contra métricas de temporada; los bonos y
// penalizaciones llevan su signo (una penalización es negativa).
type Weights struct {
	SlowPaceThreshold      float64 `yaml:"slow_pace_threshold"`
	SlowPaceBonus          float64 `yaml:"slow_pace_bonus"`
	FastPaceThreshold      float64 `yaml:"fast_pace_threshold"`
	FastPacePenalty        float64 `yaml:"fast_pace_penalty"`
	MediumPaceBonus        float64 `yaml:"medium_pace_bonus"`
	LowThreePRateThreshold float64 `yaml:"low_3p_rate_threshold"`
	LowThreePBonus         float64 `yaml:"low_3p_bonus"`
	HighThreePPctThreshold float64 `yaml:"high_3p_pct_threshold"`
	HighThreePPenalty      float64 `yaml:"high_3p_penalty"`
	LowFTRateThreshold     float64 `yaml:"low_ft_rate_threshold"`
	LowFTBonus             float64 `yaml:"low_ft_bonus"`
	HighFTRateThreshold    float64 `yaml:"high_ft_rate_threshold"`
	HighFTPenalty          float64 `yaml:"high_ft_penalty"`
	HighTORateThreshold    float64 `yaml:"high_to_rate_threshold"`
	HighTOBonus            float64 `yaml:"high_to_bonus"`
	StrongDefenseThreshold float64 `yaml:"strong_defense_threshold"`
	StrongDefenseBonus     float64 `yaml:"strong_defense_bonus"`
	BothSlowBonus          float64 `yaml:"both_slow_bonus"`
	BothStrongDefenseBonus float64 `yaml:"both_strong_defense_bonus"`
	PaceMismatchPenalty    float64 `yaml:"pace_mismatch_penalty"`
}

// DefaultWeights devuelve los pesos de operación por defecto.
func DefaultWeights() Weights {
	return Weights{
		SlowPaceThreshold:      67,
		SlowPaceBonus:          12,
		FastPaceThreshold:      72,
		FastPacePenalty:        -10,
		MediumPaceBonus:        5,
		LowThreePRateThreshold: 0.30,
		LowThreePBonus:         8,
		HighThreePPctThreshold: 0.38,
		HighThreePPenalty:      -5,
		LowFTRateThreshold:     18,
		LowFTBonus:             6,
		HighFTRateThreshold:    24,
		HighFTPenalty:          -6,
		HighTORateThreshold:    14,
		HighTOBonus:            5,
		StrongDefenseThreshold: 95,
		StrongDefenseBonus:     10,
		BothSlowBonus:          15,
		BothStrongDefenseBonus: 10,
		PaceMismatchPenalty:    -5,
	}
}

// SeverityBand asigna puntos al cruzar un corte de ritmo requerido. El
// sentido de la comparación depende del lado: under evalúa required >
// Cutoff, over evalúa required < Cutoff. Primera banda que cumple gana.
type SeverityBand struct {
	Cutoff float64 `yaml:"cutoff"`
	Points float64 `yaml:"points"`
}

// SeverityProfile es una revisión versionada de las magnitudes de severidad
// PPM. UnderBands va en cortes descendentes y UnderFloor aplica cuando
// ninguna banda cumple; OverBands va en cortes ascendentes; OverRatioBands
// premia current/required alto (sólo con ambos ritmos positivos).
type SeverityProfile struct {
	Name           string         `yaml:"name"`
	UnderBands     []SeverityBand `yaml:"under_bands"`
	UnderFloor     float64        `yaml:"under_floor"`
	OverBands      []SeverityBand `yaml:"over_bands"`
	OverRatioBands []SeverityBand `yaml:"over_ratio_bands"`
}

// BalancedSeverity es la revisión canónica: escalera simétrica alrededor
// del umbral under de 4.5 PPM.
func BalancedSeverity() SeverityProfile {
	return SeverityProfile{
		Name: "balanced",
		UnderBands: []SeverityBand{
			{Cutoff: 6.0, Points: 12},
			{Cutoff: 5.5, Points: 8},
			{Cutoff: 5.0, Points: 4},
			{Cutoff: 4.5, Points: 0},
			{Cutoff: 3.5, Points: -4},
			{Cutoff: 2.5, Points: -8},
			{Cutoff: 2.0, Points: -10},
		},
		UnderFloor: -12,
		OverBands: []SeverityBand{
			{Cutoff: 0.5, Points: 15},
			{Cutoff: 1.0, Points: 10},
			{Cutoff: 1.5, Points: 5},
		},
		OverRatioBands: []SeverityBand{
			{Cutoff: 2.0, Points: 10},
			{Cutoff: 1.5, Points: 5},
		},
	}
}

// LegacySeverity reproduce la revisión original: picos más altos arriba del
// umbral y un único escalón negativo por debajo.
func LegacySeverity() SeverityProfile {
	return SeverityProfile{
		Name: "legacy",
		UnderBands: []SeverityBand{
			{Cutoff: 6.0, Points: 15},
			{Cutoff: 5.5, Points: 10},
			{Cutoff: 5.0, Points: 5},
			{Cutoff: 4.5, Points: 0},
		},
		UnderFloor: -10,
		OverBands: []SeverityBand{
			{Cutoff: 0.5, Points: 15},
			{Cutoff: 1.0, Points: 10},
			{Cutoff: 1.5, Points: 5},
		},
		OverRatioBands: []SeverityBand{
			{Cutoff: 2.0, Points: 10},
			{Cutoff: 1.5, Points: 5},
		},
	}
}

// SeverityProfileByName resuelve una revisión por nombre. El nombre vacío
// devuelve la revisión canónica.
func SeverityProfileByName(name string) (SeverityProfile, bool) {
	switch name {
	case "", "balanced":
		return BalancedSeverity(), true
	case "legacy":
		return LegacySeverity(), true
	}
	return SeverityProfile{}, false
}

// UnitBand asigna unidades a un rango de confianza [Min, Max]. Una
// puntuación fuera de toda banda vale 0 unidades.
type UnitBand struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Units float64 `yaml:"units"`
}

// DefaultUnitBands devuelve las bandas de unidades por defecto.
func DefaultUnitBands() []UnitBand {
	return []UnitBand{
		{Min: 0, Max: 40, Units: 0},
		{Min: 41, Max: 60, Units: 0.5},
		{Min: 61, Max: 75, Units: 1},
		{Min: 76, Max: 85, Units: 2},
		{Min: 86, Max: 100, Units: 3},
	}
}

// UnitsForScore devuelve las unidades de la primera banda que contiene la
// puntuación, o 0 si ninguna la contiene.
func UnitsForScore(score float64, bands []UnitBand) float64 {
	for _, b := range bands {
		if score >= b.Min && score <= b.Max {
			return b.Units
		}
	}
	return 0
}

// Factor es la contribución auditable de un factor: puntos ya con signo
// efectivo (polaridad aplicada) y el detalle de cada condición que aportó.
type Factor struct {
	Points  float64  `json:"points"`
	Details []string `json:"details,omitempty"`
}

// Breakdown es el desglose completo de una puntuación. Claves fijas: todo
// factor evaluado aparece aunque aporte 0; los factores en vivo son nil
// cuando ningún equipo tenía estadísticas del partido.
type Breakdown struct {
	Base           float64 `json:"base"`
	Side           BetSide `json:"bet_side"`
	Pace           Factor  `json:"pace"`
	ThreePoint     Factor  `json:"three_point"`
	FreeThrow      Factor  `json:"free_throw"`
	Turnover       Factor  `json:"turnover"`
	Defense        Factor  `json:"defense"`
	Fouls          Factor  `json:"fouls"`
	Matchup        Factor  `json:"matchup"`
	PPMSeverity    Factor  `json:"ppm_severity"`
	LiveShooting   *Factor `json:"live_shooting,omitempty"`
	LiveFreeThrows *Factor `json:"live_free_throws,omitempty"`
	LiveTurnovers  *Factor `json:"live_turnovers,omitempty"`
	LiveRebounding *Factor `json:"live_rebounding,omitempty"`
	RawScore       float64 `json:"raw_score"`
	FinalScore     float64 `json:"final_score"`
	Error          string  `json:"error,omitempty"`
}

// ConfidenceResult es la salida de una puntuación: confianza final en
// [0,100], unidades recomendadas y el desglose auditable.
type ConfidenceResult struct {
	Confidence float64
	Units      float64
	Breakdown  Breakdown
}

// Scorer puntúa la confianza de una señal combinando métricas de temporada,
// estadísticas en vivo y la severidad del ritmo requerido. Los pesos, el
// perfil de severidad y las bandas de unidades pueden actualizarse en
// caliente; cada llamada a Score toma una instantánea al inicio, así una
// actualización concurrente nunca parte un cálculo.
type Scorer struct {
	mu       sync.RWMutex
	weights  Weights
	severity SeverityProfile
	bands    []UnitBand
}

// NewScorer crea un Scorer. Los parámetros en cero se sustituyen por los
// valores por defecto.
func NewScorer(w Weights, p SeverityProfile, bands []UnitBand) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if len(p.UnderBands) == 0 && len(p.OverBands) == 0 {
		p = BalancedSeverity()
	}
	if len(bands) == 0 {
		bands = DefaultUnitBands()
	}
	return &Scorer{weights: w, severity: p, bands: bands}
}

// UpdateWeights sustituye los pesos completos. Efectivo para la siguiente
// llamada a Score.
func (s *Scorer) UpdateWeights(w Weights) {
	s.mu.Lock()
	s.weights = w
	s.mu.Unlock()
}

// Weights devuelve los pesos vigentes.
func (s *Scorer) Weights() Weights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// SetSeverity sustituye el perfil de severidad vigente.
func (s *Scorer) SetSeverity(p SeverityProfile) {
	s.mu.Lock()
	s.severity = p
	s.mu.Unlock()
}

// SetUnitBands sustituye las bandas de unidades vigentes.
func (s *Scorer) SetUnitBands(bands []UnitBand) {
	s.mu.Lock()
	s.bands = bands
	s.mu.Unlock()
}

// Score puntúa una señal para el lado dado. Con side vacío puntúa desde la
// perspectiva under (polaridad +1) sin aportar severidad, que es un factor
// de lado. Si falta cualquiera de las métricas devuelve el resultado
// degradado {0, 0, Breakdown con Error} sin evaluar factores; nunca error
// ni pánico.
//
// Polaridad: cada condición favorece al under; para el over la contribución
// se invierte (multiplicador -1). La severidad PPM ya es específica del
// lado y no se invierte.
func (s *Scorer) Score(home, away *TeamMetrics, r PaceReading, side BetSide) ConfidenceResult {
	s.mu.RLock()
	w, sev, bands := s.weights, s.severity, s.bands
	s.mu.RUnlock()

	bd := Breakdown{Base: baseScore, Side: side}
	if home == nil || away == nil {
		bd.Error = "missing team metrics"
		return ConfidenceResult{Breakdown: bd}
	}

	mult := 1.0
	if side == SideOver {
		mult = -1
	}

	bd.Pace = paceFactor(w, home, away, mult)
	bd.ThreePoint = threePointFactor(w, home, away, mult)
	bd.FreeThrow = freeThrowFactor(w, home, away, mult)
	bd.Turnover = turnoverFactor(w, home, away, mult)
	bd.Defense = defenseFactor(w, home, away, mult)
	bd.Fouls = foulsFactor(home, away, mult)
	bd.Matchup = matchupFactor(w, home, away, mult)
	bd.PPMSeverity = severityFactor(sev, side, r)

	score := bd.Base + bd.Pace.Points + bd.ThreePoint.Points +
		bd.FreeThrow.Points + bd.Turnover.Points + bd.Defense.Points +
		bd.Fouls.Points + bd.Matchup.Points + bd.PPMSeverity.Points

	if home.Live != nil || away.Live != nil {
		sh := liveShootingFactor(home, away, mult)
		ft := liveFreeThrowFactor(home, away, mult)
		to := liveTurnoverFactor(home, away, mult)
		rb := liveReboundingFactor(home, away, mult)
		bd.LiveShooting = &sh
		bd.LiveFreeThrows = &ft
		bd.LiveTurnovers = &to
		bd.LiveRebounding = &rb
		score += sh.Points + ft.Points + to.Points + rb.Points
	}

	bd.RawScore = score
	final := score
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	bd.FinalScore = final

	return ConfidenceResult{
		Confidence: final,
		Units:      UnitsForScore(final, bands),
		Breakdown:  bd,
	}
}

// paceFactor puntúa el ritmo de temporada de cada equipo: lento suma,
// rápido resta, intermedio aporta un bono menor.
func paceFactor(w Weights, home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	for _, t := range []struct {
		label string
		m     *TeamMetrics
	}{{"home", home}, {"away", away}} {
		var pts float64
		var desc string
		switch {
		case t.m.Pace < w.SlowPaceThreshold:
			pts, desc = w.SlowPaceBonus*mult, "slow pace"
		case t.m.Pace > w.FastPaceThreshold:
			pts, desc = w.FastPacePenalty*mult, "fast pace"
		default:
			pts, desc = w.MediumPaceBonus*mult, "medium pace"
		}
		f.Points += pts
		f.Details = append(f.Details, fmt.Sprintf("%s %s (%.1f): %+g", t.label, desc, t.m.Pace, pts))
	}
	return f
}

// threePointFactor puntúa la dependencia del triple: poco volumen de
// triples favorece al under, alta efectividad lo amenaza. pct en escala
// 0-1 o 0-100; se normaliza.
func threePointFactor(w Weights, home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	for _, t := range []struct {
		label string
		m     *TeamMetrics
	}{{"home", home}, {"away", away}} {
		pct := t.m.ThreePPct
		if pct > 1 {
			pct /= 100
		}
		if t.m.ThreePRate > 0 && t.m.ThreePRate < w.LowThreePRateThreshold {
			pts := w.LowThreePBonus * mult
			f.Points += pts
			f.Details = append(f.Details, fmt.Sprintf("%s low 3P rate (%.1f%%): %+g", t.label, t.m.ThreePRate*100, pts))
		}
		if pct > w.HighThreePPctThreshold {
			pts := w.HighThreePPenalty * mult
			f.Points += pts
			f.Details = append(f.Details, fmt.Sprintf("%s high 3P%% (%.1f%%): %+g", t.label, pct*100, pts))
		}
	}
	return f
}

// freeThrowFactor puntúa el volumen de tiros libres por partido.
func freeThrowFactor(w Weights, home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	for _, t := range []struct {
		label string
		m     *TeamMetrics
	}{{"home", home}, {"away", away}} {
		if t.m.FTRate <= 0 {
			continue
		}
		if t.m.FTRate < w.LowFTRateThreshold {
			pts := w.LowFTBonus * mult
			f.Points += pts
			f.Details = append(f.Details, fmt.Sprintf("%s low FT rate (%.1f): %+g", t.label, t.m.FTRate, pts))
		} else if t.m.FTRate > w.HighFTRateThreshold {
			pts := w.HighFTPenalty * mult
			f.Points += pts
			f.Details = append(f.Details, fmt.Sprintf("%s high FT rate (%.1f): %+g", t.label, t.m.FTRate, pts))
		}
	}
	return f
}

// turnoverFactor puntúa equipos con muchas pérdidas por partido.
func turnoverFactor(w Weights, home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	for _, t := range []struct {
		label string
		m     *TeamMetrics
	}{{"home", home}, {"away", away}} {
		if t.m.TORate > w.HighTORateThreshold {
			pts := w.HighTOBonus * mult
			f.Points += pts
			f.Details = append(f.Details, fmt.Sprintf("%s high TO rate (%.1f): %+g", t.label, t.m.TORate, pts))
		}
	}
	return f
}

// defenseFactor puntúa defensas fuertes (pocos puntos por 100 posesiones).
func defenseFactor(w Weights, home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	for _, t := range []struct {
		label string
		m     *TeamMetrics
	}{{"home", home}, {"away", away}} {
		if t.m.DefEfficiency > 0 && t.m.DefEfficiency < w.StrongDefenseThreshold {
			pts := w.StrongDefenseBonus * mult
			f.Points += pts
			f.Details = append(f.Details, fmt.Sprintf("%s strong defense (%.1f): %+g", t.label, t.m.DefEfficiency, pts))
		}
	}
	return f
}

// foulsFactor puntúa el total combinado de faltas en vivo. Sin
// estadísticas en vivo de ambos lados el factor es neutral.
func foulsFactor(home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	if home.Live == nil || away.Live == nil {
		f.Details = append(f.Details, "no foul data")
		return f
	}
	total := home.Live.Fouls + away.Live.Fouls
	var pts float64
	switch {
	case total > 20:
		pts = 8 * mult
	case total > 15:
		pts = 5 * mult
	case total < 8:
		pts = -3 * mult
	default:
		return f
	}
	f.Points = pts
	f.Details = append(f.Details, fmt.Sprintf("combined fouls (%d): %+g", total, pts))
	return f
}

// matchupFactor puntúa la interacción de estilos: dos equipos lentos o dos
// defensas fuertes refuerzan el under, un choque lento contra rápido lo
// debilita. Las condiciones son acumulativas.
func matchupFactor(w Weights, home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	if home.Pace < w.SlowPaceThreshold && away.Pace < w.SlowPaceThreshold {
		pts := w.BothSlowBonus * mult
		f.Points += pts
		f.Details = append(f.Details, fmt.Sprintf("both teams slow: %+g", pts))
	}
	if home.DefEfficiency > 0 && home.DefEfficiency < w.StrongDefenseThreshold &&
		away.DefEfficiency > 0 && away.DefEfficiency < w.StrongDefenseThreshold {
		pts := w.BothStrongDefenseBonus * mult
		f.Points += pts
		f.Details = append(f.Details, fmt.Sprintf("both defenses strong: %+g", pts))
	}
	if (home.Pace < w.SlowPaceThreshold && away.Pace > w.FastPaceThreshold) ||
		(away.Pace < w.SlowPaceThreshold && home.Pace > w.FastPaceThreshold) {
		pts := w.PaceMismatchPenalty * mult
		f.Points += pts
		f.Details = append(f.Details, fmt.Sprintf("pace mismatch: %+g", pts))
	}
	return f
}

// severityFactor puntúa cuán sostenible es el ritmo requerido para el lado
// señalado. Es el único factor específico del lado: no se invierte y con
// lado indeterminado no aporta.
func severityFactor(p SeverityProfile, side BetSide, r PaceReading) Factor {
	var f Factor
	switch side {
	case SideUnder:
		for _, b := range p.UnderBands {
			if r.RequiredPPM > b.Cutoff {
				f.Points = b.Points
				f.Details = append(f.Details, fmt.Sprintf("required pace %.2f: %+g", r.RequiredPPM, b.Points))
				return f
			}
		}
		f.Points = p.UnderFloor
		f.Details = append(f.Details, fmt.Sprintf("required pace %.2f below all bands: %+g", r.RequiredPPM, p.UnderFloor))
	case SideOver:
		for _, b := range p.OverBands {
			if r.RequiredPPM < b.Cutoff {
				f.Points = b.Points
				f.Details = append(f.Details, fmt.Sprintf("low required pace (%.2f): %+g", r.RequiredPPM, b.Points))
				break
			}
		}
		if r.CurrentPPM > 0 && r.RequiredPPM > 0 {
			ratio := r.CurrentPPM / r.RequiredPPM
			for _, b := range p.OverRatioBands {
				if ratio > b.Cutoff {
					f.Points += b.Points
					f.Details = append(f.Details, fmt.Sprintf("pace ratio %.1fx: %+g", ratio, b.Points))
					break
				}
			}
		}
	}
	return f
}

// liveShootingFactor compara el FG% en vivo contra el eFG% de temporada:
// equipos encendidos amenazan al under, fríos lo refuerzan. Sólo cuentan
// los lados con ambos porcentajes disponibles.
func liveShootingFactor(home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	var sum float64
	var n int
	for _, m := range []*TeamMetrics{home, away} {
		if m.Live != nil && m.Live.FGPct > 0 && m.EFGPct > 0 {
			sum += m.Live.FGPct - m.EFGPct
			n++
		}
	}
	if n == 0 {
		return f
	}
	avg := sum / float64(n)
	var pts float64
	var desc string
	switch {
	case avg > 5:
		pts, desc = -8*mult, "teams shooting hot"
	case avg < -5:
		pts, desc = 8*mult, "teams shooting cold"
	case avg > 2:
		pts, desc = -4*mult, "shooting above season"
	case avg < -2:
		pts, desc = 4*mult, "shooting below season"
	default:
		return f
	}
	f.Points = pts
	f.Details = append(f.Details, fmt.Sprintf("%s (%+.1f%%): %+g", desc, avg, pts))
	return f
}

// liveFreeThrowFactor puntúa el volumen combinado de tiros libres ya
// intentados: muchos viajes a la línea paran el reloj y suman puntos.
func liveFreeThrowFactor(home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	var fta int
	for _, m := range []*TeamMetrics{home, away} {
		if m.Live != nil {
			fta += m.Live.FTAttempted
		}
	}
	var pts float64
	switch {
	case fta > 20:
		pts = 6 * mult
	case fta > 15:
		pts = 4 * mult
	case fta > 10:
		pts = 2 * mult
	default:
		pts = -2 * mult
	}
	f.Points = pts
	f.Details = append(f.Details, fmt.Sprintf("combined FTA (%d): %+g", fta, pts))
	return f
}

// liveTurnoverFactor puntúa las pérdidas del partido. Con intentos de
// campo disponibles usa pérdidas por cada 10 FGA; si no, el conteo
// absoluto.
func liveTurnoverFactor(home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	var to, fga int
	for _, m := range []*TeamMetrics{home, away} {
		if m.Live != nil {
			to += m.Live.Turnovers
			fga += m.Live.FGAttempted
		}
	}
	if fga > 0 {
		rate := float64(to) / (float64(fga) / 10)
		var pts float64
		switch {
		case rate > 2.0:
			pts = 5 * mult
		case rate > 1.5:
			pts = 3 * mult
		case rate < 1.0:
			pts = -3 * mult
		default:
			return f
		}
		f.Points = pts
		f.Details = append(f.Details, fmt.Sprintf("TO per 10 FGA (%.1f): %+g", rate, pts))
		return f
	}
	var pts float64
	switch {
	case to > 15:
		pts = 4 * mult
	case to < 8:
		pts = -2 * mult
	default:
		return f
	}
	f.Points = pts
	f.Details = append(f.Details, fmt.Sprintf("combined turnovers (%d): %+g", to, pts))
	return f
}

// liveReboundingFactor puntúa el porcentaje de rebote ofensivo combinado:
// muchas segundas oportunidades alargan posesiones y amenazan al under.
func liveReboundingFactor(home, away *TeamMetrics, mult float64) Factor {
	var f Factor
	var total, off int
	for _, m := range []*TeamMetrics{home, away} {
		if m.Live != nil {
			total += m.Live.ReboundsTotal
			off += m.Live.ReboundsOffensive
		}
	}
	if total == 0 {
		return f
	}
	orebPct := float64(off) / float64(total) * 100
	var pts float64
	switch {
	case orebPct > 35:
		pts = -4 * mult
	case orebPct > 30:
		pts = -2 * mult
	case orebPct < 20:
		pts = 2 * mult
	default:
		return f
	}
	f.Points = pts
	f.Details = append(f.Details, fmt.Sprintf("OReb%% (%.1f): %+g", orebPct, pts))
	return f
}
