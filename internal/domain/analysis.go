package domain

// ThresholdBucket agrega el rendimiento hipotético de un umbral candidato
// sobre el histórico: cuántos partidos habrían disparado y cómo habría
// terminado la apuesta. Se recalcula en cada análisis, nunca se persiste.
type ThresholdBucket struct {
	Threshold     float64
	Triggers      int
	Wins          int
	Losses        int
	Pushes        int
	WinRate       float64 // wins / (wins+losses) en %
	AvgConfidence float64
	AvgUnits      float64
	TotalUnits    float64
	Profit        float64
	ROI           float64 // profit / unidades apostadas en %
}

// Recommendation es el resultado de la selección de umbral óptimo. Con
// muestra insuficiente en todos los umbrales, Insufficient se activa y
// Reason lo explica; nunca se inventa un óptimo.
type Recommendation struct {
	BestROI      *ThresholdBucket
	BestWinRate  *ThresholdBucket // mayor win rate entre umbrales con ROI > 0
	Insufficient bool
	Reason       string
}

// HistogramBucket es una franja del histograma de required PPM.
type HistogramBucket struct {
	Label string
	Count int
}

// GameRollup resume los polls de un partido en un día.
type GameRollup struct {
	GameID        string
	Matchup       string
	Polls         int
	Triggered     bool
	Side          BetSide
	Line          float64
	LastTotal     int
	MinRequired   float64
	MaxRequired   float64
	AvgRequired   float64
	MaxConfidence float64
}

// DailySummary es el resumen de actividad de un día de monitoreo.
type DailySummary struct {
	Date           string // YYYY-MM-DD
	Games          int
	Polls          int
	TriggeredPolls int
	TriggerRate    float64 // % de polls con disparo
	Histogram      []HistogramBucket
	PerGame        []GameRollup
}

// TierStats es el rendimiento de las señales dentro de una franja de
// confianza. Las franjas coinciden con las bandas de unidades.
type TierStats struct {
	Name       string
	MinScore   float64
	MaxScore   float64
	Bets       int
	Wins       int
	Losses     int
	Pushes     int
	WinRate    float64
	Profit     float64
}

// PerformanceReport agrega los resultados liquidados de señales reales.
// WinRate usa todas las apuestas como denominador, pushes incluidos: es
// la fracción de apuestas que terminaron en win, no la de decididas.
type PerformanceReport struct {
	Bets       int
	Wins       int
	Losses     int
	Pushes     int
	WinRate    float64
	OverBets   int
	UnderBets  int
	TotalUnits float64
	Profit     float64
	ROI        float64
	Tiers      []TierStats
}
