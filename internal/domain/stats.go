package domain

import "time"

// LiveStats son las estadísticas de caja de un equipo durante el partido,
// extraídas del resumen en vivo. Los porcentajes llegan en escala 0-100.
type LiveStats struct {
	FGMade            int
	FGAttempted       int
	FGPct             float64
	ThreeMade         int
	ThreeAttempted    int
	ThreePct          float64
	FTMade            int
	FTAttempted       int
	FTPct             float64
	ReboundsTotal     int
	ReboundsOffensive int
	ReboundsDefensive int
	Assists           int
	Steals            int
	Blocks            int
	Turnovers         int
	Fouls             int
	// EffectiveFGPct = (FGM + 0.5*3PM) / FGA * 100, derivado al extraer.
	EffectiveFGPct float64
}

// TeamMetrics son las métricas de temporada de un equipo, derivadas de sus
// estadísticas acumuladas. Live apunta a las estadísticas del partido en
// curso cuando están disponibles; nil si no hay resumen en vivo.
type TeamMetrics struct {
	Team          string
	Games         int
	Pace          float64 // posesiones estimadas por partido
	OffEfficiency float64 // puntos por 100 posesiones
	DefEfficiency float64 // puntos recibidos por 100 posesiones
	ThreePRate    float64 // 3PA / FGA
	ThreePPct     float64 // % de triples (0-1 o 0-100, se normaliza al puntuar)
	FTRate        float64 // tiros libres intentados por partido
	TORate        float64 // pérdidas por partido
	EFGPct        float64 // eFG% de temporada, escala 0-100
	FetchedAt     time.Time
	Live          *LiveStats
}
