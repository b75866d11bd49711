package domain

import "time"

// PollRecord es el registro persistido de un poll: snapshot del partido,
// lectura de ritmo, decisión de disparo y puntuación, todo en una fila.
// ID es un UUID asignado al crear el registro.
type PollRecord struct {
	ID           string      `json:"id"`
	Timestamp    time.Time   `json:"timestamp"`
	GameID       string      `json:"game_id"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	HomeScore    int         `json:"home_score"`
	AwayScore    int         `json:"away_score"`
	Period       int         `json:"period"`
	ClockMinutes int         `json:"clock_minutes"`
	ClockSeconds int         `json:"clock_seconds"`
	Status       GameStatus  `json:"status"`
	Line         float64     `json:"line"`
	OpeningLine  float64     `json:"opening_line"`
	ClosingLine  float64     `json:"closing_line"` // total de cierre del proveedor del feed, si existe
	Reading      PaceReading `json:"reading"`
	Side         BetSide     `json:"side"`
	Triggered    bool        `json:"triggered"`
	Reasons      []string    `json:"reasons"`
	Confidence   float64     `json:"confidence"`
	Units        float64     `json:"units"`
	Breakdown    Breakdown   `json:"breakdown"`
	Notes        string      `json:"notes,omitempty"`
}
