package domain

// Sport identifica la liga monitoreada. Determina la duración del partido
// y la estructura de períodos reglamentarios.
type Sport string

const (
	SportNCAAB Sport = "ncaab" // 2 mitades de 20 min
	SportNBA   Sport = "nba"   // 4 cuartos de 12 min
)

// TotalMinutes devuelve la duración reglamentaria del partido en minutos.
func (s Sport) TotalMinutes() float64 {
	if s == SportNBA {
		return 48
	}
	return 40
}

// GameStatus es el estado del partido según el feed en vivo.
type GameStatus string

const (
	StatusPre   GameStatus = "pre"
	StatusLive  GameStatus = "in"
	StatusFinal GameStatus = "post"
)

// BetSide es el lado de la apuesta al total (over/under).
// El valor vacío significa que ningún lado fue determinado.
type BetSide string

const (
	SideNone  BetSide = ""
	SideOver  BetSide = "over"
	SideUnder BetSide = "under"
)

// GameSnapshot es la vista de un partido en un poll: marcador, reloj y línea
// publicada. Se produce una por partido por ciclo y es efímera; el pipeline
// la consume sin mutarla.
//
// Invariantes: scores no negativos, Period >= 0, el reloj restante acotado
// por la duración del período, TotalMinutes es la constante del deporte
// (40 NCAA, 48 NBA).
type GameSnapshot struct {
	GameID       string
	HomeTeam     string
	AwayTeam     string
	HomeScore    int
	AwayScore    int
	Period       int
	ClockMinutes int
	ClockSeconds int
	PostedTotal  float64
	TotalMinutes float64
	Status       GameStatus
}

// Total devuelve los puntos combinados del marcador actual.
func (g GameSnapshot) Total() int {
	return g.HomeScore + g.AwayScore
}

// Matchup devuelve la descripción "Away @ Home" del partido.
func (g GameSnapshot) Matchup() string {
	return g.AwayTeam + " @ " + g.HomeTeam
}

// GameDetail es el detalle de un partido desde el resumen del feed: líneas
// de cierre/apertura del proveedor, estadísticas en vivo por equipo y el
// marcador (final cuando Completed).
type GameDetail struct {
	GameID       string
	HomeScore    int
	AwayScore    int
	Completed    bool
	ClosingTotal float64
	OpeningTotal float64
	HomeLive     *LiveStats
	AwayLive     *LiveStats
}
