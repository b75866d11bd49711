package espn

// DTOs raw del feed. Solo se usan dentro de este paquete; la conversión a
// domain entities se hace en mapping.go.

// --- scoreboard ---

// scoreboardResponse es la respuesta de GET /{league}/scoreboard.
type scoreboardResponse struct {
	Events []event `json:"events"`
}

// event es un partido del scoreboard.
type event struct {
	ID           string        `json:"id"`
	Competitions []competition `json:"competitions"`
}

// competition contiene competidores, estado y cuotas del partido.
type competition struct {
	Competitors []competitor     `json:"competitors"`
	Status      gameStatus       `json:"status"`
	Odds        []scoreboardOdds `json:"odds"`
}

// competitor es un equipo con su marcador actual (string en el feed).
type competitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     teamInfo `json:"team"`
}

// teamInfo identifica al equipo.
type teamInfo struct {
	DisplayName  string `json:"displayName"`
	Abbreviation string `json:"abbreviation"`
}

// gameStatus es el estado del reloj del partido.
type gameStatus struct {
	Period       int        `json:"period"`
	DisplayClock string     `json:"displayClock"`
	Type         statusType `json:"type"`
}

// statusType clasifica el estado: pre | in | post.
type statusType struct {
	State       string `json:"state"`
	Description string `json:"description"`
}

// scoreboardOdds trae la línea de total del scoreboard cuando existe.
type scoreboardOdds struct {
	OverUnder float64 `json:"overUnder"`
}

// --- summary ---

// summaryResponse es la respuesta de GET /{league}/summary?event={id}.
type summaryResponse struct {
	Header     summaryHeader `json:"header"`
	Pickcenter []pickcenter  `json:"pickcenter"`
	Boxscore   boxscore      `json:"boxscore"`
}

// summaryHeader contiene el marcador y estado del partido.
type summaryHeader struct {
	Competitions []headerCompetition `json:"competitions"`
}

type headerCompetition struct {
	Competitors []competitor `json:"competitors"`
	Status      gameStatus   `json:"status"`
}

// pickcenter trae las líneas de apertura/cierre por casa.
type pickcenter struct {
	Total totalMarket `json:"total"`
}

// totalMarket es el mercado de totales; las líneas llegan como "o144.5".
type totalMarket struct {
	Over sidedLines `json:"over"`
}

type sidedLines struct {
	Close lineValue `json:"close"`
	Open  lineValue `json:"open"`
}

type lineValue struct {
	Line string `json:"line"`
}

// boxscore contiene las estadísticas por equipo del partido en curso.
type boxscore struct {
	Teams []boxscoreTeam `json:"teams"`
}

type boxscoreTeam struct {
	Team       teamInfo    `json:"team"`
	HomeAway   string      `json:"homeAway"`
	Statistics []statEntry `json:"statistics"`
}

// statEntry es un par nombre/valor del boxscore ("fieldGoalsMade-fieldGoalsAttempted" → "24-51").
type statEntry struct {
	Name         string `json:"name"`
	DisplayValue string `json:"displayValue"`
}
