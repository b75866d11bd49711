package oddsapi

// DTOs raw de The Odds API v4. Solo se usan dentro de este paquete.

// oddsEvent es un partido con sus casas y mercados.
type oddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

// bookmaker es una casa con sus mercados publicados.
type bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []market `json:"markets"`
}

// market es un mercado ("totals") con sus outcomes.
type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

// outcome es un lado del mercado; Point trae la línea del total.
type outcome struct {
	Name  string  `json:"name"`
	Point float64 `json:"point"`
	Price float64 `json:"price"`
}
