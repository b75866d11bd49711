package domain

import "time"

// TotalLine es la línea de total publicada para un partido por una casa.
// Los nombres de equipo vienen del proveedor de cuotas y pueden diferir de
// los del feed en vivo; se emparejan con el matcher de nombres.
type TotalLine struct {
	HomeTeam   string
	AwayTeam   string
	Line       float64
	Bookmaker  string
	LastUpdate time.Time
}
