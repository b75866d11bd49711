package espn

import (
	"math"
	"strconv"
	"strings"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// mapSnapshot convierte un event del scoreboard a domain.GameSnapshot.
// Devuelve false si el evento no trae los dos competidores.
func mapSnapshot(e event, sport domain.Sport) (domain.GameSnapshot, bool) {
	if len(e.Competitions) == 0 {
		return domain.GameSnapshot{}, false
	}
	comp := e.Competitions[0]

	s := domain.GameSnapshot{
		GameID:       e.ID,
		TotalMinutes: sport.TotalMinutes(),
		Period:       comp.Status.Period,
		Status:       mapStatus(comp.Status.Type.State),
	}
	s.ClockMinutes, s.ClockSeconds = parseClock(comp.Status.DisplayClock)

	var sides int
	for _, c := range comp.Competitors {
		score, _ := strconv.Atoi(c.Score)
		switch c.HomeAway {
		case "home":
			s.HomeTeam = c.Team.DisplayName
			s.HomeScore = score
			sides++
		case "away":
			s.AwayTeam = c.Team.DisplayName
			s.AwayScore = score
			sides++
		}
	}
	if sides != 2 {
		return domain.GameSnapshot{}, false
	}

	if len(comp.Odds) > 0 && comp.Odds[0].OverUnder > 0 {
		s.PostedTotal = comp.Odds[0].OverUnder
	}
	return s, true
}

// mapStatus convierte el state del feed al estado de dominio.
func mapStatus(state string) domain.GameStatus {
	switch state {
	case "in":
		return domain.StatusLive
	case "post":
		return domain.StatusFinal
	default:
		return domain.StatusPre
	}
}

// parseClock interpreta el displayClock: "5:32" → (5, 32). Un valor sin
// dos puntos son segundos sueltos de final de período ("35.0" → (0, 35)).
func parseClock(display string) (minutes, seconds int) {
	display = strings.TrimSpace(display)
	if display == "" {
		return 0, 0
	}
	if i := strings.IndexByte(display, ':'); i >= 0 {
		minutes, _ = strconv.Atoi(display[:i])
		seconds, _ = strconv.Atoi(display[i+1:])
		return minutes, seconds
	}
	secs, _ := strconv.ParseFloat(display, 64)
	return 0, int(secs)
}

// parseSidedLine interpreta una línea con prefijo de lado: "o144.5" o
// "u139.5" → 144.5 / 139.5. Devuelve 0 si no hay línea.
func parseSidedLine(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if s[0] == 'o' || s[0] == 'u' {
		s = s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// mapLiveStats convierte los pares nombre/valor del boxscore a
// domain.LiveStats, derivando el eFG% del partido.
func mapLiveStats(stats []statEntry) *domain.LiveStats {
	if len(stats) == 0 {
		return nil
	}
	ls := &domain.LiveStats{}
	for _, st := range stats {
		v := st.DisplayValue
		switch st.Name {
		case "fieldGoalsMade-fieldGoalsAttempted":
			ls.FGMade, ls.FGAttempted = splitMadeAttempted(v)
		case "fieldGoalPct":
			ls.FGPct = parseFloat(v)
		case "threePointFieldGoalsMade-threePointFieldGoalsAttempted":
			ls.ThreeMade, ls.ThreeAttempted = splitMadeAttempted(v)
		case "threePointFieldGoalPct":
			ls.ThreePct = parseFloat(v)
		case "freeThrowsMade-freeThrowsAttempted":
			ls.FTMade, ls.FTAttempted = splitMadeAttempted(v)
		case "freeThrowPct":
			ls.FTPct = parseFloat(v)
		case "totalRebounds":
			ls.ReboundsTotal = parseInt(v)
		case "offensiveRebounds":
			ls.ReboundsOffensive = parseInt(v)
		case "defensiveRebounds":
			ls.ReboundsDefensive = parseInt(v)
		case "assists":
			ls.Assists = parseInt(v)
		case "steals":
			ls.Steals = parseInt(v)
		case "blocks":
			ls.Blocks = parseInt(v)
		case "turnovers":
			ls.Turnovers = parseInt(v)
		case "fouls":
			ls.Fouls = parseInt(v)
		}
	}
	if ls.FGAttempted > 0 {
		efg := (float64(ls.FGMade) + 0.5*float64(ls.ThreeMade)) / float64(ls.FGAttempted) * 100
		ls.EffectiveFGPct = math.Round(efg*10) / 10
	}
	return ls
}

// splitMadeAttempted separa un compuesto "24-51" en (24, 51).
func splitMadeAttempted(v string) (made, attempted int) {
	i := strings.IndexByte(v, '-')
	if i < 0 {
		return 0, 0
	}
	made, _ = strconv.Atoi(strings.TrimSpace(v[:i]))
	attempted, _ = strconv.Atoi(strings.TrimSpace(v[i+1:]))
	return made, attempted
}

func parseInt(v string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
