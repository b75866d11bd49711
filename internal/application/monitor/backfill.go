package monitor

// backfill.go — liquidación diferida de partidos que quedaron con polls
// registrados pero sin resultado (proceso caído a mitad de jornada, feed
// atrasado al cierre).
//
// 1. Carga los polls del rango y los agrupa por partido.
// 2. Reconstruye el estado de la señal reproduciendo los polls en orden.
// 3. Consulta el resumen del feed por el marcador final y liquida una vez.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// Report es el recuento de una pasada de backfill.
type Report struct {
	Candidates int // partidos con polls y sin resultado registrado
	Settled    int
	Skipped    int // sin resumen disponible o final aún no confirmado
}

// settlement agrupa lo necesario para armar la fila de resultado.
type settlement struct {
	gameID     string
	homeTeam   string
	awayTeam   string
	finalHome  int
	finalAway  int
	line       float64
	opening    float64
	trig       domain.TriggerState
	lastPeriod int
	date       time.Time
}

// Backfill liquida los partidos pendientes del rango dado.
func (e *Engine) Backfill(ctx context.Context, from, to time.Time) (Report, error) {
	var rep Report

	polls, err := e.storage.GetPolls(ctx, from, to)
	if err != nil {
		return rep, fmt.Errorf("monitor.Backfill: load polls: %w", err)
	}

	byGame := make(map[string][]domain.PollRecord)
	var order []string
	for _, p := range polls {
		if _, ok := byGame[p.GameID]; !ok {
			order = append(order, p.GameID)
		}
		byGame[p.GameID] = append(byGame[p.GameID], p)
	}

	for _, gameID := range order {
		select {
		case <-ctx.Done():
			return rep, ctx.Err()
		default:
		}

		done, err := e.storage.HasResult(ctx, gameID)
		if err != nil {
			return rep, fmt.Errorf("monitor.Backfill: check result: %w", err)
		}
		if done {
			continue
		}
		rep.Candidates++

		gp := byGame[gameID]
		detail, err := e.games.FetchGameDetail(ctx, gameID)
		if err != nil {
			slog.Warn("summary fetch failed", "game_id", gameID, "err", err)
			rep.Skipped++
			continue
		}
		if !detail.Completed {
			rep.Skipped++
			continue
		}

		var trig domain.TriggerState
		var line, opening float64
		lastPeriod := 0
		for _, p := range gp {
			trig.Observe(domain.TriggerDecision{Triggered: p.Triggered, Side: p.Side}, p.Confidence, p.Units, p.Timestamp)
			if p.Line > 0 {
				line = p.Line
				if opening == 0 {
					opening = p.Line
				}
			}
			if p.OpeningLine > 0 {
				opening = p.OpeningLine
			}
			if p.Period > lastPeriod {
				lastPeriod = p.Period
			}
		}
		if detail.ClosingTotal > 0 {
			line = detail.ClosingTotal
		}
		if detail.OpeningTotal > 0 {
			opening = detail.OpeningTotal
		}

		last := gp[len(gp)-1]
		r := e.buildResult(settlement{
			gameID:     gameID,
			homeTeam:   last.HomeTeam,
			awayTeam:   last.AwayTeam,
			finalHome:  detail.HomeScore,
			finalAway:  detail.AwayScore,
			line:       line,
			opening:    opening,
			trig:       trig,
			lastPeriod: lastPeriod,
			date:       last.Timestamp,
		})
		if err := e.storage.SaveResult(ctx, r); err != nil {
			slog.Warn("storage error", "game_id", gameID, "err", err)
			rep.Skipped++
			continue
		}
		rep.Settled++
		slog.Info("game backfilled",
			"game", last.AwayTeam+" @ "+last.HomeTeam,
			"final", r.FinalTotal,
			"ou", string(r.OUResult),
			"outcome", string(r.Outcome),
		)
	}

	return rep, nil
}

// buildResult arma la fila de resultado. Con línea no positiva la fila
// conserva el marcador final pero queda sin O/U ni desenlace.
func (e *Engine) buildResult(s settlement) domain.GameResult {
	r := domain.GameResult{
		GameID:         s.gameID,
		Date:           s.date.UTC().Format("2006-01-02"),
		HomeTeam:       s.homeTeam,
		AwayTeam:       s.awayTeam,
		FinalHomeScore: s.finalHome,
		FinalAwayScore: s.finalAway,
		FinalTotal:     s.finalHome + s.finalAway,
		Line:           s.line,
		OpeningLine:    s.opening,
		WentToOT:       domain.WentToOvertime(s.lastPeriod, s.finalHome+s.finalAway, e.cfg.Sport.TotalMinutes()),
		Triggered:      s.trig.Triggered,
		TriggerSide:    s.trig.Side,
		MaxConfidence:  s.trig.MaxConfidence,
		MaxUnits:       s.trig.MaxUnits,
		TriggeredAt:    s.trig.TriggeredAt,
	}

	st, err := domain.ResolveOutcome(s.finalHome, s.finalAway, s.line, s.trig)
	if err != nil {
		r.Notes = "no total line published"
		return r
	}
	r.OUResult = st.OUResult
	r.Outcome = st.Outcome
	r.UnitProfit = st.UnitProfit
	return r
}
