package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out      io.Writer
	table    bool
	validate bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table, validate bool) *Console {
	return &Console{out: os.Stdout, table: table, validate: validate}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table, validate bool) *Console {
	return &Console{out: w, table: table, validate: validate}
}

// Notify imprime los polls del ciclo en el modo configurado.
func (c *Console) Notify(_ context.Context, polls []domain.PollRecord) error {
	if len(polls) == 0 {
		fmt.Fprintf(c.out, "[%s] no live games\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(polls)
	} else {
		c.printCompact(polls)
	}

	if c.validate {
		c.printValidation(polls)
	}

	return nil
}

// printCompact imprime lo esencial en una línea: recuento y las señales
// disparadas.
func (c *Console) printCompact(polls []domain.PollRecord) {
	now := time.Now().Format("15:04:05")
	trig, under, over := countSides(polls)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d live → trig:%d U:%d O:%d", now, len(polls), trig, under, over)

	shown := 0
	for _, p := range polls {
		if shown >= 4 || !p.Triggered {
			break // los polls llegan ordenados: disparos primero
		}
		fmt.Fprintf(&sb, " | %s %s %dpts L%.1f req%.2f conf%.0f %.1fu",
			sideTag(p.Side), compactName(p.AwayTeam+" @ "+p.HomeTeam, 24),
			p.Reading.Total, p.Line, p.Reading.RequiredPPM, p.Confidence, p.Units)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla completa del ciclo.
func (c *Console) printFull(polls []domain.PollRecord) {
	now := time.Now().Format("15:04:05")
	trig, under, over := countSides(polls)

	fmt.Fprintf(c.out, "\n[%s] %d live games — trig:%d U:%d O:%d\n", now, len(polls), trig, under, over)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Game", "Score", "Per", "Clock", "Line", "Req", "Cur", "Proj", "Side", "Conf", "Units")

	for i, p := range polls {
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(p.AwayTeam+" @ "+p.HomeTeam, 30),
			fmt.Sprintf("%d-%d", p.AwayScore, p.HomeScore),
			fmt.Sprintf("%d", p.Period),
			fmt.Sprintf("%d:%02d", p.ClockMinutes, p.ClockSeconds),
			lineLabel(p.Line),
			fmt.Sprintf("%.2f", p.Reading.RequiredPPM),
			fmt.Sprintf("%.2f", p.Reading.CurrentPPM),
			fmt.Sprintf("%.1f", p.Reading.ProjectedFinal),
			sideLabel(p),
			fmt.Sprintf("%.0f", p.Confidence),
			fmt.Sprintf("%.1f", p.Units),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Req = PPM necesario para alcanzar la línea | Cur = PPM observado")
	fmt.Fprintln(c.out, "  Side en mayúsculas = señal disparada | Conf/Units del scorer")
}

// printValidation imprime el desglose de confianza de los top 3.
func (c *Console) printValidation(polls []domain.PollRecord) {
	top := polls
	if len(top) > 3 {
		top = polls[:3]
	}

	fmt.Fprintln(c.out, "=== VALIDATION — desglose de confianza ===")

	for i, p := range top {
		fmt.Fprintf(c.out, "\n--- #%d: %s  [%s] ---\n", i+1, p.AwayTeam+" @ "+p.HomeTeam, sideLabel(p))

		bd := p.Breakdown
		if bd.Error != "" {
			fmt.Fprintf(c.out, "  degraded: %s\n", bd.Error)
			continue
		}

		fmt.Fprintf(c.out, "\n  1. PACE READING:\n")
		fmt.Fprintf(c.out, "     total=%d  line=%.1f  elapsed=%.1f  remaining=%.1f\n",
			p.Reading.Total, p.Line, p.Reading.MinutesElapsed, p.Reading.MinutesRemaining)
		fmt.Fprintf(c.out, "     required=%.2f  current=%.2f  projected=%.1f\n",
			p.Reading.RequiredPPM, p.Reading.CurrentPPM, p.Reading.ProjectedFinal)
		if len(p.Reasons) > 0 {
			fmt.Fprintf(c.out, "     reasons: %s\n", strings.Join(p.Reasons, "; "))
		}

		fmt.Fprintf(c.out, "\n  2. FACTORS (base %.0f):\n", bd.Base)
		c.printFactor("pace", bd.Pace)
		c.printFactor("three_point", bd.ThreePoint)
		c.printFactor("free_throw", bd.FreeThrow)
		c.printFactor("turnover", bd.Turnover)
		c.printFactor("defense", bd.Defense)
		c.printFactor("fouls", bd.Fouls)
		c.printFactor("matchup", bd.Matchup)
		c.printFactor("ppm_severity", bd.PPMSeverity)

		if bd.LiveShooting != nil {
			fmt.Fprintf(c.out, "\n  3. LIVE FACTORS:\n")
			c.printFactor("shooting", *bd.LiveShooting)
			c.printFactor("free_throws", *bd.LiveFreeThrows)
			c.printFactor("turnovers", *bd.LiveTurnovers)
			c.printFactor("rebounding", *bd.LiveRebounding)
		}

		fmt.Fprintf(c.out, "\n  >>> SCORE: raw=%.1f → final=%.1f → %.1f units\n",
			bd.RawScore, bd.FinalScore, p.Units)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printFactor(name string, f domain.Factor) {
	fmt.Fprintf(c.out, "     %-13s %+6.1f", name, f.Points)
	if len(f.Details) > 0 {
		fmt.Fprintf(c.out, "  (%s)", strings.Join(f.Details, ", "))
	}
	fmt.Fprintln(c.out)
}

// PrintSweep imprime la tabla del barrido de umbrales y la recomendación.
func (c *Console) PrintSweep(buckets []domain.ThresholdBucket, rec domain.Recommendation, minSample int) {
	if len(buckets) == 0 {
		fmt.Fprintln(c.out, "\n  No hay datos para el barrido.")
		return
	}

	fmt.Fprintf(c.out, "\n╔══════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(c.out, "║  THRESHOLD SWEEP — señales hipotéticas sobre el histórico        ║\n")
	fmt.Fprintf(c.out, "╚══════════════════════════════════════════════════════════════════╝\n\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("Thr", "Trig", "W", "L", "P", "Win%", "AvgConf", "Units", "Profit", "ROI%")

	shown := 0
	for _, b := range buckets {
		if b.Triggers == 0 {
			continue
		}
		shown++
		table.Append(
			fmt.Sprintf("%.1f", b.Threshold),
			fmt.Sprintf("%d", b.Triggers),
			fmt.Sprintf("%d", b.Wins),
			fmt.Sprintf("%d", b.Losses),
			fmt.Sprintf("%d", b.Pushes),
			fmt.Sprintf("%.1f", b.WinRate),
			fmt.Sprintf("%.0f", b.AvgConfidence),
			fmt.Sprintf("%.1f", b.TotalUnits),
			fmt.Sprintf("%+.1f", b.Profit),
			fmt.Sprintf("%+.1f", b.ROI),
		)
	}
	table.Render()

	if shown < len(buckets) {
		fmt.Fprintf(c.out, "  (%d umbrales sin disparos omitidos)\n", len(buckets)-shown)
	}

	fmt.Fprintf(c.out, "\n  --- RECOMENDACIÓN (muestra mínima: %d partidos) ---\n", minSample)
	if rec.Insufficient {
		fmt.Fprintf(c.out, "  %s\n\n", rec.Reason)
		return
	}
	if rec.BestROI != nil {
		b := rec.BestROI
		fmt.Fprintf(c.out, "  Mejor ROI:      thr %.1f → ROI %+.1f%% (%d trig, win %.1f%%, profit %+.1f u)\n",
			b.Threshold, b.ROI, b.Triggers, b.WinRate, b.Profit)
	}
	if rec.BestWinRate != nil {
		b := rec.BestWinRate
		fmt.Fprintf(c.out, "  Mejor win rate: thr %.1f → %.1f%% (%d trig, ROI %+.1f%%)\n",
			b.Threshold, b.WinRate, b.Triggers, b.ROI)
	}
	fmt.Fprintln(c.out)
}

// PrintDailySummary imprime el resumen de una jornada: totales, histograma
// de PPM requerido y el rollup por partido.
func (c *Console) PrintDailySummary(s domain.DailySummary) {
	fmt.Fprintf(c.out, "\n========================================================\n")
	fmt.Fprintf(c.out, "  DAILY SUMMARY — %s\n", s.Date)
	fmt.Fprintf(c.out, "========================================================\n\n")
	fmt.Fprintf(c.out, "  Games:     %d\n", s.Games)
	fmt.Fprintf(c.out, "  Polls:     %d\n", s.Polls)
	fmt.Fprintf(c.out, "  Triggered: %d (%.1f%%)\n", s.TriggeredPolls, s.TriggerRate)

	if s.Polls == 0 {
		fmt.Fprintln(c.out, "\n  Sin polls registrados en la fecha.")
		return
	}

	fmt.Fprintf(c.out, "\n  --- REQUIRED PPM ---\n")
	maxCount := 0
	for _, h := range s.Histogram {
		if h.Count > maxCount {
			maxCount = h.Count
		}
	}
	for _, h := range s.Histogram {
		bar := ""
		if maxCount > 0 {
			bar = strings.Repeat("█", h.Count*30/maxCount)
		}
		fmt.Fprintf(c.out, "  %-8s %4d %s\n", h.Label, h.Count, bar)
	}

	if len(s.PerGame) > 0 {
		fmt.Fprintln(c.out)
		table := tablewriter.NewWriter(c.out)
		table.Header("Game", "Polls", "Line", "Last", "Req min/avg/max", "Side", "MaxConf")
		for _, g := range s.PerGame {
			table.Append(
				truncate(g.Matchup, 30),
				fmt.Sprintf("%d", g.Polls),
				lineLabel(g.Line),
				fmt.Sprintf("%d", g.LastTotal),
				fmt.Sprintf("%.1f/%.1f/%.1f", g.MinRequired, g.AvgRequired, g.MaxRequired),
				rollupSide(g),
				fmt.Sprintf("%.0f", g.MaxConfidence),
			)
		}
		table.Render()
	}
	fmt.Fprintln(c.out)
}

// PrintPerformance imprime el reporte de señales liquidadas con el corte
// por tier de confianza.
func (c *Console) PrintPerformance(rep domain.PerformanceReport) {
	if rep.Bets == 0 {
		fmt.Fprintln(c.out, "\n  No hay señales liquidadas todavía.")
		return
	}

	fmt.Fprintf(c.out, "\n========================================================\n")
	fmt.Fprintf(c.out, "  PERFORMANCE — señales liquidadas\n")
	fmt.Fprintf(c.out, "========================================================\n\n")
	fmt.Fprintf(c.out, "  Bets:       %d (%d over / %d under)\n", rep.Bets, rep.OverBets, rep.UnderBets)
	fmt.Fprintf(c.out, "  Record:     %dW-%dL-%dP\n", rep.Wins, rep.Losses, rep.Pushes)
	fmt.Fprintf(c.out, "  Win rate:   %.1f%% (pushes en el denominador)\n", rep.WinRate)
	fmt.Fprintf(c.out, "  Units:      %.1f apostadas → %+.1f de profit\n", rep.TotalUnits, rep.Profit)
	fmt.Fprintf(c.out, "  ROI:        %+.1f%%\n", rep.ROI)

	fmt.Fprintf(c.out, "\n  --- POR TIER DE CONFIANZA ---\n")
	table := tablewriter.NewWriter(c.out)
	table.Header("Tier", "Bets", "W", "L", "P", "Win%", "Profit")
	for _, t := range rep.Tiers {
		table.Append(
			t.Name,
			fmt.Sprintf("%d", t.Bets),
			fmt.Sprintf("%d", t.Wins),
			fmt.Sprintf("%d", t.Losses),
			fmt.Sprintf("%d", t.Pushes),
			fmt.Sprintf("%.1f", t.WinRate),
			fmt.Sprintf("%+.1f", t.Profit),
		)
	}
	table.Render()

	switch {
	case rep.Profit > 0:
		fmt.Fprintf(c.out, "\n  VEREDICTO: RENTABLE — %+.1f unidades en %d apuestas\n\n", rep.Profit, rep.Bets)
	case rep.Profit == 0:
		fmt.Fprintf(c.out, "\n  VEREDICTO: NEUTRO — breakeven en %d apuestas\n\n", rep.Bets)
	default:
		fmt.Fprintf(c.out, "\n  VEREDICTO: NO RENTABLE — %+.1f unidades en %d apuestas\n\n", rep.Profit, rep.Bets)
	}
}

// --- helpers ---

func countSides(polls []domain.PollRecord) (trig, under, over int) {
	for _, p := range polls {
		if !p.Triggered {
			continue
		}
		trig++
		switch p.Side {
		case domain.SideUnder:
			under++
		case domain.SideOver:
			over++
		}
	}
	return
}

func sideTag(s domain.BetSide) string {
	switch s {
	case domain.SideUnder:
		return "U"
	case domain.SideOver:
		return "O"
	}
	return "-"
}

func sideLabel(p domain.PollRecord) string {
	if !p.Triggered {
		return "-"
	}
	return strings.ToUpper(string(p.Side))
}

func rollupSide(g domain.GameRollup) string {
	if !g.Triggered {
		return "-"
	}
	return strings.ToUpper(string(g.Side))
}

func lineLabel(line float64) string {
	if line <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", line)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
