package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/alejandrodnm/pacebot/internal/ports"
)

// Config contiene la configuración del motor de monitoreo.
type Config struct {
	Sport           domain.Sport
	Interval        time.Duration
	IdleShutdown    time.Duration // 0 desactiva el kill switch
	AlertConfidence float64       // banner de confianza excepcional
	RealtimePublish float64       // difundir polls sin disparo por encima de esta confianza
	Thresholds      domain.Thresholds
	Once            bool
}

// TeamMatcher empareja nombres de equipo entre feeds distintos. Se inyecta
// desde cmd/ para respetar la inversión de dependencias.
type TeamMatcher interface {
	Match(a, b string) bool
}

// gameState es el estado acumulado de un partido entre ciclos.
type gameState struct {
	trigger    domain.TriggerState
	line       float64 // última línea utilizable vista
	opening    float64 // línea de apertura (pickcenter o primera vista)
	lastPeriod int
	bannered   bool
}

// Engine es el orquestador principal del loop de polling.
type Engine struct {
	cfg       Config
	games     ports.GameProvider
	odds      ports.OddsProvider
	stats     ports.StatsProvider
	storage   ports.Storage
	publisher ports.Publisher
	notifier  ports.Notifier
	scorer    *domain.Scorer
	matcher   TeamMatcher

	state    map[string]*gameState
	sawLive  bool
	lastLive time.Time
}

// New crea un Engine con todas las dependencias inyectadas. El proveedor de
// cuotas y el publisher pueden ser nil cuando no están configurados; el
// motor degrada a los totales del feed y a difusión apagada.
func New(
	cfg Config,
	games ports.GameProvider,
	odds ports.OddsProvider,
	stats ports.StatsProvider,
	storage ports.Storage,
	publisher ports.Publisher,
	notifier ports.Notifier,
	scorer *domain.Scorer,
	matcher TeamMatcher,
) *Engine {
	return &Engine{
		cfg:       cfg,
		games:     games,
		odds:      odds,
		stats:     stats,
		storage:   storage,
		publisher: publisher,
		notifier:  notifier,
		scorer:    scorer,
		matcher:   matcher,
		state:     make(map[string]*gameState),
	}
}

// Run ejecuta el loop de polling hasta que el contexto se cancele, termine
// la jornada (kill switch) o, con cfg.Once, complete un solo ciclo.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("monitor starting",
		"sport", string(e.cfg.Sport),
		"interval", e.cfg.Interval,
		"once", e.cfg.Once,
	)

	if err := e.runCycle(ctx); err != nil {
		slog.Error("poll cycle failed", "err", err)
		if e.cfg.Once {
			return err
		}
	}

	if e.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitor stopped")
			return nil
		case <-ticker.C:
			if err := e.runCycle(ctx); err != nil {
				slog.Error("poll cycle failed", "err", err)
			}
			if e.idleExpired(time.Now()) {
				slog.Info("no live games left, shutting down", "idle", e.cfg.IdleShutdown)
				return nil
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve los polls generados.
func (e *Engine) RunOnce(ctx context.Context) ([]domain.PollRecord, error) {
	return e.cycle(ctx)
}

// runCycle ejecuta un ciclo completo y notifica los resultados.
func (e *Engine) runCycle(ctx context.Context) error {
	start := time.Now()

	polls, err := e.cycle(ctx)
	if err != nil {
		return err
	}
	e.noteActivity(len(polls) > 0, time.Now())

	if err := e.notifier.Notify(ctx, polls); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	triggered := 0
	for _, p := range polls {
		if p.Triggered {
			triggered++
		}
	}
	slog.Info("poll cycle complete",
		"live_games", len(polls),
		"triggered", triggered,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace scoreboard → líneas → lectura/disparo/confianza por partido en
// vivo, liquida los recién terminados y devuelve los polls ordenados.
func (e *Engine) cycle(ctx context.Context) ([]domain.PollRecord, error) {
	snaps, err := e.games.FetchScoreboard(ctx, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("monitor.cycle: fetch scoreboard: %w", err)
	}

	totals := e.fetchTotals(ctx)

	var polls []domain.PollRecord
	for _, snap := range snaps {
		switch snap.Status {
		case domain.StatusLive:
			polls = append(polls, e.pollGame(ctx, snap, totals))
		case domain.StatusFinal:
			e.settle(ctx, snap)
		}
	}

	rankPolls(polls)
	return polls, nil
}

// fetchTotals trae las líneas de la API de cuotas. Sin proveedor o con
// error se sigue con los totales del feed: un fallo de cuotas no corta el
// polling.
func (e *Engine) fetchTotals(ctx context.Context) []domain.TotalLine {
	if e.odds == nil {
		return nil
	}
	totals, err := e.odds.FetchTotals(ctx)
	if err != nil {
		slog.Warn("odds fetch failed", "err", err)
		return nil
	}
	return totals
}

// pollGame procesa un partido en vivo: lectura, disparo, confianza,
// persistencia y difusión. Nunca corta el ciclo: los fallos parciales se
// degradan con un warning.
func (e *Engine) pollGame(ctx context.Context, snap domain.GameSnapshot, totals []domain.TotalLine) domain.PollRecord {
	now := time.Now().UTC()
	st := e.gameState(snap.GameID)
	if snap.Period > st.lastPeriod {
		st.lastPeriod = snap.Period
	}

	detail, err := e.games.FetchGameDetail(ctx, snap.GameID)
	if err != nil {
		slog.Warn("summary fetch failed", "game", snap.Matchup(), "err", err)
	}
	if detail.OpeningTotal > 0 {
		st.opening = detail.OpeningTotal
	}

	line := e.resolveLine(snap, detail, totals)
	if line > 0 {
		st.line = line
		if st.opening == 0 {
			st.opening = line
		}
	}
	snap.PostedTotal = line

	reading := domain.ComputeReading(snap)
	decision := domain.EvaluateTrigger(reading, e.cfg.Thresholds)

	home := e.teamMetrics(ctx, snap.HomeTeam, detail.HomeLive)
	away := e.teamMetrics(ctx, snap.AwayTeam, detail.AwayLive)
	score := e.scorer.Score(home, away, reading, decision.Side)

	wasTriggered := st.trigger.Triggered
	st.trigger.Observe(decision, score.Confidence, score.Units, now)

	p := domain.PollRecord{
		ID:           uuid.NewString(),
		Timestamp:    now,
		GameID:       snap.GameID,
		HomeTeam:     snap.HomeTeam,
		AwayTeam:     snap.AwayTeam,
		HomeScore:    snap.HomeScore,
		AwayScore:    snap.AwayScore,
		Period:       snap.Period,
		ClockMinutes: snap.ClockMinutes,
		ClockSeconds: snap.ClockSeconds,
		Status:       snap.Status,
		Line:         line,
		OpeningLine:  st.opening,
		ClosingLine:  detail.ClosingTotal,
		Reading:      reading,
		Side:         decision.Side,
		Triggered:    decision.Triggered,
		Reasons:      decision.Reasons,
		Confidence:   score.Confidence,
		Units:        score.Units,
		Breakdown:    score.Breakdown,
	}

	if err := e.storage.SavePoll(ctx, p); err != nil {
		slog.Warn("storage error", "err", err)
	}
	e.publish(ctx, p)
	e.emitAlerts(p, st, wasTriggered)
	return p
}

// settle liquida un partido recién terminado una sola vez. El resumen
// aporta el marcador final y la línea de cierre; el estado acumulado, el
// lado y las unidades de la señal.
func (e *Engine) settle(ctx context.Context, snap domain.GameSnapshot) {
	done, err := e.storage.HasResult(ctx, snap.GameID)
	if err != nil {
		slog.Warn("storage error", "err", err)
		return
	}
	if done {
		delete(e.state, snap.GameID)
		return
	}

	detail, err := e.games.FetchGameDetail(ctx, snap.GameID)
	if err != nil {
		slog.Warn("summary fetch failed", "game", snap.Matchup(), "err", err)
		return
	}
	if !detail.Completed {
		return // el feed aún no confirma el final, se reintenta el próximo ciclo
	}

	st := e.gameState(snap.GameID)
	if snap.Period > st.lastPeriod {
		st.lastPeriod = snap.Period
	}

	finalHome, finalAway := detail.HomeScore, detail.AwayScore
	if finalHome+finalAway == 0 {
		finalHome, finalAway = snap.HomeScore, snap.AwayScore
	}
	line := detail.ClosingTotal
	if line <= 0 {
		line = st.line
	}
	opening := detail.OpeningTotal
	if opening <= 0 {
		opening = st.opening
	}

	r := e.buildResult(settlement{
		gameID:     snap.GameID,
		homeTeam:   snap.HomeTeam,
		awayTeam:   snap.AwayTeam,
		finalHome:  finalHome,
		finalAway:  finalAway,
		line:       line,
		opening:    opening,
		trig:       st.trigger,
		lastPeriod: st.lastPeriod,
		date:       time.Now().UTC(),
	})
	if err := e.storage.SaveResult(ctx, r); err != nil {
		slog.Warn("storage error", "err", err)
		return
	}
	delete(e.state, snap.GameID)

	slog.Info("game settled",
		"game", snap.Matchup(),
		"final", r.FinalTotal,
		"line", fmt.Sprintf("%.1f", r.Line),
		"ou", string(r.OUResult),
		"outcome", string(r.Outcome),
		"profit", r.UnitProfit,
	)
}

// teamMetrics busca las métricas de temporada del equipo y les cuelga las
// estadísticas en vivo. Devuelve nil si no hay datos: el scorer degrada
// solo.
func (e *Engine) teamMetrics(ctx context.Context, team string, live *domain.LiveStats) *domain.TeamMetrics {
	m, err := e.stats.TeamMetrics(ctx, team)
	if err != nil {
		slog.Warn("stats lookup failed", "team", team, "err", err)
		return nil
	}
	if m == nil {
		return nil
	}
	mm := *m
	mm.Live = live
	return &mm
}

// resolveLine decide la línea del poll: API de cuotas primero, después el
// total del scoreboard, después pickcenter y por último la última línea
// conocida del partido.
func (e *Engine) resolveLine(snap domain.GameSnapshot, detail domain.GameDetail, totals []domain.TotalLine) float64 {
	for _, t := range totals {
		if e.matcher.Match(snap.HomeTeam, t.HomeTeam) && e.matcher.Match(snap.AwayTeam, t.AwayTeam) {
			return t.Line
		}
	}
	if snap.PostedTotal > 0 {
		return snap.PostedTotal
	}
	if detail.ClosingTotal > 0 {
		return detail.ClosingTotal
	}
	return e.gameState(snap.GameID).line
}

// publish difunde el poll cuando hay disparo o la confianza supera el
// umbral realtime. Un fallo del broker es warning, nunca corta el ciclo.
func (e *Engine) publish(ctx context.Context, p domain.PollRecord) {
	if e.publisher == nil {
		return
	}
	if !p.Triggered && p.Confidence <= e.cfg.RealtimePublish {
		return
	}
	if err := e.publisher.PublishDecision(ctx, p); err != nil {
		slog.Warn("publish error", "game_id", p.GameID, "err", err)
	}
}

// emitAlerts registra la primera señal de un partido y el banner de
// confianza excepcional. Cada uno se emite una sola vez por partido.
func (e *Engine) emitAlerts(p domain.PollRecord, st *gameState, wasTriggered bool) {
	if p.Triggered && !wasTriggered {
		slog.Warn("PACE SIGNAL",
			"game", p.AwayTeam+" @ "+p.HomeTeam,
			"side", string(p.Side),
			"line", fmt.Sprintf("%.1f", p.Line),
			"total", p.Reading.Total,
			"required_ppm", fmt.Sprintf("%.2f", p.Reading.RequiredPPM),
			"current_ppm", fmt.Sprintf("%.2f", p.Reading.CurrentPPM),
			"confidence", fmt.Sprintf("%.0f", p.Confidence),
			"units", p.Units,
			"reasons", strings.Join(p.Reasons, "; "),
		)
	}

	if e.cfg.AlertConfidence > 0 && p.Triggered && p.Confidence >= e.cfg.AlertConfidence && !st.bannered {
		st.bannered = true
		// Confianza excepcional: nivel ERROR para máxima visibilidad.
		slog.Error("*** HIGH CONFIDENCE SIGNAL ***",
			"game", p.AwayTeam+" @ "+p.HomeTeam,
			"side", string(p.Side),
			"confidence", fmt.Sprintf("%.0f", p.Confidence),
			"units", p.Units,
			"projected", fmt.Sprintf("%.1f", p.Reading.ProjectedFinal),
			"line", fmt.Sprintf("%.1f", p.Line),
		)
	}
}

// --- helpers internos ---

func (e *Engine) gameState(id string) *gameState {
	st, ok := e.state[id]
	if !ok {
		st = &gameState{}
		e.state[id] = st
	}
	return st
}

// noteActivity arma el kill switch: sólo cuenta desde el primer
// avistamiento de partidos en vivo, así el warmup pre-partido no apaga el
// proceso.
func (e *Engine) noteActivity(live bool, now time.Time) {
	if live {
		e.sawLive = true
		e.lastLive = now
	}
}

func (e *Engine) idleExpired(now time.Time) bool {
	if e.cfg.IdleShutdown <= 0 || !e.sawLive {
		return false
	}
	return now.Sub(e.lastLive) > e.cfg.IdleShutdown
}

// rankPolls ordena disparos primero y después por confianza descendente.
func rankPolls(polls []domain.PollRecord) {
	sort.Slice(polls, func(i, j int) bool {
		if polls[i].Triggered != polls[j].Triggered {
			return polls[i].Triggered
		}
		return polls[i].Confidence > polls[j].Confidence
	})
}
