package storage

// sqlite.go — persistencia ligera del pipeline de señales.
//
// Estrategia:
//   - `polls`: una fila por poll, append-only. Es el log de auditoría del
//     monitor: lectura de ritmo, decisión y score quedan congelados tal
//     como se calcularon (Reasons y Breakdown como JSON).
//   - `results`: UNA fila por partido (INSERT OR IGNORE). La primera
//     liquidación gana; reejecutar un backfill nunca reescribe historia.
//   - `team_stats`: caché de métricas de temporada con upsert por equipo.
//     La validez la decide el llamador mirando fetched_at.
//   - Prune: PruneOlderThan recorta polls antiguos; los resultados se
//     conservan, son el histórico que alimenta los reportes.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Log de auditoría: una fila por poll
CREATE TABLE IF NOT EXISTS polls (
    id                TEXT PRIMARY KEY,
    ts                DATETIME NOT NULL,
    game_id           TEXT NOT NULL,
    home_team         TEXT NOT NULL,
    away_team         TEXT NOT NULL,
    home_score        INTEGER NOT NULL DEFAULT 0,
    away_score        INTEGER NOT NULL DEFAULT 0,
    period            INTEGER NOT NULL DEFAULT 0,
    clock_minutes     INTEGER NOT NULL DEFAULT 0,
    clock_seconds     INTEGER NOT NULL DEFAULT 0,
    status            TEXT NOT NULL DEFAULT '',
    line              REAL NOT NULL DEFAULT 0,
    opening_line      REAL NOT NULL DEFAULT 0,
    closing_line      REAL NOT NULL DEFAULT 0,
    minutes_elapsed   REAL NOT NULL DEFAULT 0,
    minutes_remaining REAL NOT NULL DEFAULT 0,
    required_ppm      REAL NOT NULL DEFAULT 0,
    current_ppm       REAL NOT NULL DEFAULT 0,
    ppm_diff          REAL NOT NULL DEFAULT 0,
    projected_final   REAL NOT NULL DEFAULT 0,
    side              TEXT NOT NULL DEFAULT '',
    triggered         INTEGER NOT NULL DEFAULT 0,
    reasons           TEXT NOT NULL DEFAULT '[]',
    confidence        REAL NOT NULL DEFAULT 0,
    units             REAL NOT NULL DEFAULT 0,
    breakdown         TEXT NOT NULL DEFAULT '{}',
    notes             TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_polls_ts   ON polls(ts DESC);
CREATE INDEX IF NOT EXISTS idx_polls_game ON polls(game_id);

-- Una fila por partido liquidado, sin reescrituras
CREATE TABLE IF NOT EXISTS results (
    game_id        TEXT PRIMARY KEY,
    date           TEXT NOT NULL,
    home_team      TEXT NOT NULL,
    away_team      TEXT NOT NULL,
    final_home     INTEGER NOT NULL DEFAULT 0,
    final_away     INTEGER NOT NULL DEFAULT 0,
    final_total    INTEGER NOT NULL DEFAULT 0,
    line           REAL NOT NULL DEFAULT 0,
    opening_line   REAL NOT NULL DEFAULT 0,
    ou_result      TEXT NOT NULL DEFAULT '',
    went_to_ot     INTEGER NOT NULL DEFAULT 0,
    triggered      INTEGER NOT NULL DEFAULT 0,
    trigger_side   TEXT NOT NULL DEFAULT '',
    max_confidence REAL NOT NULL DEFAULT 0,
    max_units      REAL NOT NULL DEFAULT 0,
    triggered_at   DATETIME,
    outcome        TEXT NOT NULL DEFAULT '',
    unit_profit    REAL NOT NULL DEFAULT 0,
    notes          TEXT NOT NULL DEFAULT '',
    recorded_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_date     ON results(date);
CREATE INDEX IF NOT EXISTS idx_results_recorded ON results(recorded_at DESC);

-- Caché de métricas de temporada por equipo
CREATE TABLE IF NOT EXISTS team_stats (
    team           TEXT PRIMARY KEY,
    games          INTEGER NOT NULL DEFAULT 0,
    pace           REAL NOT NULL DEFAULT 0,
    off_efficiency REAL NOT NULL DEFAULT 0,
    def_efficiency REAL NOT NULL DEFAULT 0,
    three_p_rate   REAL NOT NULL DEFAULT 0,
    three_p_pct    REAL NOT NULL DEFAULT 0,
    ft_rate        REAL NOT NULL DEFAULT 0,
    to_rate        REAL NOT NULL DEFAULT 0,
    efg_pct        REAL NOT NULL DEFAULT 0,
    fetched_at     DATETIME NOT NULL
);
`

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SavePoll persiste el registro de decisión de un poll.
func (s *SQLiteStorage) SavePoll(ctx context.Context, p domain.PollRecord) error {
	reasons, err := json.Marshal(p.Reasons)
	if err != nil {
		return fmt.Errorf("storage.SavePoll: marshal reasons: %w", err)
	}
	breakdown, err := json.Marshal(p.Breakdown)
	if err != nil {
		return fmt.Errorf("storage.SavePoll: marshal breakdown: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO polls
			(id, ts, game_id, home_team, away_team, home_score, away_score,
			 period, clock_minutes, clock_seconds, status, line, opening_line,
			 closing_line, minutes_elapsed, minutes_remaining, required_ppm,
			 current_ppm, ppm_diff, projected_final, side, triggered, reasons,
			 confidence, units, breakdown, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, fmtTime(p.Timestamp), p.GameID, p.HomeTeam, p.AwayTeam,
		p.HomeScore, p.AwayScore, p.Period, p.ClockMinutes, p.ClockSeconds,
		string(p.Status), p.Line, p.OpeningLine, p.ClosingLine,
		p.Reading.MinutesElapsed, p.Reading.MinutesRemaining,
		p.Reading.RequiredPPM, p.Reading.CurrentPPM, p.Reading.PPMDifference,
		p.Reading.ProjectedFinal, string(p.Side), boolToInt(p.Triggered),
		string(reasons), p.Confidence, p.Units, string(breakdown), p.Notes,
	); err != nil {
		return fmt.Errorf("storage.SavePoll: insert: %w", err)
	}
	return nil
}

// GetPolls devuelve los polls del rango dado en orden cronológico.
func (s *SQLiteStorage) GetPolls(ctx context.Context, from, to time.Time) ([]domain.PollRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, game_id, home_team, away_team, home_score, away_score,
		       period, clock_minutes, clock_seconds, status, line, opening_line,
		       closing_line, minutes_elapsed, minutes_remaining, required_ppm,
		       current_ppm, ppm_diff, projected_final, side, triggered, reasons,
		       confidence, units, breakdown, notes
		FROM polls
		WHERE ts BETWEEN ? AND ?
		ORDER BY ts ASC
	`, fmtTime(from), fmtTime(to))
	if err != nil {
		return nil, fmt.Errorf("storage.GetPolls: query: %w", err)
	}
	defer rows.Close()

	var polls []domain.PollRecord
	for rows.Next() {
		var p domain.PollRecord
		var ts, status, side, reasons, breakdown string
		var triggered int

		if err := rows.Scan(
			&p.ID, &ts, &p.GameID, &p.HomeTeam, &p.AwayTeam,
			&p.HomeScore, &p.AwayScore, &p.Period, &p.ClockMinutes,
			&p.ClockSeconds, &status, &p.Line, &p.OpeningLine, &p.ClosingLine,
			&p.Reading.MinutesElapsed, &p.Reading.MinutesRemaining,
			&p.Reading.RequiredPPM, &p.Reading.CurrentPPM,
			&p.Reading.PPMDifference, &p.Reading.ProjectedFinal,
			&side, &triggered, &reasons, &p.Confidence, &p.Units,
			&breakdown, &p.Notes,
		); err != nil {
			return nil, fmt.Errorf("storage.GetPolls: scan row: %w", err)
		}

		p.Timestamp = parseTime(ts)
		p.Status = domain.GameStatus(status)
		p.Side = domain.BetSide(side)
		p.Triggered = triggered == 1
		p.Reading.Total = p.HomeScore + p.AwayScore
		if err := json.Unmarshal([]byte(reasons), &p.Reasons); err != nil {
			return nil, fmt.Errorf("storage.GetPolls: decode reasons %s: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(breakdown), &p.Breakdown); err != nil {
			return nil, fmt.Errorf("storage.GetPolls: decode breakdown %s: %w", p.ID, err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// SaveResult persiste el resultado final de un partido. INSERT OR IGNORE:
// la primera fila por game_id se conserva intacta.
func (s *SQLiteStorage) SaveResult(ctx context.Context, r domain.GameResult) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO results
			(game_id, date, home_team, away_team, final_home, final_away,
			 final_total, line, opening_line, ou_result, went_to_ot, triggered,
			 trigger_side, max_confidence, max_units, triggered_at, outcome,
			 unit_profit, notes, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, r.Date, r.HomeTeam, r.AwayTeam, r.FinalHomeScore,
		r.FinalAwayScore, r.FinalTotal, r.Line, r.OpeningLine,
		string(r.OUResult), boolToInt(r.WentToOT), boolToInt(r.Triggered),
		string(r.TriggerSide), r.MaxConfidence, r.MaxUnits,
		nullableTime(r.TriggeredAt), string(r.Outcome), r.UnitProfit,
		r.Notes, fmtTime(time.Now()),
	); err != nil {
		return fmt.Errorf("storage.SaveResult: insert %s: %w", r.GameID, err)
	}
	return nil
}

// HasResult indica si el partido ya tiene resultado registrado.
func (s *SQLiteStorage) HasResult(ctx context.Context, gameID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM results WHERE game_id = ?`, gameID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage.HasResult: query %s: %w", gameID, err)
	}
	return true, nil
}

// GetResults devuelve los resultados registrados en el rango dado.
func (s *SQLiteStorage) GetResults(ctx context.Context, from, to time.Time) ([]domain.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, date, home_team, away_team, final_home, final_away,
		       final_total, line, opening_line, ou_result, went_to_ot,
		       triggered, trigger_side, max_confidence, max_units,
		       triggered_at, outcome, unit_profit, notes
		FROM results
		WHERE recorded_at BETWEEN ? AND ?
		ORDER BY recorded_at ASC
	`, fmtTime(from), fmtTime(to))
	if err != nil {
		return nil, fmt.Errorf("storage.GetResults: query: %w", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var r domain.GameResult
		var ou, side, outcome string
		var wentOT, triggered int
		var triggeredAt sql.NullString

		if err := rows.Scan(
			&r.GameID, &r.Date, &r.HomeTeam, &r.AwayTeam, &r.FinalHomeScore,
			&r.FinalAwayScore, &r.FinalTotal, &r.Line, &r.OpeningLine,
			&ou, &wentOT, &triggered, &side, &r.MaxConfidence, &r.MaxUnits,
			&triggeredAt, &outcome, &r.UnitProfit, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("storage.GetResults: scan row: %w", err)
		}

		r.OUResult = domain.OUResult(ou)
		r.WentToOT = wentOT == 1
		r.Triggered = triggered == 1
		r.TriggerSide = domain.BetSide(side)
		r.Outcome = domain.Outcome(outcome)
		if triggeredAt.Valid {
			r.TriggeredAt = parseTime(triggeredAt.String)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SaveTeamMetrics guarda en caché las métricas de temporada de un equipo.
func (s *SQLiteStorage) SaveTeamMetrics(ctx context.Context, m domain.TeamMetrics) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO team_stats
			(team, games, pace, off_efficiency, def_efficiency, three_p_rate,
			 three_p_pct, ft_rate, to_rate, efg_pct, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(team) DO UPDATE SET
			games          = excluded.games,
			pace           = excluded.pace,
			off_efficiency = excluded.off_efficiency,
			def_efficiency = excluded.def_efficiency,
			three_p_rate   = excluded.three_p_rate,
			three_p_pct    = excluded.three_p_pct,
			ft_rate        = excluded.ft_rate,
			to_rate        = excluded.to_rate,
			efg_pct        = excluded.efg_pct,
			fetched_at     = excluded.fetched_at`,
		m.Team, m.Games, m.Pace, m.OffEfficiency, m.DefEfficiency,
		m.ThreePRate, m.ThreePPct, m.FTRate, m.TORate, m.EFGPct,
		fmtTime(m.FetchedAt),
	); err != nil {
		return fmt.Errorf("storage.SaveTeamMetrics: upsert %s: %w", m.Team, err)
	}
	return nil
}

// GetTeamMetrics devuelve las métricas cacheadas del equipo, o nil si no
// hay entrada.
func (s *SQLiteStorage) GetTeamMetrics(ctx context.Context, team string) (*domain.TeamMetrics, error) {
	var m domain.TeamMetrics
	var fetchedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT team, games, pace, off_efficiency, def_efficiency, three_p_rate,
		       three_p_pct, ft_rate, to_rate, efg_pct, fetched_at
		FROM team_stats WHERE team = ?
	`, team).Scan(
		&m.Team, &m.Games, &m.Pace, &m.OffEfficiency, &m.DefEfficiency,
		&m.ThreePRate, &m.ThreePPct, &m.FTRate, &m.TORate, &m.EFGPct,
		&fetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetTeamMetrics: query %s: %w", team, err)
	}
	m.FetchedAt = parseTime(fetchedAt)
	return &m, nil
}

// PruneOlderThan elimina polls anteriores al corte. Los resultados se
// conservan siempre.
func (s *SQLiteStorage) PruneOlderThan(ctx context.Context, cutoff time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM polls WHERE ts < ?`, fmtTime(cutoff),
	); err != nil {
		return fmt.Errorf("storage.PruneOlderThan: delete: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// Los timestamps se guardan como texto RFC3339 en UTC: comparables
// lexicográficamente y legibles con cualquier cliente sqlite.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return fmtTime(t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
