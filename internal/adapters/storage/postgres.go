package storage

// postgres.go — PostgreSQL backend for shared deployments.
//
// Same tables as the SQLite backend with native types: TIMESTAMPTZ,
// BOOLEAN and JSONB. Result rows stay write-once via ON CONFLICT DO
// NOTHING.

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS polls (
    id                TEXT PRIMARY KEY,
    ts                TIMESTAMPTZ NOT NULL,
    game_id           TEXT NOT NULL,
    home_team         TEXT NOT NULL,
    away_team         TEXT NOT NULL,
    home_score        INTEGER NOT NULL DEFAULT 0,
    away_score        INTEGER NOT NULL DEFAULT 0,
    period            INTEGER NOT NULL DEFAULT 0,
    clock_minutes     INTEGER NOT NULL DEFAULT 0,
    clock_seconds     INTEGER NOT NULL DEFAULT 0,
    status            TEXT NOT NULL DEFAULT '',
    line              DOUBLE PRECISION NOT NULL DEFAULT 0,
    opening_line      DOUBLE PRECISION NOT NULL DEFAULT 0,
    closing_line      DOUBLE PRECISION NOT NULL DEFAULT 0,
    minutes_elapsed   DOUBLE PRECISION NOT NULL DEFAULT 0,
    minutes_remaining DOUBLE PRECISION NOT NULL DEFAULT 0,
    required_ppm      DOUBLE PRECISION NOT NULL DEFAULT 0,
    current_ppm       DOUBLE PRECISION NOT NULL DEFAULT 0,
    ppm_diff          DOUBLE PRECISION NOT NULL DEFAULT 0,
    projected_final   DOUBLE PRECISION NOT NULL DEFAULT 0,
    side              TEXT NOT NULL DEFAULT '',
    triggered         BOOLEAN NOT NULL DEFAULT FALSE,
    reasons           JSONB NOT NULL DEFAULT '[]',
    confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
    units             DOUBLE PRECISION NOT NULL DEFAULT 0,
    breakdown         JSONB NOT NULL DEFAULT '{}',
    notes             TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_polls_ts   ON polls(ts DESC);
CREATE INDEX IF NOT EXISTS idx_polls_game ON polls(game_id);

CREATE TABLE IF NOT EXISTS results (
    game_id        TEXT PRIMARY KEY,
    date           TEXT NOT NULL,
    home_team      TEXT NOT NULL,
    away_team      TEXT NOT NULL,
    final_home     INTEGER NOT NULL DEFAULT 0,
    final_away     INTEGER NOT NULL DEFAULT 0,
    final_total    INTEGER NOT NULL DEFAULT 0,
    line           DOUBLE PRECISION NOT NULL DEFAULT 0,
    opening_line   DOUBLE PRECISION NOT NULL DEFAULT 0,
    ou_result      TEXT NOT NULL DEFAULT '',
    went_to_ot     BOOLEAN NOT NULL DEFAULT FALSE,
    triggered      BOOLEAN NOT NULL DEFAULT FALSE,
    trigger_side   TEXT NOT NULL DEFAULT '',
    max_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    max_units      DOUBLE PRECISION NOT NULL DEFAULT 0,
    triggered_at   TIMESTAMPTZ,
    outcome        TEXT NOT NULL DEFAULT '',
    unit_profit    DOUBLE PRECISION NOT NULL DEFAULT 0,
    notes          TEXT NOT NULL DEFAULT '',
    recorded_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_date     ON results(date);
CREATE INDEX IF NOT EXISTS idx_results_recorded ON results(recorded_at DESC);

CREATE TABLE IF NOT EXISTS team_stats (
    team           TEXT PRIMARY KEY,
    games          INTEGER NOT NULL DEFAULT 0,
    pace           DOUBLE PRECISION NOT NULL DEFAULT 0,
    off_efficiency DOUBLE PRECISION NOT NULL DEFAULT 0,
    def_efficiency DOUBLE PRECISION NOT NULL DEFAULT 0,
    three_p_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
    three_p_pct    DOUBLE PRECISION NOT NULL DEFAULT 0,
    ft_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
    to_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
    efg_pct        DOUBLE PRECISION NOT NULL DEFAULT 0,
    fetched_at     TIMESTAMPTZ NOT NULL
);
`

// PostgresStorage implements ports.Storage on PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects to the given DSN and applies the schema.
func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewPostgresStorage: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewPostgresStorage: ping: %w", err)
	}
	if _, err := db.Exec(pgSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewPostgresStorage: apply schema: %w", err)
	}
	return &PostgresStorage{db: db}, nil
}

// ─── Polls ───────────────────────────────────────────────────────────────────

func (s *PostgresStorage) SavePoll(ctx context.Context, p domain.PollRecord) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		p.ID, p.Timestamp.UTC(), p.GameID, p.HomeTeam, p.AwayTeam,
		p.HomeScore, p.AwayScore, p.Period, p.ClockMinutes, p.ClockSeconds,
		string(p.Status), p.Line, p.OpeningLine, p.ClosingLine,
		p.Reading.MinutesElapsed, p.Reading.MinutesRemaining,
		p.Reading.RequiredPPM, p.Reading.CurrentPPM, p.Reading.PPMDifference,
		p.Reading.ProjectedFinal, string(p.Side), p.Triggered,
		string(reasons), p.Confidence, p.Units, string(breakdown), p.Notes,
	); err != nil {
		return fmt.Errorf("storage.SavePoll: insert: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetPolls(ctx context.Context, from, to time.Time) ([]domain.PollRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, game_id, home_team, away_team, home_score, away_score,
		       period, clock_minutes, clock_seconds, status, line, opening_line,
		       closing_line, minutes_elapsed, minutes_remaining, required_ppm,
		       current_ppm, ppm_diff, projected_final, side, triggered, reasons,
		       confidence, units, breakdown, notes
		FROM polls
		WHERE ts BETWEEN $1 AND $2
		ORDER BY ts ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetPolls: query: %w", err)
	}
	defer rows.Close()

	var polls []domain.PollRecord
	for rows.Next() {
		var p domain.PollRecord
		var status, side string
		var reasons, breakdown []byte

		if err := rows.Scan(
			&p.ID, &p.Timestamp, &p.GameID, &p.HomeTeam, &p.AwayTeam,
			&p.HomeScore, &p.AwayScore, &p.Period, &p.ClockMinutes,
			&p.ClockSeconds, &status, &p.Line, &p.OpeningLine, &p.ClosingLine,
			&p.Reading.MinutesElapsed, &p.Reading.MinutesRemaining,
			&p.Reading.RequiredPPM, &p.Reading.CurrentPPM,
			&p.Reading.PPMDifference, &p.Reading.ProjectedFinal,
			&side, &p.Triggered, &reasons, &p.Confidence, &p.Units,
			&breakdown, &p.Notes,
		); err != nil {
			return nil, fmt.Errorf("storage.GetPolls: scan row: %w", err)
		}

		p.Status = domain.GameStatus(status)
		p.Side = domain.BetSide(side)
		p.Reading.Total = p.HomeScore + p.AwayScore
		if err := json.Unmarshal(reasons, &p.Reasons); err != nil {
			return nil, fmt.Errorf("storage.GetPolls: decode reasons %s: %w", p.ID, err)
		}
		if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
			return nil, fmt.Errorf("storage.GetPolls: decode breakdown %s: %w", p.ID, err)
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

// ─── Results ─────────────────────────────────────────────────────────────────

func (s *PostgresStorage) SaveResult(ctx context.Context, r domain.GameResult) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO results
			(game_id, date, home_team, away_team, final_home, final_away,
			 final_total, line, opening_line, ou_result, went_to_ot, triggered,
			 trigger_side, max_confidence, max_units, triggered_at, outcome,
			 unit_profit, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20)
		ON CONFLICT (game_id) DO NOTHING`,
		r.GameID, r.Date, r.HomeTeam, r.AwayTeam, r.FinalHomeScore,
		r.FinalAwayScore, r.FinalTotal, r.Line, r.OpeningLine,
		string(r.OUResult), r.WentToOT, r.Triggered, string(r.TriggerSide),
		r.MaxConfidence, r.MaxUnits, pgNullTime(r.TriggeredAt),
		string(r.Outcome), r.UnitProfit, r.Notes, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveResult: insert %s: %w", r.GameID, err)
	}
	return nil
}

func (s *PostgresStorage) HasResult(ctx context.Context, gameID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM results WHERE game_id = $1`, gameID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage.HasResult: query %s: %w", gameID, err)
	}
	return true, nil
}

func (s *PostgresStorage) GetResults(ctx context.Context, from, to time.Time) ([]domain.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, date, home_team, away_team, final_home, final_away,
		       final_total, line, opening_line, ou_result, went_to_ot,
		       triggered, trigger_side, max_confidence, max_units,
		       triggered_at, outcome, unit_profit, notes
		FROM results
		WHERE recorded_at BETWEEN $1 AND $2
		ORDER BY recorded_at ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetResults: query: %w", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var r domain.GameResult
		var ou, side, outcome string
		var triggeredAt sql.NullTime

		if err := rows.Scan(
			&r.GameID, &r.Date, &r.HomeTeam, &r.AwayTeam, &r.FinalHomeScore,
			&r.FinalAwayScore, &r.FinalTotal, &r.Line, &r.OpeningLine,
			&ou, &r.WentToOT, &r.Triggered, &side, &r.MaxConfidence,
			&r.MaxUnits, &triggeredAt, &outcome, &r.UnitProfit, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("storage.GetResults: scan row: %w", err)
		}

		r.OUResult = domain.OUResult(ou)
		r.TriggerSide = domain.BetSide(side)
		r.Outcome = domain.Outcome(outcome)
		if triggeredAt.Valid {
			r.TriggeredAt = triggeredAt.Time
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ─── Team stats ──────────────────────────────────────────────────────────────

func (s *PostgresStorage) SaveTeamMetrics(ctx context.Context, m domain.TeamMetrics) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO team_stats
			(team, games, pace, off_efficiency, def_efficiency, three_p_rate,
			 three_p_pct, ft_rate, to_rate, efg_pct, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (team) DO UPDATE SET
			games          = EXCLUDED.games,
			pace           = EXCLUDED.pace,
			off_efficiency = EXCLUDED.off_efficiency,
			def_efficiency = EXCLUDED.def_efficiency,
			three_p_rate   = EXCLUDED.three_p_rate,
			three_p_pct    = EXCLUDED.three_p_pct,
			ft_rate        = EXCLUDED.ft_rate,
			to_rate        = EXCLUDED.to_rate,
			efg_pct        = EXCLUDED.efg_pct,
			fetched_at     = EXCLUDED.fetched_at`,
		m.Team, m.Games, m.Pace, m.OffEfficiency, m.DefEfficiency,
		m.ThreePRate, m.ThreePPct, m.FTRate, m.TORate, m.EFGPct,
		m.FetchedAt.UTC(),
	); err != nil {
		return fmt.Errorf("storage.SaveTeamMetrics: upsert %s: %w", m.Team, err)
	}
	return nil
}

func (s *PostgresStorage) GetTeamMetrics(ctx context.Context, team string) (*domain.TeamMetrics, error) {
	var m domain.TeamMetrics
	err := s.db.QueryRowContext(ctx, `
		SELECT team, games, pace, off_efficiency, def_efficiency, three_p_rate,
		       three_p_pct, ft_rate, to_rate, efg_pct, fetched_at
		FROM team_stats WHERE team = $1
	`, team).Scan(
		&m.Team, &m.Games, &m.Pace, &m.OffEfficiency, &m.DefEfficiency,
		&m.ThreePRate, &m.ThreePPct, &m.FTRate, &m.TORate, &m.EFGPct,
		&m.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.GetTeamMetrics: query %s: %w", team, err)
	}
	return &m, nil
}

// ─── Maintenance ─────────────────────────────────────────────────────────────

func (s *PostgresStorage) PruneOlderThan(ctx context.Context, cutoff time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM polls WHERE ts < $1`, cutoff.UTC(),
	); err != nil {
		return fmt.Errorf("storage.PruneOlderThan: delete: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func pgNullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
