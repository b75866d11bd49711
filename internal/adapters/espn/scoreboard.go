package espn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// FetchScoreboard devuelve un snapshot por partido del scoreboard de la
// fecha dada. Con fecha cero consulta el día actual. Eventos sin los dos
// competidores se omiten.
func (c *Client) FetchScoreboard(ctx context.Context, date time.Time) ([]domain.GameSnapshot, error) {
	url := fmt.Sprintf("%s/%s/scoreboard", c.base, c.league)
	if !date.IsZero() {
		url += "?dates=" + date.Format("20060102")
	}

	var resp scoreboardResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("espn.FetchScoreboard: %w", err)
	}

	snapshots := make([]domain.GameSnapshot, 0, len(resp.Events))
	for _, e := range resp.Events {
		s, ok := mapSnapshot(e, c.sport)
		if !ok {
			slog.Warn("skipping malformed scoreboard event", "event_id", e.ID)
			continue
		}
		snapshots = append(snapshots, s)
	}

	slog.Debug("scoreboard fetched", "league", c.league, "games", len(snapshots))
	return snapshots, nil
}
