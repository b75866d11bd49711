package espn

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// FetchGameDetail devuelve el resumen de un partido: líneas de
// cierre/apertura del pickcenter, estadísticas en vivo por equipo y el
// marcador del header. Campos ausentes en el feed quedan en cero/nil.
func (c *Client) FetchGameDetail(ctx context.Context, gameID string) (domain.GameDetail, error) {
	url := fmt.Sprintf("%s/%s/summary?event=%s", c.base, c.league, gameID)

	var resp summaryResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return domain.GameDetail{}, fmt.Errorf("espn.FetchGameDetail: %w", err)
	}

	d := domain.GameDetail{GameID: gameID}

	if len(resp.Pickcenter) > 0 {
		d.ClosingTotal = parseSidedLine(resp.Pickcenter[0].Total.Over.Close.Line)
		d.OpeningTotal = parseSidedLine(resp.Pickcenter[0].Total.Over.Open.Line)
	}

	if len(resp.Header.Competitions) > 0 {
		comp := resp.Header.Competitions[0]
		d.Completed = comp.Status.Type.State == "post"
		for _, c := range comp.Competitors {
			score, _ := strconv.Atoi(c.Score)
			switch c.HomeAway {
			case "home":
				d.HomeScore = score
			case "away":
				d.AwayScore = score
			}
		}
	}

	for _, team := range resp.Boxscore.Teams {
		switch team.HomeAway {
		case "home":
			d.HomeLive = mapLiveStats(team.Statistics)
		case "away":
			d.AwayLive = mapLiveStats(team.Statistics)
		}
	}

	return d, nil
}
