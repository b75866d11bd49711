package ports

import (
	"context"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// StatsProvider obtiene las métricas de temporada de un equipo.
type StatsProvider interface {
	// TeamMetrics devuelve las métricas del equipo, o nil sin error si el
	// equipo no se encuentra en la fuente. El scorer degrada con nil.
	TeamMetrics(ctx context.Context, team string) (*domain.TeamMetrics, error)
}
