package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// Storage persiste el log de polls, los resultados finales y la caché de
// métricas de equipo.
type Storage interface {
	// SavePoll persiste el registro de decisión de un poll.
	SavePoll(ctx context.Context, p domain.PollRecord) error

	// GetPolls devuelve los polls registrados en el rango de tiempo dado.
	GetPolls(ctx context.Context, from, to time.Time) ([]domain.PollRecord, error)

	// SaveResult persiste el resultado final de un partido. Idempotente:
	// una fila ya registrada para el game_id se conserva intacta.
	SaveResult(ctx context.Context, r domain.GameResult) error

	// HasResult indica si el partido ya tiene resultado registrado.
	HasResult(ctx context.Context, gameID string) (bool, error)

	// GetResults devuelve los resultados registrados en el rango dado.
	GetResults(ctx context.Context, from, to time.Time) ([]domain.GameResult, error)

	// SaveTeamMetrics guarda en caché las métricas de temporada de un equipo.
	SaveTeamMetrics(ctx context.Context, m domain.TeamMetrics) error

	// GetTeamMetrics devuelve las métricas cacheadas del equipo, o nil si no
	// hay entrada. El llamador decide la validez según FetchedAt.
	GetTeamMetrics(ctx context.Context, team string) (*domain.TeamMetrics, error)

	// PruneOlderThan elimina polls anteriores al corte para acotar el
	// crecimiento de la base.
	PruneOlderThan(ctx context.Context, cutoff time.Time) error

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
