package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// GameProvider obtiene el estado de los partidos desde el feed en vivo.
type GameProvider interface {
	// FetchScoreboard devuelve un snapshot por partido del scoreboard de la
	// fecha dada. Con fecha cero consulta el día actual.
	FetchScoreboard(ctx context.Context, date time.Time) ([]domain.GameSnapshot, error)

	// FetchGameDetail devuelve el resumen de un partido: líneas de
	// cierre/apertura, estadísticas en vivo por equipo y marcador.
	FetchGameDetail(ctx context.Context, gameID string) (domain.GameDetail, error)
}
