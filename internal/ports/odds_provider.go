package ports

import (
	"context"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// OddsProvider obtiene las líneas de total publicadas por las casas.
type OddsProvider interface {
	// FetchTotals devuelve la línea de total disponible por partido del día.
	// Partidos sin mercado de totales no aparecen en el resultado.
	FetchTotals(ctx context.Context) ([]domain.TotalLine, error)
}
