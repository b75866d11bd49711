package ports

import (
	"context"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// Notifier presenta las decisiones de un ciclo al usuario.
type Notifier interface {
	// Notify muestra los polls del ciclo ordenados por confianza.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, polls []domain.PollRecord) error
}
