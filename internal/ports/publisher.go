package ports

import (
	"context"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

// Publisher difunde decisiones en tiempo real a consumidores externos.
type Publisher interface {
	// PublishDecision difunde el registro de un poll: última decisión por
	// partido y evento en el stream de decisiones.
	PublishDecision(ctx context.Context, p domain.PollRecord) error

	// Close libera la conexión con el broker.
	Close() error
}
