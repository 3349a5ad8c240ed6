package persist

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/resilience"
)

// Guarded routes every call through a circuit breaker so a broken backend is
// left alone for a cooldown instead of failing on every preference change.
// A missing key is not a backend failure.
type Guarded struct {
	backend Storage
	breaker *resilience.Breaker
	logger  *logging.Logger
}

// NewGuarded wraps backend
func NewGuarded(backend Storage, settings resilience.Settings, logger *logging.Logger) *Guarded {
	if logger == nil {
		logger = logging.NewNop()
	}
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to resilience.State) {
			logger.Warn("Storage breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
	}

	return &Guarded{
		backend: backend,
		breaker: resilience.New("storage", settings),
		logger:  logger,
	}
}

// Get implements Storage
func (g *Guarded) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var missing bool

	err := g.breaker.Do(func() error {
		v, err := g.backend.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			missing = true
			return nil
		}
		value = v
		return err
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set implements Storage
func (g *Guarded) Set(ctx context.Context, key string, value []byte) error {
	return g.breaker.Do(func() error {
		return g.backend.Set(ctx, key, value)
	})
}

// Delete implements Storage
func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.breaker.Do(func() error {
		return g.backend.Delete(ctx, key)
	})
}

// BreakerState exposes the breaker state for health reporting
func (g *Guarded) BreakerState() resilience.State {
	return g.breaker.State()
}
