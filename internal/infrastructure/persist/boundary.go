package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

var (
	// ErrCorrupt means a stored value could not be decoded
	ErrCorrupt = errors.New("corrupt persisted value")
	// ErrVersion means a stored value has a version no decoder understands
	ErrVersion = errors.New("unsupported persisted version")
)

// Persisted keys. Each is an independent boundary; window and session state
// never crosses any of them.
const (
	KeyPreferences   = "folio.desktop.preferences"
	KeyOnboarding    = "folio.onboarding"
	KeyNotifications = "folio.notifications"
)

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// Codec is the versioned (de)serializer for one persisted record type.
// Upgrades decode payloads written by older versions.
type Codec[T any] struct {
	Key      string
	Version  int
	Upgrades map[int]func(data []byte) (T, error)
}

// Encode wraps v in a versioned envelope
func (c Codec[T]) Encode(v T) ([]byte, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", c.Key, err)
	}
	return sonic.Marshal(envelope{Version: c.Version, Data: data})
}

// Decode unwraps an envelope, upgrading older versions
func (c Codec[T]) Decode(raw []byte) (T, error) {
	var zero T

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.Key, err)
	}

	if env.Version == c.Version {
		var v T
		if err := sonic.Unmarshal(env.Data, &v); err != nil {
			return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.Key, err)
		}
		return v, nil
	}

	upgrade, ok := c.Upgrades[env.Version]
	if !ok {
		return zero, fmt.Errorf("%w: %s v%d", ErrVersion, c.Key, env.Version)
	}
	v, err := upgrade(env.Data)
	if err != nil {
		return zero, fmt.Errorf("%w: %s v%d: %v", ErrCorrupt, c.Key, env.Version, err)
	}
	return v, nil
}

// Boundary loads and saves one record type under one key. It never returns
// errors: unreadable, corrupt or unwritable state is logged and the caller
// keeps running on in-memory defaults.
type Boundary[T any] struct {
	storage Storage
	codec   Codec[T]
	logger  *logging.Logger
}

// NewBoundary binds a codec to a storage backend
func NewBoundary[T any](storage Storage, codec Codec[T], logger *logging.Logger) *Boundary[T] {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Boundary[T]{storage: storage, codec: codec, logger: logger}
}

// Load returns the stored record, or false when nothing usable is stored
func (b *Boundary[T]) Load(ctx context.Context) (T, bool) {
	var zero T
	if b == nil || b.storage == nil {
		return zero, false
	}

	raw, err := b.storage.Get(ctx, b.codec.Key)
	if errors.Is(err, ErrNotFound) {
		return zero, false
	}
	if err != nil {
		b.logger.Warn("Persisted state unavailable, using defaults",
			zap.String("key", b.codec.Key), zap.Error(err))
		return zero, false
	}

	v, err := b.codec.Decode(raw)
	if err != nil {
		b.logger.Warn("Discarding persisted state",
			zap.String("key", b.codec.Key), zap.Error(err))
		return zero, false
	}
	return v, true
}

// Save stores the record. Reports whether the write reached storage.
func (b *Boundary[T]) Save(ctx context.Context, v T) bool {
	if b == nil || b.storage == nil {
		return false
	}

	raw, err := b.codec.Encode(v)
	if err != nil {
		b.logger.Error("Failed to encode persisted state",
			zap.String("key", b.codec.Key), zap.Error(err))
		return false
	}
	if err := b.storage.Set(ctx, b.codec.Key, raw); err != nil {
		b.logger.Warn("Failed to persist state",
			zap.String("key", b.codec.Key), zap.Error(err))
		return false
	}
	return true
}

// Clear removes the record
func (b *Boundary[T]) Clear(ctx context.Context) {
	if b == nil || b.storage == nil {
		return
	}
	if err := b.storage.Delete(ctx, b.codec.Key); err != nil {
		b.logger.Warn("Failed to clear persisted state",
			zap.String("key", b.codec.Key), zap.Error(err))
	}
}
