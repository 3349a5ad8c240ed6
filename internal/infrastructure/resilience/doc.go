/*
Package resilience provides the circuit breaker that guards preference storage.

# Overview

Persisted preferences must never break the desktop. When the storage backend
keeps failing (disk full, read-only volume, locked database) the breaker opens
and callers fall back to in-memory defaults without touching the backend until
the cooldown elapses.

# Usage

	breaker := resilience.New("storage", resilience.Settings{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state changed", zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	err := breaker.Do(func() error {
		return storage.Set(ctx, key, data)
	})

# Pattern

	Closed --[N consecutive failures]-> Open --[cooldown]-> Half-Open --[probe ok]-> Closed
	                                                           |
	                                                    [probe failed]
	                                                           v
	                                                         Open
*/
package resilience
