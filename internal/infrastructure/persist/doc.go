// Package persist stores the few preferences that outlive a session:
// wallpaper and dock configuration, onboarding completion, and the set of
// notifications already shown.
//
// Backends implement Storage (memory, one-file-per-key, SQLite). Guarded
// puts a circuit breaker in front of a backend. Boundary binds a versioned
// Codec to a key and swallows every failure, so the desktop stays fully
// functional with zero persisted state:
//
//	prefs := persist.NewBoundary(storage, persist.Codec[Record]{Key: persist.KeyPreferences, Version: 1}, logger)
//	rec, ok := prefs.Load(ctx)
//	prefs.Save(ctx, rec)
package persist
