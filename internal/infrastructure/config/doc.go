// Package config provides 12-factor configuration for the FolioOS backend.
//
// Settings come from environment variables with defaults. Pacing overrides
// live in an optional TOML timing profile, and extra apps in an optional
// YAML manifest read by the window registry.
//
// Configuration Sections:
//   - Server: HTTP listen address
//   - Logging: log level and output format
//   - Storage: persistence backend (memory, file, sqlite) and its path
//   - Desktop: viewport, device signal, reduced motion, notification timing
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	profile, err := config.LoadTimingProfile(cfg.Desktop.TimingProfile)
//	timings := profile.BootTimings(boot.DefaultTimings())
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - STORAGE_BACKEND, STORAGE_PATH
//   - VIEWPORT_WIDTH, VIEWPORT_HEIGHT, DEVICE, REDUCED_MOTION
//   - NOTIFICATION_DISPLAY, TIMING_PROFILE, APP_MANIFEST
package config
