// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output; DPanic panics, which is how an
//     unregistered app id in the window stack fails loudly while developing
//
// Every long-lived component takes a *Logger and derives a named child:
//
//	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
//	store := desktop.NewStore(reg, desktop.WithLogger(logger.Component("desktop")))
//	logger.Info("Server starting", zap.String("port", "8000"))
//
// Tests use logging.NewNop().
package logging
