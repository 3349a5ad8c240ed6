/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

Metrics are registered against an injected prometheus.Registerer so every
test can use its own registry. Besides HTTP traffic the collector tracks the
desktop session: window stack size, launches per app, the active boot phase,
onboarding steps and outcomes, delivered notifications and the storage
breaker.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	metrics.RecordLaunch("terminal")
	metrics.SetBootPhase("welcome")
*/
package monitoring
