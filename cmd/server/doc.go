// Package main is the entry point for the FolioOS desktop session server.
//
// The server owns the desktop a visitor sees: the window stack, the boot
// sequence, the guided tour and the notification queue. A browser front end
// renders what it is told over HTTP and a WebSocket stream.
//
// Architecture:
//
//	Frontend (React) → Go Backend → Session (store, boot, tour, notifications)
//	                            → Storage (memory, file or SQLite)
//
// Commands:
//   - serve: run the HTTP and WebSocket server
//   - simulate: replay a first visit on a fake clock and print the timeline
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server serve --port 8000
//
//	# Development mode (colored logs, debug level)
//	./server serve --dev
//
//	# What does a phone visitor see in the first minute?
//	./server simulate --device mobile --duration 1m
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
