// Package ws streams desktop session state to the front end.
//
// Every connection receives the current value of each component on connect
// and then every change:
//
//   - system: connection greeting with its id
//   - desktop: System Store snapshot (window stack, cursors, preferences)
//   - boot: boot phase
//   - tour: onboarding status, highlights and tooltip
//   - notifications: current and pending notifications
//   - frames: composed window frames
//   - pong, error: replies to client messages
//
// Clients may send {"type": "ping"}. Actions go through the HTTP API.
//
// Outgoing messages are coalesced per type, so a slow client skips
// intermediate states instead of stalling the store.
//
// Example Usage:
//
//	handler := ws.NewHandler(sources, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
