// Package window defines the window entity, its per-app props variants, the
// app registry and default placement.
//
// A window is identified by its AppID: an app has at most one window, open or
// minimized. Props are a closed set of variants, one per app that needs a
// payload, so renderers never probe optional fields:
//
//	w := window.Instance{ID: window.AppMarkdown, Props: window.MarkdownProps{Source: "/docs/cv.md"}}
//
// Placement is computed from a Layout (status bar, dock, margins, cascade) and
// the current Viewport; maximized apps fill the band between status bar and dock.
package window
