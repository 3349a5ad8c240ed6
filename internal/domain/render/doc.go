/*
Package render binds the window stack to whatever draws it.

Compose turns a desktop.State into frames for the open windows, bottom to
top, resolving each window against the app registry. Only the active frame
carries onboarding highlights and the ghost drag callback, so the tour can
never highlight a background window.

Manager subscribes to the store through a structural selector (the visible
list is rebuilt on every commit, so identity comparison would re-render on
every change) and to tour highlight changes, and pushes fresh frames to a
Renderer.

A window whose app is not registered is a configuration defect. Manager logs
it at DPanic, which panics under a development logger.
*/
package render
