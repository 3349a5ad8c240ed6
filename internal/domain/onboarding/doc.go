/*
Package onboarding runs the first-visit guided tour.

The tour walks a device-specific step order (StepOrders). Each step either
auto-advances after a duration or, for window_drag, waits for the ghost drag
demo to report completion. Finishing or skipping the tour persists
hasCompletedTour, after which StartTour is a no-op; StartTour is also a no-op
until Hydrate has loaded that flag.

Transition is pure and returns effects as data. The Orchestrator executes
them: step timers on one scheduler.Slot, the mobile reveal (close a window,
relaunch it when the tour ends) on another, and persistence through
persist.OnboardingStore.

Highlights and tooltips are projections of the current step. Consumers read
them; the tour holds no reference to the dock, window chrome or icons.
*/
package onboarding
