// Package scheduler provides the timer plumbing shared by the boot controller,
// the onboarding orchestrator and the notification queue.
//
// State machines in this backend never call time.AfterFunc directly. They
// describe timers as effects and hand them to a Slot, which guarantees:
//   - at most one pending timer per slot
//   - clear-before-rearm on every reschedule
//   - callbacks from cleared timers never run, even if the runtime already
//     started delivering them
//
// ManualClock replaces fake timers in tests:
//
//	clock := scheduler.NewManualClock(time.Unix(0, 0))
//	slot := scheduler.NewSlot(clock)
//	slot.Arm(time.Second, func() { fired = true })
//	clock.Advance(time.Second)
package scheduler
