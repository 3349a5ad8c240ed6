// Package boot runs the boot sequence: hidden, booting, welcome, complete.
//
// Transition is a pure function returning the next state plus effects as
// data; Controller executes those effects on a scheduler.Slot. The phase only
// moves forward. When the session flag says the desktop already booted,
// Mount goes straight to complete without any intermediate phase.
package boot
