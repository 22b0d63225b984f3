// Package slotlock provides short-lived locks on calendar slots.
//
// Checking availability and creating an event are two separate calendar
// calls, so two concurrent booking requests for the same slot can both see
// it free and both book it. A Locker held across both calls narrows that
// window for requests that go through the same lock backend. It does not
// protect against writers that bypass calbot.
//
// Three backends are provided: Noop (no locking, the single-user default),
// Memory (one process) and Redis (shared between processes).
package slotlock
