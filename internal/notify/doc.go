// Package notify delivers monitor events to outward-facing sinks.
//
// The Discord sink renders one webhook embed per notification class:
// new deals (green, batched per cycle), quantity updates (orange),
// commitment updates (purple), monitor errors (red), startup (blue),
// and the all-deals summary (blue). Fanout composes multiple sinks.
//
// Delivery is best effort. The monitor logs notification failures and
// keeps going; a dead webhook must never stop a cycle.
package notify
