// Package health serves the monitor's operational HTTP surface: liveness
// checks, the status snapshot, Prometheus metrics, and the live event
// feed. Every endpoint is read-only and safe to poll.
package health
