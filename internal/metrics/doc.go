// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Cycle counts by outcome and cycle durations
//   - Listings seen in the latest snapshot
//   - Change events by kind
//   - Commit attempts by outcome
//   - Store and notification error counts
package metrics
