// Package store implements the Deal Store persistence layer.
//
// Three backends share one interface:
//   - sqlite: local single-host deployments (default)
//   - postgres: deployments where several processes read the same state
//   - memory: tests and dry runs
//
// Every Upsert is a durable single-statement write. first_seen_at is
// stamped on the insert path only, so it survives any number of updates.
package store
