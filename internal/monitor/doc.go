// Package monitor drives the reconciliation loop against the buying-group
// site.
//
// Each cycle walks a fixed sequence: fetch the current listings, diff them
// against the deal store, auto-commit new listings when enabled, persist
// every touched listing, and notify. Cycles run on a fixed interval with
// no overlap, and a failed cycle is reported through the notifier without
// stopping the loop.
//
// The monitor owns all deal store access while running. Collaborators are
// injected: a Fetcher for snapshots, a commit.CommitFunc for the remote
// commitment call, and a notify.Notifier for outbound events.
package monitor
