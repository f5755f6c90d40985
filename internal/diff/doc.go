// Package diff implements the Diff Engine component.
//
// The Diff Engine:
//   - Compares one scraped snapshot against the stored baseline
//   - Emits NewListing and QuantityChanged events in snapshot order
//   - Stays silent for unchanged and disappeared listings
//   - Is a pure function: no persistence, no network, no clock
package diff
