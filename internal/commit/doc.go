// Package commit implements the Commit Controller component.
//
// The Commit Controller:
//   - Submits one commitment at the desired quantity
//   - Parses the site's minimum-quantity rejection text
//   - Retries exactly once at the site minimum when it exceeds the desired amount
//   - Reports a terminal outcome per listing; it never loops and never deduplicates
package commit
