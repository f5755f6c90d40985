// Package feed implements the live WebSocket event feed.
//
// The Hub serves /ws/events and pushes one JSON Frame per monitor event
// to every connected peer. Slow peers lose their oldest queued frame
// rather than stalling the broadcaster; dead peers are dropped after a
// missed keepalive.
package feed
