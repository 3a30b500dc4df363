// Package monitor serves the recorder's status over HTTP and streams its
// decisions over WebSocket.
package monitor

import "time"

// Monitor configuration constants
const (
	// Entries returned by /api/status and the "recent" request
	RecentLimit = 20

	// Per-connection inbound message limit (sliding window)
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// HTTP server timeouts
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	ShutdownTimeout = 5 * time.Second

	// Deadline for writing one event to a WebSocket client
	BroadcastTimeout = 2 * time.Second
)
