// Package control exposes the recorder's liveness over the standard gRPC
// health protocol.
package control

import "time"

// ServiceName is the health-checked service.
const ServiceName = "sepia.Recorder"

// Server configuration constants
const (
	// Keepalive configuration
	KeepaliveTime    = 10 * time.Second
	KeepaliveTimeout = 3 * time.Second

	// Time allowed for in-flight calls on shutdown
	ShutdownTimeout = 5 * time.Second
)
