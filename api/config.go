// Package api provides an HTTP API server for inspecting a running gazetap
// stream: health, session counters, recent samples and Prometheus metrics.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string
}
