// Package api provides the HTTP API server for listing, picking, searching,
// and completing routines.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":5050")
	ListenAddr string
}
