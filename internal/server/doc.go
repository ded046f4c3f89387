// Package server exposes dojo over HTTP.
//
// Routes:
//
//	GET /health   {"status":"healthy","sessions":N}
//	GET /ws       WebSocket terminal sessions, see package gateway
//	GET /metrics  Prometheus exposition, when enabled
//
// Every route goes through a CORS middleware keyed on the configured
// frontend origin. When running under systemd the server reports READY once
// it is listening and STOPPING when shutdown begins.
package server
