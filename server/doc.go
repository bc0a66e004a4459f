// Package server exposes the daemon's control surface over HTTP: the
// action message endpoint, a WebSocket channel for connected page
// sessions, and version/health endpoints.
package server
