// Package server assembles the companion: configuration, logging,
// metrics, the terminal session manager, the project registry, and the
// HTTP/WebSocket surfaces.
package server
