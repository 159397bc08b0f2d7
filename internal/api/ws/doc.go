// Package ws serves the WebSocket endpoint. Outbound frames are the
// terminal-output and terminal-exit events broadcast by the hub;
// inbound frames carry input bytes, resize requests, and pings.
package ws
