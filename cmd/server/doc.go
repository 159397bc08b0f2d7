// Command server runs the desktop companion service: terminal session
// management over HTTP commands and a WebSocket event stream.
package main
