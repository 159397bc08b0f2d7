// Package http provides the REST command surface: terminal session
// operations (spawn, input, resize, kill, status, list, find-by-project)
// and project registry CRUD. Asynchronous terminal output is not served
// here; subscribers get it over the WebSocket event stream.
package http
