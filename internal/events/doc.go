// Package events defines the event sink boundary between the terminal
// core and its subscribers, plus the WebSocket hub that fans terminal
// output out to connected UIs.
//
// Two event kinds cross this boundary:
//   - terminal-output {terminalId, data}: one per output chunk, order
//     preserved per terminal
//   - terminal-exit {terminalId, ""}: exactly once per session, after
//     the last output event for that session
package events
