// Package terminal manages interactive shell sessions on pseudo-terminals.
//
// Each session binds one login shell to a PTY. A dedicated reader
// goroutine streams output chunks to an event sink for the session's
// whole life, and a reaper goroutine waits on the child to reclaim
// process resources. The caller-facing operations (write, resize, kill,
// status, list, find-by-project) act on registry handles directly and
// never share an execution context with a session's blocking read.
//
// Lifecycle notes:
//   - Liveness is monotonic: once a session's output stream ends, it is
//     never marked running again. A new spawn always gets a new id.
//   - A naturally exited session stays listed until an explicit Kill.
//   - Kill is a best-effort interrupt (Ctrl+C), not a forced terminate.
//     A process that ignores it keeps running with its reader loop
//     active even though the registry no longer lists it.
package terminal
