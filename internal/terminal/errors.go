package terminal

import "errors"

var (
	// ErrSessionNotFound indicates an operation referenced an unknown
	// session id. Kill and Status treat unknown ids as a normal empty
	// result instead.
	ErrSessionNotFound = errors.New("terminal session not found")

	// ErrAllocate indicates PTY allocation failed.
	ErrAllocate = errors.New("pty allocation failed")

	// ErrSpawn indicates the shell could not be started.
	ErrSpawn = errors.New("shell spawn failed")

	// ErrIO indicates a write or resize syscall failed on a live session.
	ErrIO = errors.New("terminal io failed")
)
