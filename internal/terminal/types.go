package terminal

import (
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
)

// Session binds one spawned shell to its PTY and liveness state.
//
// The master file serves as both the input channel and the geometry
// control channel. It is referenced by the registry entry, the reader
// goroutine, and any in-flight operation, so removing the session from
// the registry never invalidates it; the reaper closes it after the
// child has exited and the reader has drained.
type Session struct {
	ID        string
	ProjectID string

	cmd  *exec.Cmd
	ptmx *os.File

	writeMu  sync.Mutex // serializes input writes on ptmx
	resizeMu sync.Mutex // serializes geometry changes on ptmx

	running    atomic.Bool
	readerDone chan struct{}
}

// SessionInfo is the public snapshot of a session.
type SessionInfo struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	IsRunning bool   `json:"isRunning"`
}

// Config tunes session creation.
type Config struct {
	// Shell overrides $SHELL resolution when set.
	Shell string
	// ReadChunkSize is the reader loop buffer size; defaults to 4096.
	ReadChunkSize int
}
