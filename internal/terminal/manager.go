package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/agent-station/companion/internal/events"
	"github.com/agent-station/companion/internal/infrastructure/logging"
	"github.com/agent-station/companion/internal/infrastructure/monitoring"
	"github.com/agent-station/companion/internal/shared/id"
)

const (
	defaultCols = 80
	defaultRows = 24

	defaultChunkSize = 4096

	// interrupt is the conventional Ctrl+C control code.
	interrupt = 0x03
)

// projectEnvVar carries the project id into the spawned shell so the
// process (and anything it launches) can discover which project it
// belongs to.
const projectEnvVar = "AGENT_STATION_PROJECT_ID"

// Manager owns the session registry and implements the command surface.
// All methods are safe for concurrent use; the registry lock is never
// held across terminal I/O.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	sink    events.Sink
	logger  *logging.Logger
	metrics *monitoring.Metrics
	cfg     Config
}

// NewManager creates a session manager emitting to the given sink.
func NewManager(sink events.Sink, logger *logging.Logger) *Manager {
	if sink == nil {
		sink = events.Discard{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		sink:     sink,
		logger:   logger,
	}
}

// WithConfig sets session creation options.
func (m *Manager) WithConfig(cfg Config) *Manager {
	m.cfg = cfg
	return m
}

// WithMetrics attaches a metrics collector.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Spawn allocates a PTY at 80x24, starts the user's shell as a login
// shell in workingDir, registers the session, and starts its reader and
// reaper goroutines. The returned id is registered before Spawn returns;
// any earlier failure leaves no registry trace.
func (m *Manager) Spawn(projectID, workingDir string) (string, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		m.countSpawnError()
		return "", fmt.Errorf("%w: %v", ErrAllocate, err)
	}

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: defaultRows, Cols: defaultCols}); err != nil {
		ptmx.Close()
		tty.Close()
		m.countSpawnError()
		return "", fmt.Errorf("%w: setsize: %v", ErrAllocate, err)
	}

	shell := m.resolveShell()

	// Login shell so the user's profile (PATH, etc.) is loaded.
	cmd := exec.Command(shell, "-l")
	cmd.Dir = workingDir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		projectEnvVar+"="+projectID,
	)
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		ptmx.Close()
		tty.Close()
		m.countSpawnError()
		return "", fmt.Errorf("%w: %s: %v", ErrSpawn, shell, err)
	}

	// The child holds the interactive end now.
	tty.Close()

	s := &Session{
		ID:         id.NewTerminalID().String(),
		ProjectID:  projectID,
		cmd:        cmd,
		ptmx:       ptmx,
		readerDone: make(chan struct{}),
	}
	s.running.Store(true)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	go m.readLoop(s)
	go m.reap(s)

	if m.metrics != nil {
		m.metrics.SessionsSpawned.Inc()
		m.metrics.SessionsActive.Inc()
	}
	m.logger.Info("spawned terminal session",
		zap.String("terminal_id", s.ID),
		zap.String("project_id", projectID),
		zap.String("shell", shell),
		zap.String("cwd", workingDir),
	)

	return s.ID, nil
}

// readLoop streams PTY output to the sink until the stream ends, then
// flips liveness and emits exactly one exit event. One goroutine per
// session: chunk order on the sink is the session's byte order.
func (m *Manager) readLoop(s *Session) {
	defer close(s.readerDone)

	buf := make([]byte, m.chunkSize())
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			// Terminals emit control bytes and can split multi-byte
			// sequences across chunks; substitute rather than drop.
			data := strings.ToValidUTF8(string(buf[:n]), "�")
			m.sink.Emit(events.TerminalOutput, events.TerminalEvent{
				TerminalID: s.ID,
				Data:       data,
			})
			if m.metrics != nil {
				m.metrics.OutputBytes.Add(float64(n))
			}
		}
		if err != nil {
			break
		}
	}

	s.running.Store(false)
	m.sink.Emit(events.TerminalExit, events.TerminalEvent{TerminalID: s.ID})
	m.logger.Info("terminal session ended", zap.String("terminal_id", s.ID))
}

// reap waits for the child to exit, then releases the master handle once
// the reader has drained. It never touches the registry: a dead session
// stays listed until an explicit Kill.
func (m *Manager) reap(s *Session) {
	_ = s.cmd.Wait()
	<-s.readerDone
	_ = s.ptmx.Close()
}

// Write sends input bytes to the session's terminal.
func (m *Manager) Write(sessionID string, data []byte) error {
	s, ok := m.get(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.ptmx.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, sessionID, err)
	}
	if m.metrics != nil {
		m.metrics.InputBytes.Add(float64(len(data)))
	}
	return nil
}

// maxDimension bounds terminal geometry; the kernel carries winsize
// rows and cols as 16-bit values.
const maxDimension = 0xFFFF

// Resize changes the terminal's row/column geometry.
func (m *Manager) Resize(sessionID string, cols, rows int) error {
	s, ok := m.get(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	if cols <= 0 || rows <= 0 || cols > maxDimension || rows > maxDimension {
		return fmt.Errorf("%w: resize %s: invalid geometry %dx%d", ErrIO, sessionID, cols, rows)
	}

	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()

	if err := pty.Setsize(s.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		return fmt.Errorf("%w: resize %s: %v", ErrIO, sessionID, err)
	}
	return nil
}

// Kill removes the session from the registry and sends a best-effort
// interrupt. Unknown ids are a no-op. Interruption is only requested,
// never forced: a process that ignores it keeps running with its reader
// loop still emitting, just no longer listed.
func (m *Manager) Kill(sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	s.running.Store(false)

	s.writeMu.Lock()
	_, _ = s.ptmx.Write([]byte{interrupt})
	s.writeMu.Unlock()

	if m.metrics != nil {
		m.metrics.SessionsActive.Dec()
	}
	m.logger.Info("killed terminal session", zap.String("terminal_id", sessionID))
}

// Status reports whether the session's output stream is still open.
// Unknown ids report false rather than an error.
func (m *Manager) Status(sessionID string) bool {
	s, ok := m.get(sessionID)
	if !ok {
		return false
	}
	return s.running.Load()
}

// List returns a point-in-time snapshot of every registered session.
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, SessionInfo{
			ID:        s.ID,
			ProjectID: s.ProjectID,
			IsRunning: s.running.Load(),
		})
	}
	return infos
}

// FindByProject returns the first session with the given project id.
// Project ids are not unique; which match wins when several sessions
// share one is unspecified (map iteration order).
func (m *Manager) FindByProject(projectID string) (SessionInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		if s.ProjectID == projectID {
			return SessionInfo{
				ID:        s.ID,
				ProjectID: s.ProjectID,
				IsRunning: s.running.Load(),
			}, true
		}
	}
	return SessionInfo{}, false
}

// Shutdown interrupts every registered session. Used on server exit;
// the same best-effort semantics as Kill apply.
func (m *Manager) Shutdown() {
	for _, info := range m.List() {
		m.Kill(info.ID)
	}
}

func (m *Manager) get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *Manager) resolveShell() string {
	if m.cfg.Shell != "" {
		return m.cfg.Shell
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/bash"
}

func (m *Manager) chunkSize() int {
	if m.cfg.ReadChunkSize > 0 {
		return m.cfg.ReadChunkSize
	}
	return defaultChunkSize
}

func (m *Manager) countSpawnError() {
	if m.metrics != nil {
		m.metrics.SpawnErrors.Inc()
	}
}
