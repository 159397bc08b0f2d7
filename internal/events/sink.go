package events

// Event names pushed to subscribers.
const (
	TerminalOutput = "terminal-output"
	TerminalExit   = "terminal-exit"
)

// TerminalEvent is the payload for terminal-output and terminal-exit.
// Exit events carry an empty Data string.
type TerminalEvent struct {
	TerminalID string `json:"terminalId"`
	Data       string `json:"data"`
}

// Sink receives asynchronous events from the core. Emit must not block
// the caller: a session's reader loop emits from its own goroutine and a
// slow subscriber must never stall it.
type Sink interface {
	Emit(event string, payload TerminalEvent)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Emit(string, TerminalEvent) {}
