// Package transcript reconstructs a readable conversation from the voice
// platform's streamed speech-to-text events. Fragments arrive word-by-word
// per speaker; the assembler buffers them and commits whole utterances.
package transcript

import (
	"strings"
	"sync"
	"time"
)

// Speaker roles as tagged on transcript fragments
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleSystem    = "system"
)

// DefaultIdleTimeout is how long after the last user fragment a pending
// user utterance is committed.
const DefaultIdleTimeout = 2 * time.Second

// Entry is one committed utterance in the conversation history
type Entry struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Assembler buffers transcript fragments for a single interview call and
// commits them as complete utterances. A buffered utterance is flushed when:
//
//   - the assistant's speech-end event fires,
//   - the idle timer fires after the last user fragment, or
//   - the opposing speaker produces a fragment (the pending buffer is
//     committed first so turns never interleave).
//
// Each assembler owns its own cancellable idle timer, so concurrent calls
// never share timer state.
type Assembler struct {
	mu          sync.Mutex
	idleTimeout time.Duration
	now         func() time.Time

	pendingRole string
	pending     strings.Builder
	pendingAt   time.Time
	idleTimer   *time.Timer

	history  []Entry
	onCommit func(Entry)
}

// Option configures an Assembler
type Option func(*Assembler)

// WithIdleTimeout overrides the user-fragment idle commit delay
func WithIdleTimeout(d time.Duration) Option {
	return func(a *Assembler) { a.idleTimeout = d }
}

// WithCommitFunc registers a callback invoked for every committed entry.
// The callback runs with the assembler lock held; keep it short.
func WithCommitFunc(fn func(Entry)) Option {
	return func(a *Assembler) { a.onCommit = fn }
}

// withClock is used by tests to control timestamps
func withClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func New(opts ...Option) *Assembler {
	a := &Assembler{
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddFragment ingests one transcript fragment for the given speaker.
// Fragments from the same speaker concatenate; a fragment from the other
// speaker forces the pending utterance out first.
func (a *Assembler) AddFragment(role, text string) {
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingRole != "" && a.pendingRole != role {
		a.commitLocked()
	}

	if a.pendingRole == "" {
		a.pendingRole = role
		a.pendingAt = a.now()
	}
	if a.pending.Len() > 0 {
		a.pending.WriteByte(' ')
	}
	a.pending.WriteString(strings.TrimSpace(text))

	// Re-arm the idle timer for user speech. Assistant utterances are
	// bounded by speech-end instead, but the timer still catches a final
	// assistant fragment that never gets one.
	a.stopIdleTimerLocked()
	a.idleTimer = time.AfterFunc(a.idleTimeout, a.idleFlush)
}

// SpeechEnd marks the end of the assistant's turn and commits any pending
// assistant utterance immediately.
func (a *Assembler) SpeechEnd() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pendingRole == RoleAssistant {
		a.commitLocked()
	}
}

// System appends a committed system entry, bypassing buffering. Used for
// call lifecycle notices ("call connected", "call ended").
func (a *Assembler) System(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := Entry{Role: RoleSystem, Message: message, Timestamp: a.now()}
	a.history = append(a.history, entry)
	if a.onCommit != nil {
		a.onCommit(entry)
	}
}

// Flush commits any pending utterance regardless of speaker. Called on
// call-end so nothing is lost.
func (a *Assembler) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitLocked()
}

// Close flushes pending speech and stops the idle timer
func (a *Assembler) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitLocked()
	a.stopIdleTimerLocked()
}

// Snapshot returns a copy of the committed conversation history in order
func (a *Assembler) Snapshot() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Entry, len(a.history))
	copy(out, a.history)
	return out
}

// Pending returns the speaker and text of the uncommitted buffer, if any
func (a *Assembler) Pending() (role, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingRole, a.pending.String()
}

func (a *Assembler) idleFlush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitLocked()
}

func (a *Assembler) commitLocked() {
	if a.pendingRole == "" || a.pending.Len() == 0 {
		a.pendingRole = ""
		a.pending.Reset()
		return
	}

	entry := Entry{
		Role:      a.pendingRole,
		Message:   a.pending.String(),
		Timestamp: a.pendingAt,
	}
	a.history = append(a.history, entry)
	if a.onCommit != nil {
		a.onCommit(entry)
	}

	a.pendingRole = ""
	a.pending.Reset()
	a.stopIdleTimerLocked()
}

func (a *Assembler) stopIdleTimerLocked() {
	if a.idleTimer != nil {
		a.idleTimer.Stop()
		a.idleTimer = nil
	}
}
