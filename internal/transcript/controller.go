package transcript

import (
	"sync"
	"time"
)

// Event types emitted by the voice platform's client event stream
const (
	EventCallStart   = "call-start"
	EventCallEnd     = "call-end"
	EventSpeechStart = "speech-start"
	EventSpeechEnd   = "speech-end"
	EventVolumeLevel = "volume-level"
	EventMessage     = "message"
	EventError       = "error"
)

// Event is one item from the provider's event stream, normalized
type Event struct {
	Type       string  `json:"type"`
	Role       string  `json:"role,omitempty"`       // for message events
	Transcript string  `json:"transcript,omitempty"` // for message events
	Volume     float64 `json:"volume,omitempty"`     // for volume-level events
	ErrMessage string  `json:"errMessage,omitempty"` // for error events
}

// Controller consumes the event stream of a single interview call, drives
// the transcript assembler, and tracks call state. It is the server-side
// counterpart of the browser's live-interview view: one controller per call.
type Controller struct {
	mu sync.Mutex

	assembler *Assembler

	callActive        bool
	assistantSpeaking bool
	volume            float64
	startedAt         time.Time
	endedAt           time.Time
	lastErr           string

	// onEnd fires once when the call ends, after the final flush. The
	// session's transition to completed hangs off this.
	onEnd func()
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithEndFunc registers the call-end hook
func WithEndFunc(fn func()) ControllerOption {
	return func(c *Controller) { c.onEnd = fn }
}

// WithAssembler substitutes a pre-configured assembler
func WithAssembler(a *Assembler) ControllerOption {
	return func(c *Controller) { c.assembler = a }
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	if c.assembler == nil {
		c.assembler = New()
	}
	return c
}

// Handle processes one provider event. Unknown event types are ignored,
// the platform adds new ones without notice.
func (c *Controller) Handle(ev Event) {
	switch ev.Type {
	case EventCallStart:
		c.mu.Lock()
		c.callActive = true
		c.startedAt = time.Now()
		c.lastErr = ""
		c.mu.Unlock()
		c.assembler.System("Call connected. The AI interviewer will begin shortly.")

	case EventCallEnd:
		c.assembler.Flush()
		c.mu.Lock()
		wasActive := c.callActive
		c.callActive = false
		c.assistantSpeaking = false
		c.endedAt = time.Now()
		onEnd := c.onEnd
		c.mu.Unlock()
		if wasActive && onEnd != nil {
			onEnd()
		}

	case EventSpeechStart:
		c.mu.Lock()
		c.assistantSpeaking = true
		c.mu.Unlock()

	case EventSpeechEnd:
		c.mu.Lock()
		c.assistantSpeaking = false
		c.mu.Unlock()
		c.assembler.SpeechEnd()

	case EventVolumeLevel:
		c.mu.Lock()
		c.volume = ev.Volume
		c.mu.Unlock()

	case EventMessage:
		if ev.Transcript == "" {
			return
		}
		role := RoleUser
		if ev.Role == RoleAssistant {
			role = RoleAssistant
		}
		c.assembler.AddFragment(role, ev.Transcript)

	case EventError:
		c.mu.Lock()
		c.callActive = false
		c.assistantSpeaking = false
		c.lastErr = ev.ErrMessage
		c.mu.Unlock()
	}
}

// Transcript returns the committed conversation so far
func (c *Controller) Transcript() []Entry {
	return c.assembler.Snapshot()
}

// State is a point-in-time view of the call
type State struct {
	CallActive        bool      `json:"callActive"`
	AssistantSpeaking bool      `json:"assistantSpeaking"`
	Volume            float64   `json:"volume"`
	StartedAt         time.Time `json:"startedAt,omitempty"`
	EndedAt           time.Time `json:"endedAt,omitempty"`
	Error             string    `json:"error,omitempty"`
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		CallActive:        c.callActive,
		AssistantSpeaking: c.assistantSpeaking,
		Volume:            c.volume,
		StartedAt:         c.startedAt,
		EndedAt:           c.endedAt,
		Error:             c.lastErr,
	}
}

// Close releases the assembler's timer
func (c *Controller) Close() {
	c.assembler.Close()
}
