package inject

import "sync"

// State is the transcribe button lifecycle state.
type State int

const (
	// StateIdle is the initial state, click starts a transcription.
	StateIdle State = iota
	// StateBusy means a request is in flight. Clicks are ignored. A
	// request that never gets an answer stays Busy; there is no timeout.
	StateBusy
	// StateDone means a result exists. Click shows the cached result.
	StateDone
	// StateFailed means the last attempt failed. Click retries.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Label returns the visible button text for the state.
func (s State) Label() string {
	switch s {
	case StateBusy:
		return "⏳"
	case StateDone:
		return "✓"
	case StateFailed:
		return "⚠️"
	}
	return "Transcribe"
}

// Button is the per-bubble transcribe affordance state machine. The
// rendering side observes transitions through the onChange callback.
type Button struct {
	mu       sync.Mutex
	bubbleID string
	state    State
	onChange func(State)
}

// NewButton creates a button for the given bubble. onChange may be nil.
func NewButton(bubbleID string, initial State, onChange func(State)) *Button {
	return &Button{bubbleID: bubbleID, state: initial, onChange: onChange}
}

// BubbleID returns the owning bubble's identity.
func (b *Button) BubbleID() string { return b.bubbleID }

// State returns the current state.
func (b *Button) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Begin moves the button to Busy. Returns false when already Busy, in
// which case the click must be ignored.
func (b *Button) Begin() bool {
	b.mu.Lock()
	if b.state == StateBusy {
		b.mu.Unlock()
		return false
	}
	b.state = StateBusy
	b.mu.Unlock()
	b.notify(StateBusy)
	return true
}

// Complete moves the button to Done after a successful transcription.
func (b *Button) Complete() {
	b.setState(StateDone)
}

// Fail moves the button to Failed and re-enables it for a retry.
func (b *Button) Fail() {
	b.setState(StateFailed)
}

func (b *Button) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
	b.notify(s)
}

func (b *Button) notify(s State) {
	if b.onChange != nil {
		b.onChange(s)
	}
}
