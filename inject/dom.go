package inject

// The page surface is reached through narrow capabilities so the
// injector stays testable without a browser. The host adapter
// implements these against the live document.

// Document exposes the chat page to the injector.
type Document interface {
	// PlayControls returns every voice-message play control currently
	// in the document.
	PlayControls() ([]PlayControl, error)
	// Mutations signals that nodes were added and a re-scan is due.
	Mutations() <-chan struct{}
}

// PlayControl is a voice message's play affordance.
type PlayControl interface {
	// Click triggers playback. The injector clicks twice with a short
	// delay because the page creates the audio blob lazily on first
	// play.
	Click()
	// Bubble returns the enclosing message bubble, or an error when
	// the control is detached from any recognizable bubble.
	Bubble() (Bubble, error)
}

// Bubble is a message bubble that can host a transcribe button.
type Bubble interface {
	// ID returns the bubble's assigned identity, empty when unset.
	ID() string
	// SetID assigns a stable identity to the bubble.
	SetID(id string)
	// HasButton reports whether a transcribe button is already attached.
	HasButton() bool
	// AttachButton renders the button inside the bubble and wires
	// onClick to its activation.
	AttachButton(btn *Button, onClick func()) error
}
