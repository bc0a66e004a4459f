// Package inject attaches transcribe buttons to voice message bubbles
// and drives the button state machine from clicks and results.
package inject

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/store"
)

// Message shown when a click arrives with no usable provider credential.
const MsgCredentialMissing = "⚠️ API key not configured. Please set your API key in the settings."

// Enqueuer registers a pending transcription for a clicked bubble. The
// relay implements this.
type Enqueuer interface {
	Enqueue(bubbleID string, btn *Button)
}

// CredentialSource reports whether the configured transcription
// provider can run at all.
type CredentialSource interface {
	HasTranscriptionCredential() bool
}

// Presenter displays results and notices to the user.
type Presenter interface {
	ShowResult(bubbleID string, result *processing.Result)
	ShowNotice(message string)
}

// Config tunes the injector.
type Config struct {
	// PlayDelay is the gap between the two playback clicks.
	PlayDelay time.Duration
}

// Injector scans the document for voice messages and attaches buttons.
type Injector struct {
	doc       Document
	queue     Enqueuer
	creds     CredentialSource
	cache     store.Cache
	presenter Presenter
	cfg       Config
	log       *logger.Logger
}

// New creates an injector.
func New(doc Document, queue Enqueuer, creds CredentialSource, cache store.Cache, presenter Presenter, cfg Config, log *logger.Logger) *Injector {
	if cfg.PlayDelay == 0 {
		cfg.PlayDelay = 100 * time.Millisecond
	}
	return &Injector{
		doc:       doc,
		queue:     queue,
		creds:     creds,
		cache:     cache,
		presenter: presenter,
		cfg:       cfg,
		log:       log.WithComponent("inject"),
	}
}

// Run performs the initial scan and re-scans on every mutation signal
// until the context is cancelled. Scan failures are logged and never
// stop the loop.
func (inj *Injector) Run(ctx context.Context) {
	inj.Scan()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-inj.doc.Mutations():
			if !ok {
				return
			}
			inj.Scan()
		}
	}
}

// Scan walks the current play controls and attaches a button to every
// bubble that does not have one yet. Per-bubble failures skip that
// bubble only.
func (inj *Injector) Scan() {
	controls, err := inj.doc.PlayControls()
	if err != nil {
		inj.log.Warn("play control scan failed", map[string]interface{}{"error": err.Error()})
		return
	}

	for _, pc := range controls {
		if err := inj.attach(pc); err != nil {
			inj.log.Warn("button attachment failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (inj *Injector) attach(pc PlayControl) error {
	bubble, err := pc.Bubble()
	if err != nil {
		return fmt.Errorf("resolve bubble: %w", err)
	}
	if bubble.HasButton() {
		return nil
	}

	bubbleID := ensureBubbleID(bubble)

	initial := StateIdle
	if _, ok, err := inj.cache.Get(bubbleID); err == nil && ok {
		initial = StateDone
	}

	btn := NewButton(bubbleID, initial, nil)
	return bubble.AttachButton(btn, func() { inj.HandleClick(btn, pc) })
}

// HandleClick runs the click decision chain: cached result replay,
// credential gate, busy exclusion, then enqueue plus double playback.
func (inj *Injector) HandleClick(btn *Button, pc PlayControl) {
	if btn.State() == StateDone {
		if result, ok, err := inj.cache.Get(btn.BubbleID()); err == nil && ok {
			inj.presenter.ShowResult(btn.BubbleID(), result)
			return
		}
		// cache entry gone, fall through and transcribe again
	}

	if !inj.creds.HasTranscriptionCredential() {
		inj.presenter.ShowNotice(MsgCredentialMissing)
		return
	}

	if !btn.Begin() {
		return
	}

	inj.queue.Enqueue(btn.BubbleID(), btn)
	inj.log.Debug("transcription enqueued", map[string]interface{}{
		logger.FieldBubbleID: btn.BubbleID(),
	})

	// First click starts playback and makes the page materialize the
	// audio blob; the second one catches players that swallow the
	// first click while still loading.
	pc.Click()
	time.AfterFunc(inj.cfg.PlayDelay, pc.Click)
}

// ensureBubbleID assigns a lazy stable identity to the bubble.
func ensureBubbleID(bubble Bubble) string {
	if id := bubble.ID(); id != "" {
		return id
	}
	id := fmt.Sprintf("bubble-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
	bubble.SetID(id)
	return id
}
