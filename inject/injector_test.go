package inject

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/store"
)

type fakeBubble struct {
	id        string
	hasButton bool
	btn       *Button
	onClick   func()
	attachErr error
}

func (b *fakeBubble) ID() string        { return b.id }
func (b *fakeBubble) SetID(id string)   { b.id = id }
func (b *fakeBubble) HasButton() bool   { return b.hasButton }
func (b *fakeBubble) AttachButton(btn *Button, onClick func()) error {
	if b.attachErr != nil {
		return b.attachErr
	}
	b.hasButton = true
	b.btn = btn
	b.onClick = onClick
	return nil
}

type fakePlayControl struct {
	mu        sync.Mutex
	clicks    int
	bubble    *fakeBubble
	bubbleErr error
}

func (p *fakePlayControl) Click() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks++
}

func (p *fakePlayControl) Clicks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicks
}

func (p *fakePlayControl) Bubble() (Bubble, error) {
	if p.bubbleErr != nil {
		return nil, p.bubbleErr
	}
	return p.bubble, nil
}

type fakeDocument struct {
	mu        sync.Mutex
	controls  []PlayControl
	scanErr   error
	mutations chan struct{}
}

func newFakeDocument(controls ...PlayControl) *fakeDocument {
	return &fakeDocument{controls: controls, mutations: make(chan struct{})}
}

func (d *fakeDocument) PlayControls() ([]PlayControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scanErr != nil {
		return nil, d.scanErr
	}
	return d.controls, nil
}

func (d *fakeDocument) Mutations() <-chan struct{} { return d.mutations }

func (d *fakeDocument) addControl(pc PlayControl) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls = append(d.controls, pc)
}

type fakeEnqueuer struct {
	mu        sync.Mutex
	bubbleIDs []string
}

func (e *fakeEnqueuer) Enqueue(bubbleID string, _ *Button) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bubbleIDs = append(e.bubbleIDs, bubbleID)
}

func (e *fakeEnqueuer) enqueued() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bubbleIDs...)
}

type fakeCreds struct{ has bool }

func (c *fakeCreds) HasTranscriptionCredential() bool { return c.has }

type recordingPresenter struct {
	bubbleIDs []string
	results   []*processing.Result
	notices   []string
}

func (p *recordingPresenter) ShowResult(bubbleID string, result *processing.Result) {
	p.bubbleIDs = append(p.bubbleIDs, bubbleID)
	p.results = append(p.results, result)
}

func (p *recordingPresenter) ShowNotice(message string) {
	p.notices = append(p.notices, message)
}

func newTestInjector(doc Document, q Enqueuer, creds CredentialSource, cache store.Cache, p Presenter) *Injector {
	return New(doc, q, creds, cache, p, Config{PlayDelay: time.Millisecond}, logger.NewDefault("test"))
}

func TestInjector_Scan_AttachesButtons(t *testing.T) {
	pc1 := &fakePlayControl{bubble: &fakeBubble{id: "bubble-a"}}
	pc2 := &fakePlayControl{bubble: &fakeBubble{}}
	doc := newFakeDocument(pc1, pc2)

	inj := newTestInjector(doc, &fakeEnqueuer{}, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})
	inj.Scan()

	if !pc1.bubble.hasButton || !pc2.bubble.hasButton {
		t.Fatal("both bubbles should have buttons")
	}
	if pc1.bubble.btn.BubbleID() != "bubble-a" {
		t.Errorf("existing bubble ID not kept: %q", pc1.bubble.btn.BubbleID())
	}
	if !strings.HasPrefix(pc2.bubble.id, "bubble-") {
		t.Errorf("generated ID = %q", pc2.bubble.id)
	}
	if pc1.bubble.btn.State() != StateIdle {
		t.Errorf("initial state = %v, want Idle", pc1.bubble.btn.State())
	}
}

func TestInjector_Scan_SkipsExistingButtons(t *testing.T) {
	bubble := &fakeBubble{id: "bubble-a", hasButton: true}
	doc := newFakeDocument(&fakePlayControl{bubble: bubble})

	inj := newTestInjector(doc, &fakeEnqueuer{}, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})
	inj.Scan()

	if bubble.btn != nil {
		t.Error("bubble with a button must not get another one")
	}
}

func TestInjector_Scan_CachedBubbleStartsDone(t *testing.T) {
	cache := store.NewMemoryCache()
	cache.Put("bubble-a", &processing.Result{Transcript: "cached"})

	bubble := &fakeBubble{id: "bubble-a"}
	doc := newFakeDocument(&fakePlayControl{bubble: bubble})

	inj := newTestInjector(doc, &fakeEnqueuer{}, &fakeCreds{has: true}, cache, &recordingPresenter{})
	inj.Scan()

	if bubble.btn.State() != StateDone {
		t.Errorf("state = %v, want Done for cached bubble", bubble.btn.State())
	}
}

func TestInjector_Scan_ErrorsAreNonFatal(t *testing.T) {
	good := &fakePlayControl{bubble: &fakeBubble{id: "bubble-ok"}}
	bad := &fakePlayControl{bubbleErr: stderrors.New("detached node")}
	doc := newFakeDocument(bad, good)

	inj := newTestInjector(doc, &fakeEnqueuer{}, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})
	inj.Scan()

	if !good.bubble.hasButton {
		t.Error("scan should continue past a failing control")
	}

	doc.scanErr = stderrors.New("document gone")
	inj.Scan() // must not panic
}

func TestInjector_Run_RescansOnMutation(t *testing.T) {
	pc1 := &fakePlayControl{bubble: &fakeBubble{id: "bubble-1"}}
	doc := newFakeDocument(pc1)

	inj := newTestInjector(doc, &fakeEnqueuer{}, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		inj.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return pc1.bubble.hasButton })

	pc2 := &fakePlayControl{bubble: &fakeBubble{id: "bubble-2"}}
	doc.addControl(pc2)
	doc.mutations <- struct{}{}

	waitFor(t, func() bool { return pc2.bubble.hasButton })

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestInjector_HandleClick_EnqueuesAndDoublePlays(t *testing.T) {
	pc := &fakePlayControl{bubble: &fakeBubble{id: "bubble-a"}}
	doc := newFakeDocument(pc)
	enq := &fakeEnqueuer{}

	inj := newTestInjector(doc, enq, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})
	inj.Scan()

	pc.bubble.onClick()

	if got := enq.enqueued(); len(got) != 1 || got[0] != "bubble-a" {
		t.Fatalf("enqueued = %v", got)
	}
	if pc.bubble.btn.State() != StateBusy {
		t.Errorf("state = %v, want Busy", pc.bubble.btn.State())
	}

	waitFor(t, func() bool { return pc.Clicks() == 2 })
}

func TestInjector_HandleClick_BusyIsIgnored(t *testing.T) {
	pc := &fakePlayControl{bubble: &fakeBubble{id: "bubble-a"}}
	doc := newFakeDocument(pc)
	enq := &fakeEnqueuer{}

	inj := newTestInjector(doc, enq, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})
	inj.Scan()

	pc.bubble.onClick()
	pc.bubble.onClick()

	if got := enq.enqueued(); len(got) != 1 {
		t.Errorf("enqueued %d times, want 1", len(got))
	}
}

func TestInjector_HandleClick_DoneReplaysCache(t *testing.T) {
	cache := store.NewMemoryCache()
	cache.Put("bubble-a", &processing.Result{Transcript: "cached text"})

	pc := &fakePlayControl{bubble: &fakeBubble{id: "bubble-a"}}
	doc := newFakeDocument(pc)
	enq := &fakeEnqueuer{}
	presenter := &recordingPresenter{}

	inj := newTestInjector(doc, enq, &fakeCreds{has: true}, cache, presenter)
	inj.Scan()

	pc.bubble.onClick()

	if len(enq.enqueued()) != 0 {
		t.Error("cached replay must not enqueue")
	}
	if pc.Clicks() != 0 {
		t.Error("cached replay must not trigger playback")
	}
	if len(presenter.results) != 1 || presenter.results[0].Transcript != "cached text" {
		t.Errorf("presenter results = %v", presenter.results)
	}
}

func TestInjector_HandleClick_DoneWithEvictedCacheRetranscribes(t *testing.T) {
	pc := &fakePlayControl{bubble: &fakeBubble{id: "bubble-a"}}
	doc := newFakeDocument(pc)
	enq := &fakeEnqueuer{}

	inj := newTestInjector(doc, enq, &fakeCreds{has: true}, store.NewMemoryCache(), &recordingPresenter{})
	inj.Scan()

	pc.bubble.btn.Begin()
	pc.bubble.btn.Complete()

	pc.bubble.onClick()

	if got := enq.enqueued(); len(got) != 1 {
		t.Errorf("enqueued = %v, want a retranscription", got)
	}
}

func TestInjector_HandleClick_MissingCredential(t *testing.T) {
	pc := &fakePlayControl{bubble: &fakeBubble{id: "bubble-a"}}
	doc := newFakeDocument(pc)
	enq := &fakeEnqueuer{}
	presenter := &recordingPresenter{}

	inj := newTestInjector(doc, enq, &fakeCreds{has: false}, store.NewMemoryCache(), presenter)
	inj.Scan()

	pc.bubble.onClick()

	if len(presenter.notices) != 1 || presenter.notices[0] != MsgCredentialMissing {
		t.Errorf("notices = %v", presenter.notices)
	}
	if len(enq.enqueued()) != 0 {
		t.Error("missing credential must not enqueue")
	}
	if pc.Clicks() != 0 {
		t.Error("missing credential must not trigger playback")
	}
	if pc.bubble.btn.State() != StateIdle {
		t.Errorf("state = %v, want Idle", pc.bubble.btn.State())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
