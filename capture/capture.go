// Package capture intercepts audio blob traffic in a page session.
// It wraps the page's object-URL creation and media source writes so
// that every voice recording surfacing in the player is broadcast
// exactly once to the relay layer.
package capture

import (
	"sync"

	"github.com/notewire/notewire/logger"
)

// Broadcast discriminator tags. Receivers drop anything that does not
// carry both.
const (
	SourceTag = "NW_CAPTURE"
	TypeAudio = "NW_AUDIO"
)

// Broadcast is one captured audio payload on its way to the relay.
type Broadcast struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	MIME   string `json:"mime"`
	Data   []byte `json:"data"`
}

// Blob is the minimal surface of a page-side binary blob.
type Blob interface {
	// ContentType returns the MIME type of the blob.
	ContentType() string
	// Bytes extracts the blob content. May fail if the page already
	// revoked the underlying data.
	Bytes() ([]byte, error)
}

// Emitter receives finished broadcasts.
type Emitter func(Broadcast)

type recording struct {
	blob Blob
	mime string
	sent bool
}

// Interceptor tracks audio blobs per page session. One instance per
// session; construct it with the session's emitter.
type Interceptor struct {
	mu         sync.Mutex
	recordings map[string]*recording
	emit       Emitter
	log        *logger.Logger
}

// NewInterceptor creates an interceptor emitting through emit.
func NewInterceptor(emit Emitter, log *logger.Logger) *Interceptor {
	return &Interceptor{
		recordings: make(map[string]*recording),
		emit:       emit,
		log:        log.WithComponent("capture"),
	}
}

// WrapCreateObjectURL wraps the page's object-URL factory. Audio blobs
// are recorded keyed by the returned URL; everything else, and the
// return value itself, passes through untouched.
func (i *Interceptor) WrapCreateObjectURL(orig func(Blob) string) func(Blob) string {
	return func(blob Blob) string {
		url := orig(blob)
		if blob == nil {
			return url
		}
		if mime := blob.ContentType(); isAudioMIME(mime) {
			i.mu.Lock()
			i.recordings[url] = &recording{blob: blob, mime: mime}
			i.mu.Unlock()
		}
		return url
	}
}

// WrapSourceSetter wraps a media element's source setter. A write that
// matches a recorded URL triggers delivery before the original setter
// runs.
func (i *Interceptor) WrapSourceSetter(orig func(string)) func(string) {
	return func(src string) {
		i.maybeSend(src)
		orig(src)
	}
}

// NewAudio handles direct audio-element construction with an initial
// source. The returned setter is already wrapped.
func (i *Interceptor) NewAudio(src string) func(string) {
	if src != "" {
		i.maybeSend(src)
	}
	return i.WrapSourceSetter(func(string) {})
}

// maybeSend delivers the recording for url at most once. The sent flag
// flips before extraction: a failed Bytes() aborts silently and a later
// observation of the same URL stays a no-op.
func (i *Interceptor) maybeSend(url string) {
	i.mu.Lock()
	rec, ok := i.recordings[url]
	if !ok || rec.sent {
		i.mu.Unlock()
		return
	}
	rec.sent = true
	i.mu.Unlock()

	data, err := rec.blob.Bytes()
	if err != nil {
		i.log.Warn("audio blob extraction failed", map[string]interface{}{
			"mime":  rec.mime,
			"error": err.Error(),
		})
		return
	}

	payload := make([]byte, len(data))
	copy(payload, data)
	i.emit(Broadcast{
		Source: SourceTag,
		Type:   TypeAudio,
		MIME:   rec.mime,
		Data:   payload,
	})
}

func isAudioMIME(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "audio/"
}
