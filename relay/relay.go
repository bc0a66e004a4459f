// Package relay pairs captured audio broadcasts with pending transcription
// requests and drives the pipeline for each pair.
//
// Correlation is positional: the interceptor re-plays the voice message after
// a button click, so the next audio broadcast is assumed to belong to the
// oldest pending click. Clicks on several messages in quick succession are
// paired in click order, which can mismatch results if playback events arrive
// out of order.
package relay

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/notewire/notewire/capture"
	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/inject"
	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/queue"
	"github.com/notewire/notewire/store"
)

// Pipeline turns raw audio into a processed transcription result.
type Pipeline interface {
	Process(ctx context.Context, audio []byte, mime string) (*processing.Result, error)
}

// PendingRequest is a clicked button waiting for its audio broadcast.
type PendingRequest struct {
	BubbleID   string
	Button     *inject.Button
	EnqueuedAt time.Time
}

// Relay owns the pending queue. It satisfies inject's enqueuer contract on
// one side and consumes capture broadcasts on the other.
type Relay struct {
	pending   *queue.Queue[PendingRequest]
	pipeline  Pipeline
	presenter inject.Presenter
	cache     store.Cache
	log       *logger.Logger
}

func New(pipeline Pipeline, presenter inject.Presenter, cache store.Cache, log *logger.Logger) *Relay {
	return &Relay{
		pending:   queue.New[PendingRequest](),
		pipeline:  pipeline,
		presenter: presenter,
		cache:     cache,
		log:       log.WithComponent("relay"),
	}
}

// Enqueue records a clicked button as waiting for audio.
func (r *Relay) Enqueue(bubbleID string, btn *inject.Button) {
	r.pending.Enqueue(PendingRequest{
		BubbleID:   bubbleID,
		Button:     btn,
		EnqueuedAt: time.Now(),
	})
	r.log.Debug("request enqueued", map[string]interface{}{
		logger.FieldBubbleID: bubbleID,
		"pending":            r.pending.Len(),
	})
}

// Pending reports how many clicks are still waiting for audio.
func (r *Relay) Pending() int {
	return r.pending.Len()
}

// OnBroadcast handles one captured audio payload. Broadcasts that do not
// carry the capture tags, or that arrive with nothing pending, are dropped.
func (r *Relay) OnBroadcast(ctx context.Context, b capture.Broadcast) {
	if b.Source != capture.SourceTag || b.Type != capture.TypeAudio {
		return
	}

	req, ok := r.pending.Dequeue()
	if !ok {
		r.log.Debug("audio broadcast with no pending request, dropping", map[string]interface{}{
			logger.FieldMIME: b.MIME,
			"bytes":          len(b.Data),
		})
		return
	}

	start := time.Now()
	result, err := r.pipeline.Process(ctx, b.Data, b.MIME)
	if err != nil {
		req.Button.Fail()
		r.presenter.ShowResult(req.BubbleID, failureResult(err))
		r.log.Error("transcription failed", map[string]interface{}{
			logger.FieldBubbleID: req.BubbleID,
			logger.FieldError:    err.Error(),
			logger.FieldDuration: time.Since(start).Milliseconds(),
		})
		return
	}

	req.Button.Complete()
	r.presenter.ShowResult(req.BubbleID, result)
	if r.cache != nil {
		if err := r.cache.Put(req.BubbleID, result); err != nil {
			r.log.Warn("failed to cache result", map[string]interface{}{
				logger.FieldBubbleID: req.BubbleID,
				logger.FieldError:    err.Error(),
			})
		}
	}
	r.log.Info("transcription completed", map[string]interface{}{
		logger.FieldBubbleID: req.BubbleID,
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
}

// failureResult wraps an error into a result the popup can render. The
// user-facing message from an AppError is preferred over the raw error text.
func failureResult(err error) *processing.Result {
	msg := "There was an error processing your request. Please try again."
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.UserMessage != "" {
		msg = appErr.UserMessage
	}
	return &processing.Result{Transcript: "Error: " + msg}
}
