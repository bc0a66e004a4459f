// Package orchestrate runs the transcription pipeline: pick the configured
// transcription provider, transcribe the audio, then optionally run the
// transcript through a processing provider for cleanup, summary, and reply.
package orchestrate

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/notewire/notewire/config"
	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/observability"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/transcription"
)

const serviceName = "notewired"

// SettingsSource supplies the current user settings. Settings can change
// at any time through the control surface, so the orchestrator reads them
// per request instead of holding a snapshot.
type SettingsSource interface {
	Settings() config.Settings
}

// Orchestrator wires the two provider registries behind one Process call.
type Orchestrator struct {
	transcribers *provider.Registry[transcription.Provider]
	processors   *provider.Registry[processing.Provider]
	settings     SettingsSource
	metrics      *observability.Metrics
	log          *logger.Logger
}

// New creates an orchestrator. metrics may be nil.
func New(
	transcribers *provider.Registry[transcription.Provider],
	processors *provider.Registry[processing.Provider],
	settings SettingsSource,
	metrics *observability.Metrics,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		transcribers: transcribers,
		processors:   processors,
		settings:     settings,
		metrics:      metrics,
		log:          log.WithComponent("orchestrate"),
	}
}

// Process transcribes audio and, when a processing provider is configured,
// enriches the transcript. Processing failures after a successful
// transcription degrade to a transcript-only result rather than failing
// the whole request.
func (o *Orchestrator) Process(ctx context.Context, audio []byte, mime string) (*processing.Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "pipeline.process")
	defer span.End()

	s := o.settings.Settings()
	s.ApplyDefaults()
	span.SetAttributes(
		attribute.String("transcription.provider", s.TranscriptionProviderType),
		attribute.String("processing.provider", s.ProcessingProviderType),
		attribute.Int("audio.bytes", len(audio)),
	)

	text, err := o.transcribe(ctx, &s, audio, mime)
	if err != nil {
		o.recordOutcome(ctx, "failed", start, err)
		return nil, err
	}

	result := o.process(ctx, &s, text)
	o.recordOutcome(ctx, "processed", start, nil)
	return result, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, s *config.Settings, audio []byte, mime string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.transcribe")
	defer span.End()

	if !s.HasTranscriptionCredential() {
		return "", errors.Configuration("Transcription API key")
	}

	transcriber, err := o.transcribers.Create(s.TranscriptionProviderType, transcriberConfig(s))
	if err != nil {
		return "", errors.Configuration("Transcription provider").WithCause(err)
	}

	resp, err := transcriber.Transcribe(ctx, transcription.Request{
		Audio:    audio,
		MIME:     mime,
		Language: s.Language,
		Model:    s.TranscriptionModel,
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return resp.Text, nil
}

// process runs the enrichment stage. Any failure here falls back to a
// transcript-only result.
func (o *Orchestrator) process(ctx context.Context, s *config.Settings, text string) *processing.Result {
	transcriptOnly := &processing.Result{Transcript: text}

	if s.ProcessingProviderType == "" || !s.HasProcessingCredential() {
		return transcriptOnly
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.enrich")
	defer span.End()

	processor, err := o.processors.Create(s.ProcessingProviderType, processorConfig(s))
	if err != nil {
		o.log.Warn("processing provider unavailable, returning raw transcript", map[string]interface{}{
			logger.FieldProvider: s.ProcessingProviderType,
			logger.FieldError:    err.Error(),
		})
		return transcriptOnly
	}

	result, err := processor.Process(ctx, processing.Request{
		Transcript:     text,
		Language:       s.Language,
		PromptTemplate: s.PromptTemplate,
		Model:          s.ProcessingModel,
	})
	if err != nil {
		span.RecordError(err)
		o.log.Warn("processing failed, returning raw transcript", map[string]interface{}{
			logger.FieldProvider: s.ProcessingProviderType,
			logger.FieldError:    err.Error(),
		})
		if o.metrics != nil {
			o.metrics.RecordError(ctx, errorType(err), "processing")
		}
		return transcriptOnly
	}
	return result
}

func (o *Orchestrator) recordOutcome(ctx context.Context, status string, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordOperation(ctx, serviceName, "pipeline.process", status, time.Since(start))
	if err != nil {
		o.metrics.RecordError(ctx, errorType(err), "transcription")
	}
}

// transcriberConfig maps settings onto the provider factory config.
func transcriberConfig(s *config.Settings) map[string]any {
	switch s.TranscriptionProviderType {
	case config.TranscriberLocalWhisper:
		return map[string]any{"url": s.LocalWhisperURL}
	default:
		return map[string]any{
			"api_key": s.TranscriptionAPIKey,
			"model":   s.TranscriptionModel,
		}
	}
}

func processorConfig(s *config.Settings) map[string]any {
	switch s.ProcessingProviderType {
	case config.ProcessorOllama:
		return map[string]any{
			"api_url": s.OllamaURL,
			"model":   s.ProcessingModel,
		}
	default:
		return map[string]any{
			"api_key": s.ProcessingAPIKey,
			"model":   s.ProcessingModel,
		}
	}
}

func errorType(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return string(appErr.Code)
	}
	return "unknown"
}
