// Package background implements the daemon's control surface: the action
// messages that the options and popup surfaces send, credential
// verification and persistence, and the debounced settings broadcast to
// connected page sessions.
package background

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/notewire/notewire/config"
	"github.com/notewire/notewire/errors"
	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/processing"
	"github.com/notewire/notewire/provider"
	"github.com/notewire/notewire/store"
	"github.com/notewire/notewire/transcription"
)

// Actions understood by Dispatch.
const (
	ActionOpenOptions     = "openOptionsPage"
	ActionVerifyAPIKey    = "verifyApiKey"
	ActionCheckStorage    = "checkStorage"
	ActionGetAPIKey       = "getApiKey"
	ActionSettingsUpdated = "settingsUpdated"
)

// Provider categories for verifyApiKey.
const (
	CategoryTranscription = "transcription"
	CategoryProcessing    = "processing"
	CategoryBoth          = "both"
)

// Storage keys for persisted credentials and settings.
const (
	KeyAPIKey              = "api_key"
	KeyTranscriptionAPIKey = "transcription_api_key"
	KeyProcessingAPIKey    = "processing_api_key"
)

// Request is one control message.
type Request struct {
	Action           string            `json:"action"`
	APIKey           string            `json:"apiKey,omitempty"`
	ProviderType     string            `json:"providerType,omitempty"`
	ProviderCategory string            `json:"providerCategory,omitempty"`
	Settings         map[string]string `json:"settings,omitempty"`
}

// Ack is the generic success response.
type Ack struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
}

// VerifyResponse answers verifyApiKey.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// StorageResponse answers checkStorage.
type StorageResponse struct {
	SyncStorage  map[string]string `json:"syncStorage"`
	LocalStorage map[string]string `json:"localStorage"`
}

// KeyResponse answers getApiKey. APIKey is null when nothing is stored.
type KeyResponse struct {
	APIKey *string `json:"apiKey"`
}

// OptionsOpener opens the options surface. The daemon delegates this to
// whatever owns the UI.
type OptionsOpener interface {
	OpenOptions() error
}

// Notifier pushes an action message to every connected page session.
type Notifier interface {
	Broadcast(action string)
}

// Service handles control messages against the two storage areas.
type Service struct {
	sync         store.Area
	local        store.Area
	transcribers *provider.Registry[transcription.Provider]
	processors   *provider.Registry[processing.Provider]
	opener       OptionsOpener
	notifier     Notifier
	deb          *debouncer
	log          *logger.Logger
}

// Options configures optional service collaborators.
type Options struct {
	Opener   OptionsOpener
	Notifier Notifier
	// BroadcastDelay overrides the settings broadcast debounce window.
	BroadcastDelay time.Duration
}

// New creates the service and mirrors sync credentials into local storage,
// matching the startup behavior of the original control script.
func New(
	syncArea, localArea store.Area,
	transcribers *provider.Registry[transcription.Provider],
	processors *provider.Registry[processing.Provider],
	opts Options,
	log *logger.Logger,
) *Service {
	delay := opts.BroadcastDelay
	if delay == 0 {
		delay = defaultBroadcastDelay
	}
	s := &Service{
		sync:         syncArea,
		local:        localArea,
		transcribers: transcribers,
		processors:   processors,
		opener:       opts.Opener,
		notifier:     opts.Notifier,
		deb:          newDebouncer(delay),
		log:          log.WithComponent("background"),
	}
	s.mirrorCredentials()
	return s
}

// Dispatch routes one control message to its handler.
func (s *Service) Dispatch(ctx context.Context, req Request) (any, error) {
	s.log.Debug("control message", map[string]interface{}{
		logger.FieldAction: req.Action,
	})

	switch req.Action {
	case ActionOpenOptions:
		return s.openOptions()
	case ActionVerifyAPIKey:
		return s.verifyAPIKey(ctx, req), nil
	case ActionCheckStorage:
		return s.checkStorage()
	case ActionGetAPIKey:
		return s.getAPIKey(req.ProviderCategory)
	case ActionSettingsUpdated:
		return s.settingsUpdated(req.Settings)
	case "":
		return nil, errors.InvalidInput("action", "missing")
	default:
		return nil, errors.InvalidInput("action", fmt.Sprintf("unknown action %q", req.Action))
	}
}

// Settings assembles the current settings from the storage areas over the
// stock defaults. Credentials prefer local storage, falling back to sync.
func (s *Service) Settings() config.Settings {
	cfg := config.DefaultSettings()

	synced, err := s.sync.All()
	if err != nil {
		s.log.Warn("sync storage read failed", map[string]interface{}{logger.FieldError: err.Error()})
		return cfg
	}
	for key, value := range synced {
		applySetting(&cfg, key, value)
	}

	// local credentials win over synced ones
	for _, key := range []string{KeyTranscriptionAPIKey, KeyProcessingAPIKey} {
		if v, ok, err := s.local.Get(key); err == nil && ok && v != "" {
			applySetting(&cfg, key, v)
		}
	}
	return cfg
}

// HasTranscriptionCredential lets the service act as the credential gate
// for the injection layer.
func (s *Service) HasTranscriptionCredential() bool {
	cfg := s.Settings()
	return cfg.HasTranscriptionCredential()
}

func (s *Service) openOptions() (any, error) {
	if s.opener != nil {
		if err := s.opener.OpenOptions(); err != nil {
			return nil, errors.Internal(err)
		}
	}
	return Ack{Success: true}, nil
}

func (s *Service) verifyAPIKey(ctx context.Context, req Request) VerifyResponse {
	cfg := s.Settings()

	category := req.ProviderCategory
	if category == "" {
		category = CategoryBoth
	}

	switch category {
	case CategoryTranscription:
		typ := req.ProviderType
		if typ == "" {
			typ = cfg.TranscriptionProviderType
		}
		res := s.verifyTranscription(ctx, typ, req.APIKey, &cfg)
		if res.Valid {
			s.persistCredential(KeyTranscriptionAPIKey, req.APIKey)
		}
		return res

	case CategoryProcessing:
		typ := req.ProviderType
		if typ == "" {
			typ = cfg.ProcessingProviderType
		}
		res := s.verifyProcessing(ctx, typ, req.APIKey, &cfg)
		if res.Valid {
			s.persistCredential(KeyProcessingAPIKey, req.APIKey)
		}
		return res

	default:
		// one key for both stages, original options-page flow
		typ := req.ProviderType
		if typ == "" {
			typ = config.TranscriberOpenAI
		}
		res := s.verifyTranscription(ctx, typ, req.APIKey, &cfg)
		if !res.Valid {
			return res
		}
		res = s.verifyProcessing(ctx, typ, req.APIKey, &cfg)
		if res.Valid {
			s.persistCredential(KeyAPIKey, req.APIKey)
			s.persistCredential(KeyTranscriptionAPIKey, req.APIKey)
			s.persistCredential(KeyProcessingAPIKey, req.APIKey)
		}
		return res
	}
}

func (s *Service) verifyTranscription(ctx context.Context, typ, apiKey string, cfg *config.Settings) VerifyResponse {
	p, err := s.transcribers.Create(typ, map[string]any{
		"api_key": apiKey,
		"url":     cfg.LocalWhisperURL,
	})
	if err != nil {
		return VerifyResponse{Valid: false, Error: err.Error()}
	}
	return toVerifyResponse(p.VerifyKey(ctx, apiKey))
}

func (s *Service) verifyProcessing(ctx context.Context, typ, apiKey string, cfg *config.Settings) VerifyResponse {
	p, err := s.processors.Create(typ, map[string]any{
		"api_key": apiKey,
		"api_url": cfg.OllamaURL,
	})
	if err != nil {
		return VerifyResponse{Valid: false, Error: err.Error()}
	}
	return toVerifyResponse(p.VerifyKey(ctx, apiKey))
}

func toVerifyResponse(res *provider.VerifyResult, err error) VerifyResponse {
	if err != nil {
		return VerifyResponse{Valid: false, Error: err.Error()}
	}
	return VerifyResponse{Valid: res.Valid, Error: res.Reason}
}

// persistCredential stores a verified key in both areas so a later sync
// wipe still leaves a local copy.
func (s *Service) persistCredential(key, value string) {
	for _, area := range []store.Area{s.sync, s.local} {
		if err := area.Set(key, value); err != nil {
			s.log.Warn("credential persistence failed", map[string]interface{}{
				"key":             key,
				logger.FieldError: err.Error(),
			})
		}
	}
}

func (s *Service) checkStorage() (any, error) {
	synced, err := s.sync.All()
	if err != nil {
		return nil, errors.Storage("read sync storage", err)
	}
	local, err := s.local.All()
	if err != nil {
		return nil, errors.Storage("read local storage", err)
	}
	return StorageResponse{SyncStorage: synced, LocalStorage: local}, nil
}

// getAPIKey reads the credential for the given category, local first with
// sync fallback. A sync hit is backfilled into local storage.
func (s *Service) getAPIKey(category string) (any, error) {
	key := KeyTranscriptionAPIKey
	if category == CategoryProcessing {
		key = KeyProcessingAPIKey
	}

	if v, ok, err := s.local.Get(key); err != nil {
		return nil, errors.Storage("read local storage", err)
	} else if ok && v != "" {
		return KeyResponse{APIKey: &v}, nil
	}

	v, ok, err := s.sync.Get(key)
	if err != nil {
		return nil, errors.Storage("read sync storage", err)
	}
	if !ok || v == "" {
		return KeyResponse{APIKey: nil}, nil
	}
	if err := s.local.Set(key, v); err != nil {
		s.log.Warn("local backfill failed", map[string]interface{}{logger.FieldError: err.Error()})
	}
	return KeyResponse{APIKey: &v}, nil
}

func (s *Service) settingsUpdated(changes map[string]string) (any, error) {
	for key, value := range changes {
		if err := s.sync.Set(key, value); err != nil {
			return nil, errors.Storage("persist settings", err)
		}
	}

	if s.notifier != nil {
		s.deb.Trigger(func() { s.notifier.Broadcast(ActionSettingsUpdated) })
	}
	return Ack{Success: true}, nil
}

// mirrorCredentials copies synced credentials into local storage on startup.
func (s *Service) mirrorCredentials() {
	for _, key := range []string{KeyAPIKey, KeyTranscriptionAPIKey, KeyProcessingAPIKey} {
		v, ok, err := s.sync.Get(key)
		if err != nil || !ok || v == "" {
			continue
		}
		if err := s.local.Set(key, v); err != nil {
			s.log.Warn("credential mirror failed", map[string]interface{}{
				"key":             key,
				logger.FieldError: err.Error(),
			})
		}
	}
}

// applySetting maps one stored key onto the settings struct.
func applySetting(cfg *config.Settings, key, value string) {
	switch key {
	case "enabled":
		if b, err := strconv.ParseBool(value); err == nil {
			cfg.Enabled = b
		}
	case "language":
		cfg.Language = value
	case "transcription_provider_type":
		cfg.TranscriptionProviderType = value
	case "transcription_model":
		cfg.TranscriptionModel = value
	case KeyTranscriptionAPIKey:
		cfg.TranscriptionAPIKey = value
	case "processing_provider_type":
		cfg.ProcessingProviderType = value
	case "processing_model":
		cfg.ProcessingModel = value
	case KeyProcessingAPIKey:
		cfg.ProcessingAPIKey = value
	case "prompt_template":
		cfg.PromptTemplate = value
	case "local_whisper_url":
		cfg.LocalWhisperURL = value
	case "ollama_url":
		cfg.OllamaURL = value
	case KeyAPIKey:
		// legacy single-key setups feed both stages
		if cfg.TranscriptionAPIKey == "" {
			cfg.TranscriptionAPIKey = value
		}
		if cfg.ProcessingAPIKey == "" {
			cfg.ProcessingAPIKey = value
		}
	}
}
