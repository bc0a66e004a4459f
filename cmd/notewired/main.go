// Command notewired is the transcription daemon: it persists user
// settings, verifies and stores provider credentials, and pushes
// settings updates to connected page sessions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/notewire/notewire/background"
	"github.com/notewire/notewire/config"
	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/observability"
	"github.com/notewire/notewire/processing"
	procclaude "github.com/notewire/notewire/processing/claude"
	procollama "github.com/notewire/notewire/processing/ollama"
	procopenai "github.com/notewire/notewire/processing/openai"
	"github.com/notewire/notewire/server"
	"github.com/notewire/notewire/store"
	"github.com/notewire/notewire/transcription"
	"github.com/notewire/notewire/transcription/openai"
	"github.com/notewire/notewire/transcription/whisper"
	"github.com/notewire/notewire/version"
)

func main() {
	if err := run(); err != nil {
		logger.Fatal("daemon failed", map[string]interface{}{"error": err.Error()})
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)
	log.Info("starting notewired", map[string]interface{}{
		"version":     version.GetShortVersion(),
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.Enabled {
		shutdown, err := initObservability(ctx, cfg)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	syncArea, localArea, closeStore, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	transcribers := transcription.NewRegistry()
	transcribers.RegisterFactory(openai.ProviderName, openai.Factory())
	transcribers.RegisterFactory(whisper.ProviderName, whisper.Factory())

	processors := processing.NewRegistry()
	processors.RegisterFactory(procopenai.ProviderName, procopenai.Factory())
	processors.RegisterFactory(procclaude.ProviderName, procclaude.Factory())
	processors.RegisterFactory(procollama.ProviderName, procollama.Factory())

	hub := server.NewHub(log)
	defer hub.Close()

	svc := background.New(syncArea, localArea, transcribers, processors, background.Options{
		Notifier: hub,
	}, log)

	srv := server.New(cfg.Server, log)
	server.RegisterRoutes(srv.Engine(), svc, hub)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")
	return srv.Stop(context.Background())
}

// initObservability brings up the OTLP tracer and meter providers.
func initObservability(ctx context.Context, cfg *config.Config) (func(), error) {
	tcfg := observability.DefaultTracerConfig(cfg.Name)
	tcfg.ServiceVersion = version.Version
	tcfg.Environment = cfg.Environment
	if cfg.Observability.Endpoint != "" {
		tcfg.Endpoint = cfg.Observability.Endpoint
	}
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, err
	}

	mcfg := observability.DefaultMeterConfig(cfg.Name)
	mcfg.ServiceVersion = version.Version
	mcfg.Environment = cfg.Environment
	if cfg.Observability.Endpoint != "" {
		mcfg.Endpoint = cfg.Observability.Endpoint
	}
	mp, err := observability.InitMeter(ctx, &mcfg)
	if err != nil {
		tp.Shutdown(ctx)
		return nil, err
	}

	return func() {
		shutdownCtx := context.Background()
		mp.Shutdown(shutdownCtx)
		tp.Shutdown(shutdownCtx)
	}, nil
}

// openStores selects sqlite or in-memory storage areas and seals stored
// credentials when a machine secret is present.
func openStores(cfg *config.Config, log *logger.Logger) (syncArea, localArea store.Area, closer func(), err error) {
	closer = func() {}

	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		syncArea = db.Area(store.AreaSync)
		localArea = db.Area(store.AreaLocal)
		closer = func() { db.Close() }
		log.Info("sqlite store opened", map[string]interface{}{"path": cfg.Store.Path})
	} else {
		syncArea = store.NewMemoryArea()
		localArea = store.NewMemoryArea()
		log.Warn("no store path configured, settings will not survive restarts")
	}

	if secret := os.Getenv("NOTEWIRED_STORE_SECRET"); secret != "" {
		sealer, err := store.NewSealer(secret)
		if err != nil {
			closer()
			return nil, nil, nil, err
		}
		credentialKeys := []string{
			background.KeyAPIKey,
			background.KeyTranscriptionAPIKey,
			background.KeyProcessingAPIKey,
		}
		syncArea = store.NewSealedArea(syncArea, sealer, credentialKeys...)
		localArea = store.NewSealedArea(localArea, sealer, credentialKeys...)
		log.Info("credential sealing enabled")
	}

	return syncArea, localArea, closer, nil
}
