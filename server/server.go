package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/notewire/notewire/config"
	"github.com/notewire/notewire/logger"
	"github.com/notewire/notewire/server/middleware"
)

// Server is the HTTP server backed by Gin, optionally wrapped with h2c so
// HTTP/2 cleartext clients can connect on the same port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	log        *logger.Logger
}

// New creates a server with the standard middleware stack applied.
func New(cfg config.ServerConfig, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))

	var handler http.Handler = engine
	if cfg.H2C {
		h2s := &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          120 * time.Second,
		}
		handler = h2c.NewHandler(engine, h2s)
	}

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		log:        log.WithComponent("server"),
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the port and begins serving. It returns once the listener
// is bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
