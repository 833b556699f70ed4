// Package api provides the HTTP transport layer: it translates
// Orchestrator event streams, Cluster Predictor lookups, the Analytics
// Visit resolver, the Report Builder, and the Voice Client into the
// endpoints external clients call.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/opencity/insight/pkg/cluster"
	"github.com/opencity/insight/pkg/config"
	"github.com/opencity/insight/pkg/database"
	"github.com/opencity/insight/pkg/events"
	"github.com/opencity/insight/pkg/report"
	"github.com/opencity/insight/pkg/session"
	"github.com/opencity/insight/pkg/version"
	"github.com/opencity/insight/pkg/voice"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg        *config.Config
	dbClient   *database.Client
	sessions   *session.Manager
	predictor  *cluster.Predictor
	visit      *cluster.Visit
	reportBldr *report.Builder
	voice      *voice.Client // nil if voice is disabled
	audit      *events.AuditStore
}

// NewServer wires an HTTP server over the given components. voiceClient
// may be nil, in which case voice endpoints respond 503.
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	sessions *session.Manager,
	predictor *cluster.Predictor,
	visit *cluster.Visit,
	reportBldr *report.Builder,
	voiceClient *voice.Client,
	audit *events.AuditStore,
) *Server {
	e := echo.New()

	s := &Server{
		echo:       e,
		cfg:        cfg,
		dbClient:   dbClient,
		sessions:   sessions,
		predictor:  predictor,
		visit:      visit,
		reportBldr: reportBldr,
		voice:      voiceClient,
		audit:      audit,
	}

	e.Use(middleware.BodyLimit(2 * 1024 * 1024))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	e.Use(securityHeaders())

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler)

	s.echo.POST("/api/chat/stream", s.chatStreamHandler)
	s.echo.POST("/api/chat", s.chatHandler)
	s.echo.GET("/api/sessions/:id", s.sessionReplayHandler)
	s.echo.POST("/api/cluster/predict", s.clusterPredictHandler)
	s.echo.POST("/api/chat/analytics-visit", s.analyticsVisitHandler)
	s.echo.POST("/api/report/generate", s.reportGenerateHandler)

	s.echo.POST("/api/voice/tts", s.voiceTTSHandler)
	s.echo.POST("/api/voice/tts/stream", s.voiceTTSStreamHandler)
	s.echo.POST("/api/voice/tts/with-timestamps", s.voiceTTSTimestampsHandler)
	s.echo.POST("/api/voice/stt", s.voiceSTTHandler)
	s.echo.POST("/api/voice/stt/stream", s.voiceSTTStreamHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats := s.cfg.Stats()

	if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:           "unhealthy",
			Version:          version.Full(),
			AgentInitialized: stats.Products > 0,
			VoiceInitialized: s.voice != nil,
		})
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:           "healthy",
		Version:          version.Full(),
		AgentInitialized: stats.Products > 0,
		VoiceInitialized: s.voice != nil,
	})
}
