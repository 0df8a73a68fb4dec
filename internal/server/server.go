// Package server wires the bridge service together: relay client, payment
// request decoder, notification bus, metrics, and the WebSocket endpoint the
// desktop shell connects webviews to.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nodechat/webbridge/internal/bus"
	"github.com/nodechat/webbridge/internal/config"
	"github.com/nodechat/webbridge/internal/logging"
	"github.com/nodechat/webbridge/internal/metrics"
	"github.com/nodechat/webbridge/internal/middleware"
	"github.com/nodechat/webbridge/internal/services/bolt11"
	"github.com/nodechat/webbridge/internal/services/relay"
	"github.com/nodechat/webbridge/internal/ws"
)

// Server hosts the bridge endpoints.
type Server struct {
	cfg    *config.Config
	logger *logging.Logger
	events *bus.Bus
	http   *http.Server
}

// New builds the server and its dependency graph.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	m := metrics.New(nil)
	events := bus.New()

	relayClient, err := relay.New(relay.Config{
		BaseURL: cfg.Relay.URL,
		Token:   cfg.Relay.Token,
		SealKey: cfg.Relay.SealKey,
		Timeout: time.Duration(cfg.Relay.TimeoutSeconds) * time.Second,
	}, m)
	if err != nil {
		return nil, err
	}

	wsHandler := ws.NewHandler(ws.Config{
		Signer:            relayClient,
		Wallet:            relayClient,
		Payments:          relayClient,
		Decoder:           bolt11.NewDecoder(),
		Events:            events,
		Logger:            logger,
		Metrics:           m,
		MessagesPerSecond: cfg.Bridge.MessagesPerSecond,
		Burst:             cfg.Bridge.Burst,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/bridge", wsHandler.HandleConnection)

	return &Server{
		cfg:    cfg,
		logger: logger,
		events: events,
		http: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
	}, nil
}

// Events exposes the notification bus so other host components can watch
// for balance changes.
func (s *Server) Events() *bus.Bus {
	return s.events
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("bridge service listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and closes the notification bus.
func (s *Server) Shutdown(ctx context.Context) error {
	s.events.Close()
	return s.http.Shutdown(ctx)
}
