package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papercomputeco/gazetap/pkg/metrics"
	"github.com/papercomputeco/gazetap/pkg/session"
	"github.com/papercomputeco/gazetap/pkg/storage"
)

// StatsSource reports live session counters.
type StatsSource interface {
	Stats() session.Stats
}

// Server is the API server for inspecting a gazetap stream.
type Server struct {
	config  Config
	storer  storage.Driver
	stats   StatsSource
	metrics *metrics.Metrics
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The storer and stats source are shared with the running stream.
// A nil metrics disables the /metrics route.
func NewServer(config Config, storer storage.Driver, stats StatsSource, m *metrics.Metrics, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		storer:  storer,
		stats:   stats,
		metrics: m,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/stats", s.handleStats)
	app.Get("/v1/samples", s.handleListSamples)
	app.Get("/v1/samples/:id", s.handleGetSample)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}

	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
