// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/animalhaven/feederhub/api"
	"github.com/animalhaven/feederhub/internal/config"
	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/device"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/animalhaven/feederhub/internal/monitoring"
	"github.com/animalhaven/feederhub/internal/repository/photos"
	"github.com/animalhaven/feederhub/internal/repository/sqlstore"
	"github.com/animalhaven/feederhub/internal/scheduler"
	"github.com/animalhaven/feederhub/internal/statuscache"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	db         database.DB
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	sweeper    *scheduler.Sweeper
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	svc, db, err := initializeHubService(s.config)
	if err != nil {
		return err
	}
	s.hubservice = svc
	s.db = db
	s.monitoring = monitoring.NewService(monitoring.Config{
		LogLevel: s.config.Monitoring.LogLevel,
	})

	s.setupEventHandlers()

	router := api.NewRouter(svc)
	router.SetHealthCheck(s.handleHealth())

	s.srv.Handler = handlers.CombinedLoggingHandler(os.Stdout,
		handlers.CORS(
			handlers.AllowedOrigins(s.config.Server.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-Feeding-ID", "X-Capture-Type"}),
		)(router))

	// Background reachability sweep and photo retention purge
	s.sweeper = scheduler.New(svc, s.config.Devices.SweepSchedule, s.config.PhotoStore.Retention)
	if err := s.sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start reachability sweep: %w", err)
	}

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.sweeper.Stop()
	s.hubservice.Shutdown()
	if err := s.db.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing database: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

func (s *Server) setupEventHandlers() {
	s.hubservice.OnEvent("feeding.confirmed", func(id string) {
		s.monitoring.RecordEvent("feeding_confirmed", map[string]string{
			"feeding_id": id,
		})
	})

	s.hubservice.OnEvent("feeding.failed", func(id string) {
		s.monitoring.RecordEvent("feeding_failed", map[string]string{
			"feeder_id": id,
		})
	})

	s.hubservice.OnEvent("feeder.registered", func(id string) {
		s.monitoring.RecordEvent("feeder_registered", map[string]string{
			"feeder_id": id,
		})
	})

	s.hubservice.OnEvent("feeder.deactivated", func(id string) {
		s.monitoring.RecordEvent("feeder_deactivated", map[string]string{
			"feeder_id": id,
		})
	})

	s.hubservice.OnEvent("photo.attached", func(id string) {
		s.monitoring.RecordEvent("photo_attached", map[string]string{
			"feeding_id": id,
		})
	})
}

// initializeHubService creates and configures the hub service
func initializeHubService(cfg *config.Config) (*hubservice.HubService, database.DB, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := sqlstore.InitSchema(db); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	photoStore, err := photos.NewStore(photos.Config{
		BasePath:    cfg.PhotoStore.BasePath,
		MaxFileSize: cfg.PhotoStore.MaxFileSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	svc := hubservice.New(
		sqlstore.NewFeederRepository(db),
		sqlstore.NewFeedingEventRepository(db),
		sqlstore.NewScheduleRepository(db),
		sqlstore.NewSettingsRepository(db),
		photoStore,
		device.NewClient(cfg.Devices),
		statuscache.New(cfg.Redis),
		cfg.Devices,
	)
	if err := svc.Validate(); err != nil {
		return nil, nil, err
	}
	return svc, db, nil
}
