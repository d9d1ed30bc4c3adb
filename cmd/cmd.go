package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-portal-backend/internal/config"
	"campus-portal-backend/internal/handlers"
	"campus-portal-backend/internal/messaging/nats"
	"campus-portal-backend/internal/metrics"
	"campus-portal-backend/internal/push"
	"campus-portal-backend/internal/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appName = "campus-portal-backend"

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log)

	ctx := context.Background()

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	}
	defer st.close()

	users, closeCache, err := withUserCache(ctx, cfg.Redis, st.users)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer closeCache()

	imageStorage, err := openImageStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Storage.Provider).Msg("Failed to create image storage")
	}
	images := services.NewImageResolver(imageStorage)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Realtime: websocket hub, mirrored to NATS when configured
	wsHub := services.NewWSHub(m, services.TopicEvents)
	sinks := []services.Sink{{Name: "websocket", Broadcaster: wsHub}}
	if cfg.NATS.URL != "" {
		publisher, err := nats.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, appName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer publisher.Close()
		sinks = append(sinks, services.Sink{Name: "nats", Broadcaster: publisher})
	}
	broadcaster := services.NewFanout(m, sinks...)

	var pusher services.Pusher
	if cfg.APNS.KeyFile != "" {
		client, err := push.NewAPNsClient(push.Config{
			KeyFile:    cfg.APNS.KeyFile,
			KeyID:      cfg.APNS.KeyID,
			TeamID:     cfg.APNS.TeamID,
			Topic:      cfg.APNS.Topic,
			Production: cfg.APNS.Production,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		pusher = client
	}

	// Initialize services
	authService := services.NewAuthService(cfg.JWT.Secret)
	notificationService := services.NewNotificationService(users, st.notifications, broadcaster, pusher, m)

	eventService := services.NewListingService(services.EventSchema(), st.events, users, images, m)
	housingService := services.NewListingService(services.HousingSchema(), st.housing, users, images, m)
	jobService := services.NewListingService(services.JobSchema(), st.jobs, users, images, m)
	lostFoundService := services.NewListingService(services.LostFoundSchema(), st.lostFound, users, images, m)
	lostFoundService.OnCreated(notificationService.LostFoundPosted)

	router := handlers.NewRouter(handlers.Deps{
		Auth:           authService,
		Events:         eventService,
		Housing:        housingService,
		Jobs:           jobService,
		LostFound:      lostFoundService,
		Notifications:  notificationService,
		Hub:            wsHub,
		Broadcaster:    broadcaster,
		Metrics:        m,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsPath:    cfg.Metrics.Path,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("database", cfg.Database.Driver).
			Str("storage", cfg.Storage.Provider).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let background notification fan-outs finish before their sinks close
	notificationService.Wait()

	// Hijacked websocket connections are not closed by Shutdown
	wsHub.Close()

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
