package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evently/evently/config"
	repository "github.com/evently/evently/internal/database/postgres"
	cache "github.com/evently/evently/internal/database/redis"
	"github.com/evently/evently/internal/monitoring"
	"github.com/evently/evently/internal/service"
	"github.com/evently/evently/internal/transport"
	"github.com/evently/evently/internal/worker"

	"github.com/evently/evently/pkg/kafka"
	"github.com/evently/evently/pkg/postgres"
	"github.com/evently/evently/pkg/redis"
	"github.com/evently/evently/pkg/session"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	rsvpRepo := repository.NewRSVPRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Redis cache is optional: without it views are written straight to
	// Postgres and trending listings are uncached.
	var eventCache *cache.EventCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		eventCache = cache.NewEventCache(redisClient, cfg.Redis.CacheTTL)
		logrus.Info("Redis cache initialized")
	} else {
		logrus.Warn("Redis disabled, continuing without cache")
	}

	var producer kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
	} else {
		logrus.Warn("Kafka disabled, rsvp announcements will not be published")
	}

	metrics := monitoring.NewMetrics()
	sessions := session.NewManager(cfg.Auth.Secret, cfg.Auth.SessionMaxAge)

	// Services
	rsvpService := service.NewRSVPService(rsvpRepo, eventRepo, &cfg.Booking, metrics, producer)
	eventService := service.NewEventService(eventRepo, eventCache, &cfg.Booking)
	userService := service.NewUserService(userRepo, sessions, &cfg.Auth)
	adminService := service.NewAdminService(userRepo, eventRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if eventCache != nil {
		viewsWorker := worker.NewViewsFlushWorker(eventCache, eventRepo, cfg.Worker.ViewsFlushInterval)
		go viewsWorker.Start(ctx)
		logrus.Info("Views flush worker started")
	}

	// Handlers
	handlers := &transport.Handlers{
		Event: transport.NewEventHandler(eventService),
		RSVP:  transport.NewRSVPHandler(rsvpService),
		Auth:  transport.NewAuthHandler(userService, &cfg.Auth),
		Admin: transport.NewAdminHandler(adminService),
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(cfg, handlers, sessions, metrics)
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
