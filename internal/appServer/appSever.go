// launching the server, redis, rabbitMQ and the voice queue
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

	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/config"
	"github.com/sekolahdigital/notify-service/internal/database"
	"github.com/sekolahdigital/notify-service/internal/delivery"
	"github.com/sekolahdigital/notify-service/internal/entity"
	"github.com/sekolahdigital/notify-service/internal/events"
	"github.com/sekolahdigital/notify-service/internal/rabbitMQ"
	"github.com/sekolahdigital/notify-service/internal/service"
	"github.com/sekolahdigital/notify-service/internal/transport"
	"github.com/sekolahdigital/notify-service/internal/transport/middleware"
	"github.com/sekolahdigital/notify-service/internal/voice"
	"github.com/sekolahdigital/notify-service/pkg/redis"
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

// NewServer composes the notification pipeline and blocks until SIGINT or
// SIGTERM. Wiring order matters: the manager needs the hub for display, the
// announcer needs a settings accessor from the manager, and the manager gets
// the announcer attached last.
func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	redisClient := redis.NewRedisClient(&cfg.Redis)
	repo := database.NewRedisRepository(redisClient)
	bus := events.NewBus()

	hub := delivery.NewHub()
	go hub.Run()

	svc := service.NewNotificationService(repo, hub, bus, middleware.UserFromContext, nil, cfg.Notification.HistoryCap)

	announcer := voice.NewAnnouncer(
		voice.Config{
			QueueCap:   cfg.Notification.VoiceQueueCap,
			HistoryCap: cfg.Notification.VoiceHistoryCap,
			RetryDelay: cfg.Notification.VoiceRetryDelay,
		},
		hub,
		repo,
		bus,
		func() *entity.Settings { return svc.GetSettings(context.Background()) },
		nil,
	)
	svc.AttachVoice(announcer)
	defer announcer.Close()

	if cfg.RabbitMQ.Enabled {
		relay, err := rabbitMQ.NewRelay(rabbitMQ.Config{
			URL:          cfg.RabbitMQ.URL,
			ExchangeName: cfg.RabbitMQ.ExchangeName,
			RoutingKey:   cfg.RabbitMQ.RoutingKey,
		})
		if err != nil {
			logrus.Fatalf("Failed to connect to RabbitMQ: %s", err.Error())
		}
		relay.Bind(bus)
		defer relay.Close()
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(svc, hub, cfg.JWT.Secret, cfg.Server.Timeout)
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
