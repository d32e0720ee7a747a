package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	birthdaybot "birthday-bot"
	"birthday-bot/internal/handler"
	"birthday-bot/internal/repository"
	"birthday-bot/internal/scheduler"
	"birthday-bot/internal/service"
	"birthday-bot/pkg/config"
	"birthday-bot/pkg/postgres"
)

func main() {
	cfg, err := config.Load("./configs/config.yml")
	if err != nil {
		log.Fatalf("can't load config: %s", err)
	}

	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr, err := postgres.NewManager(ctx, cfg.DB, postgres.RetryConfig{
		MaxElapsed: time.Minute,
		Jitter:     0.2,
	}, log.WithField("component", "postgres"))
	if err != nil {
		log.Fatalf("can't connect to postgres: %s", err)
	}
	if err := postgres.Migrate(mgr.DB(), cfg.DB); err != nil {
		log.Fatalf("can't run migrations: %s", err)
	}
	go mgr.MonitorAndReconnect(ctx, 30*time.Second)

	repos := repository.NewRepositories(mgr)
	services, err := service.NewServices(service.Deps{Repos: repos, Config: cfg})
	if err != nil {
		log.Fatalf("can't init services: %s", err)
	}

	sched, err := scheduler.Start(cfg, services.NotificationService)
	if err != nil {
		log.Fatalf("can't start scheduler: %s", err)
	}

	go func() {
		if err := services.TelegramService.Start(ctx); err != nil {
			log.Errorf("telegram loop stopped: %s", err)
		}
	}()

	handlers := handler.NewHandlers(services, cfg)
	gin.SetMode(cfg.Server.GinMode)
	srv := new(birthdaybot.Server)
	go func() {
		if err := srv.Run(cfg.Server.Port, handlers.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error occurred while running http server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Info("BirthdayBot shutting down")
	cancel()
	sched.Stop()

	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Errorf("error occurred on server shutting down: %s", err)
	}
	if err := mgr.Close(); err != nil {
		log.Errorf("error occurred on db connection close: %s", err)
	}
}
