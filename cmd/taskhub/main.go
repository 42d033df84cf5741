package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/google"
	"taskhub/internal/httpapi"
	"taskhub/internal/repository"
	"taskhub/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	taskSvc := service.NewTaskService(taskRepo)

	provider := auth.NewProvider(cfg.AuthBaseURL, cfg.AuthSecretKey, cfg.TokenCacheTTL)
	googleClient := google.NewClient()

	router := httpapi.NewRouter(
		provider,
		httpapi.NewTaskController(taskSvc),
		httpapi.NewGoogleController(provider, googleClient, googleClient),
	)

	if cfg.DigestEnabled() {
		digestSvc := service.NewDigestService(taskRepo, provider, googleClient, cfg.DigestTo, 48*time.Hour)
		scheduler := service.NewScheduler(time.Local)

		job := func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := digestSvc.Run(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("digest: %v", err)
			}
		}

		if cfg.DigestDailyAt != "" {
			if _, err := scheduler.ScheduleDaily(cfg.DigestDailyAt, job); err != nil {
				log.Fatalf("schedule digest: %v", err)
			}
		} else {
			if _, err := scheduler.ScheduleInterval(cfg.DigestInterval, job); err != nil {
				log.Fatalf("schedule digest: %v", err)
			}
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("[info] listening on :%s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
