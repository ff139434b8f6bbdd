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

	"github.com/2005arun/Food-ordering/internal/config"
	orderhttp "github.com/2005arun/Food-ordering/internal/order/http"
	"github.com/2005arun/Food-ordering/internal/order/outbox"
	"github.com/2005arun/Food-ordering/internal/order/repository"
	"github.com/2005arun/Food-ordering/internal/order/service"
	"github.com/2005arun/Food-ordering/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadOrdersService()

	cred := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsDir,
	}

	repo, err := repository.NewRepository(cred)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cred); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	orders := service.NewOrderService(repo)
	handler := orderhttp.NewHandler(orders, cfg.RequestTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := outbox.NewPoller(repo, cfg.OrderTopic, cfg.KafkaBrokers...)
	go poller.Run(ctx)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.OK(w, map[string]string{"status": "ok"}, "")
	})
	r.Mount("/orders", handler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Orders service listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down orders service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("orders service stopped")
}
