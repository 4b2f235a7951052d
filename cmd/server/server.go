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

	"github.com/RoGogDBD/pantry/internal/app"
	"github.com/RoGogDBD/pantry/internal/config"
	"github.com/RoGogDBD/pantry/internal/handlers"
	"github.com/RoGogDBD/pantry/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Конфигурация и флаги
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	addr, dsn := config.ParseFlags()
	cfg.ApplyFlags(addr, dsn)

	// Инициализация приложения
	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Init(); err != nil {
		return err
	}

	// Трассировка и метрики
	providers, err := telemetry.Init(a.Context(), cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry init failed: %v", err)
	} else {
		defer func() {
			shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shCancel()
			if err := providers.Shutdown(shCtx); err != nil {
				log.Printf("telemetry shutdown error: %v", err)
			}
		}()
	}

	// Инициализация chi роутера и middlewares
	r := chi.NewRouter()
	config.SetupMiddlewares(r)

	// Инициализация обработчиков
	h := handlers.NewHandler(a.Controller, a.Hub, cfg.Storage.Dir)
	h.Routes(r)

	if providers != nil && providers.MetricsHandler != nil {
		r.Handle(cfg.Telemetry.MetricsPath, providers.MetricsHandler)
		if err := providers.ObserveInventorySize(a.Hub.Size); err != nil {
			log.Printf("Warning: failed to register inventory gauge: %v", err)
		}
	}

	// Конфигурация и запуск сервера
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      otelhttp.NewHandler(r, "pantry-http"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Printf("Received signal %v, shutting down server...", sig)
		shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shCancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return err
		}
	}

	return nil
}
