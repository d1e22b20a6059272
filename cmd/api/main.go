package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/clientdesk/clientdesk-backend/config"
	"github.com/clientdesk/clientdesk-backend/internal/bootstrap"
	"github.com/clientdesk/clientdesk-backend/internal/db"
	"github.com/clientdesk/clientdesk-backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()
	pool, err := db.Open(ctx, db.Options{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "clientdesk-api",
		Cfg:         cfg,
		DB:          pool,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.App.Environment).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}
