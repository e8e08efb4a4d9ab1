package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"minitweet/internal/config"
	"minitweet/internal/database"
	"minitweet/internal/logging"
	"minitweet/internal/store"
	"minitweet/internal/web"
)

func main() {
	cfg := config.Load()

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogstashAddr)
	if err != nil {
		// Logstash being down should not keep the site from starting.
		logger.WithError(err).Warn("Logstash unavailable, logging to stdout only")
	}
	defer closer.Close()

	if cfg.SessionKey == config.DevSessionKey {
		logger.Warn("SESSION_KEY is not set, using the development key")
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := web.New(web.Options{
		Store:                store.New(db),
		Sessions:             web.NewCookieStore([]byte(cfg.SessionKey), cfg.SessionMaxAge, cfg.SecureCookies),
		Logger:               logger,
		Registry:             reg,
		BcryptCost:           cfg.BcryptCost,
		SlowRequestThreshold: cfg.SlowRequestThreshold,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up server")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.Addr,
			"postgres": cfg.UsesPostgres(),
		}).Info("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
