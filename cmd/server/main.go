package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/linechart/internal/api"
	"github.com/inamate/linechart/internal/config"
	"github.com/inamate/linechart/internal/document"
	mw "github.com/inamate/linechart/internal/middleware"
	"github.com/inamate/linechart/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := session.NewHub(cfg.MaxSeriesLength)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	// Start with the sample chart so a fresh server has something to show
	sample, err := hub.Create(ctx, document.NewSampleChart("", cfg.DefaultWidth, cfg.DefaultHeight))
	if err != nil {
		slog.Error("create sample chart", "error", err)
		os.Exit(1)
	}

	handler := api.NewHandler(hub, api.Options{
		DefaultWidth:   cfg.DefaultWidth,
		DefaultHeight:  cfg.DefaultHeight,
		OriginPatterns: cfg.OriginHosts(),
	})

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	handler.Register(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)

		cancel()
		<-hubDone
	}()

	slog.Info("server starting", "addr", addr, "origins", cfg.Origins(), "sample_chart", sample.ID)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
}
