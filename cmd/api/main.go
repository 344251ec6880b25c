package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketshare/internal/api"
	"marketshare/internal/config"
	"marketshare/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	settingsPath := flag.String("config", "", "Optional server settings file (YAML); API_* environment variables override it")
	flag.Parse()

	settings, err := config.LoadServerSettings(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load settings: %v\n", err)
		os.Exit(1)
	}

	var log *zap.Logger
	if settings.Production() {
		gin.SetMode(gin.ReleaseMode)
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cache := data.NewRunCache(settings.RunTTL)
	go cache.Cleanup(ctx, 5*time.Minute)

	router, err := api.NewRouter(api.Deps{
		Settings: settings,
		Logger:   log,
		Cache:    cache,
		Registry: reg,
	})
	if err != nil {
		log.Fatal("build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting API server", zap.String("addr", srv.Addr), zap.String("env", settings.Env))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
