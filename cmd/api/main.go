package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/bootstrap"
	"github.com/address-normalizer/app/config"
	"github.com/address-normalizer/app/controllers"
	"github.com/address-normalizer/routes"
)

func main() {
	configFile := flag.String("config", "", "path to app.yaml (default: ./config/app.yaml or ./app.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting address normalizer",
		zap.String("env", cfg.App.Env),
		zap.String("cache", cfg.Cache.Backend),
		zap.Bool("meilisearch", cfg.Meilisearch.Enabled))

	app, err := bootstrap.Build(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router,
		controllers.NewAddressController(app.Addresses, app.Cities, logger),
		controllers.NewAdminController(app.Admin, logger),
		logger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := app.Close(ctx); err != nil {
		logger.Error("release backends", zap.Error(err))
	}

	logger.Info("server exited")
}
