package main

import (
	"context"
	"errors"
	"game-store/app"
	"game-store/config"
	_ "game-store/docs"
	"game-store/logger"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title Game Store API
// @version 1.0
// @description Cart, checkout and order history for the game store.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.LoadConfig()

	logger.New(logger.Options{
		Service:   "game-store",
		Env:       config.AppConfig.AppEnv,
		Level:     config.AppConfig.LogLevel,
		AddSource: config.AppConfig.AppEnv != "production",
	})

	if config.AppConfig.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config.AppConfig)
	if err != nil {
		slog.Error("failed to start", slog.Any("err", err))
		os.Exit(1)
	}
	defer application.Close()

	srv := &http.Server{
		Addr:              ":" + config.AppConfig.Port,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("swagger", "http://localhost:"+config.AppConfig.Port+"/swagger/index.html"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("err", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("err", err))
	}
}
