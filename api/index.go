package api

import (
	"context"
	"game-store/app"
	"game-store/config"
	"game-store/logger"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	application *app.App
	initErr     error
	once        sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		config.LoadConfig()
		logger.New(logger.Options{
			Service: "game-store",
			Env:     config.AppConfig.AppEnv,
			Level:   config.AppConfig.LogLevel,
		})

		application, initErr = app.New(context.Background(), config.AppConfig)
		if initErr != nil {
			slog.Error("failed to initialise app", slog.Any("err", initErr))
		}
	})
}

// Handler is the serverless entrypoint.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Retry-After", "1")
		http.Error(w, `{"success":false,"message":"Service temporarily unavailable, please retry"}`, http.StatusServiceUnavailable)
		return
	}
	application.Router.ServeHTTP(w, r)
}
