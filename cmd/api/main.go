package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stockops-backend/pkg/container"
	"stockops-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional, real deployments configure via environment.
		logger.Debug("no .env file found", nil)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := serve(); err != nil {
		logger.Error("server exited with error", err)
		os.Exit(1)
	}
}

func serve() error {
	ctx := context.Background()

	c, err := container.New(ctx)
	if err != nil {
		return err
	}
	defer c.Cleanup()

	router := SetupRouter(c)
	server := &http.Server{
		Addr:         ":" + c.Config.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", map[string]interface{}{"port": c.Config.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
