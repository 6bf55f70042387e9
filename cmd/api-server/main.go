package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bookhub/internal/server"
	"bookhub/pkg/database"
	"bookhub/pkg/logger"
	"bookhub/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	authCfg, err := utils.LoadAuthConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("auth config")
	}

	dbCfg := database.DefaultConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to open db")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Log.WithError(err).Fatal("db migrate failed")
	}

	router := server.New(db, authCfg, true)

	srvCfg := utils.LoadServerConfig()
	httpSrv := &http.Server{
		Addr:         srvCfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithField("addr", srvCfg.Addr).Info("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.WithField("signal", sig.String()).Info("shutdown signal received")
	case err := <-errCh:
		logger.Log.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("http shutdown error")
	}
	logger.Log.Info("server stopped")
}
