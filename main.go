package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/api/handlers"
	"github.com/linesmerrill/ai-court-api/api/scheduler"
	"github.com/linesmerrill/ai-court-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	//initialize store and router
	if err := a.Initialize(); err != nil {
		log.Fatal(err)
	}

	s := scheduler.NewScheduler(a.Engine(), a.Config.DebateSweepSpec)
	if err := s.Start(); err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%v", a.Config.Port), Handler: a.Router}
	go func() {
		zap.S().Infow("ai-court-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"store", a.Config.StoreBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("server shutdown failed", "error", err)
	}
	a.Close(ctx)
}
