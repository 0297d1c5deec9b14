package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"pipeline-insights-go/internal/api"
	"pipeline-insights-go/internal/config"
	"pipeline-insights-go/internal/llm"
	"pipeline-insights-go/internal/logger"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "pipeline-insights-go").Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	gen := llm.New(cfg.LLM)
	if _, mock := gen.(*llm.Mock); mock {
		log.Warn("llm gateway not configured, narrative sections use deterministic fallback")
	}

	server := api.NewServer(cfg, gen)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
