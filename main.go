package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carbon-tracker/internal/advisor"
	"carbon-tracker/internal/config"
	"carbon-tracker/internal/database"
	"carbon-tracker/internal/llm"
	"carbon-tracker/internal/logger"
	"carbon-tracker/internal/router"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("CFT_CONFIG"); p != "" {
		configPath = p
	}

	// load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Initialize(cfg.Log)

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// external text generation is optional
	gen, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("init llm client")
	}
	if gen != nil {
		log.Info().Str("provider", gen.Provider()).Msg("external recommendations enabled")
	} else {
		log.Info().Msg("no llm api key, using rule-based recommendations")
	}
	adv := advisor.New(gen, advisor.Options{
		InsightRecent:       cfg.App.InsightRecent,
		PromptActivityLimit: cfg.App.PromptActivityLimit,
	})

	// setup router
	r := router.SetupRouter(cfg, db, adv)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("run server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
