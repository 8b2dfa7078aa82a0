// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/shiftops/internal/api"
	"github.com/andresuchdata/shiftops/internal/cache"
	"github.com/andresuchdata/shiftops/internal/config"
	"github.com/andresuchdata/shiftops/internal/economics"
	"github.com/andresuchdata/shiftops/internal/repository/postgres"
	"github.com/andresuchdata/shiftops/internal/service"
	"github.com/andresuchdata/shiftops/pkg/logger"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Setup(cfg.Server.LogLevel, cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	statsCache, err := cache.NewStatisticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Statistics cache unavailable, continuing without it")
		statsCache = cache.NewNoopStatisticsCache()
	}

	policy := economics.PolicyFromConfig(cfg.Economics)
	logPolicy(policy)

	shiftService := service.NewShiftAnalyticsService(postgres.NewShiftRepository(db), statsCache, policy)

	router := api.NewRouter(&api.Services{
		ShiftAnalyticsService: shiftService,
		Ping:                  db.PingContext,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// logPolicy records which business rules this process computes with. The tax
// table in particular has changed over time and must be visible in the logs.
func logPolicy(p economics.Policy) {
	for _, r := range p.TaxRates {
		logger.Log.Info().
			Time("effective_from", r.EffectiveFrom).
			Float64("rate", r.Rate).
			Msg("Tax rate")
	}
	for _, r := range p.SalaryRules {
		logger.Log.Info().
			Time("effective_from", r.EffectiveFrom).
			Float64("base_rate", r.BaseRate).
			Float64("tier_rate", r.TierRate).
			Int("tier_threshold", r.TierThreshold).
			Msg("Salary rule")
	}
	logger.Log.Info().
		Str("exempt_organization", p.ExemptOrganization).
		Str("adjustment_promoter", p.AdjustmentPromoter).
		Time("live_since", p.LiveSince).
		Msg("Economics policy loaded")
}
