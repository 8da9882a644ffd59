// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ada/internal/config"
	httptransport "ada/internal/http"
	"ada/internal/infra"
	"ada/internal/maps"
	"ada/internal/modules/auditlog"
	"ada/internal/modules/pricing"
	"ada/internal/modules/profile"
	"ada/internal/modules/tenant"
	"ada/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer dbPool.Close()

	if err := infra.Migrate(ctx, dbPool, migrations.FS); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	tokens := infra.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)

	tenantSvc := tenant.NewService(tenant.NewStore(dbPool), tokens, tenant.WithLogger(logger))

	profileOpts := []profile.Option{profile.WithLogger(logger)}
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.Warn("redis unavailable, profile cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		profileOpts = append(profileOpts, profile.WithCache(profile.NewRedisCache(redisClient, cfg.Redis.CacheTTL)))
	}
	profileSvc := profile.NewService(profile.NewStore(dbPool), cfg.ProfileDefaults, profileOpts...)

	logStore := auditlog.NewStore(dbPool)

	deps := httptransport.ServerDeps{
		Verifier:    tokens,
		Tenants:     tenantSvc,
		Profiles:    profileSvc,
		Logs:        logStore,
		Logger:      logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}

	pricingOpts := []pricing.Option{pricing.WithLogger(logger)}
	if cfg.Maps.APIKey != "" {
		mileage, err := maps.NewMileageService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		pricingOpts = append(pricingOpts, pricing.WithMileageEstimator(mileage))
		deps.Mileage = mileage
	}
	deps.Pricing = pricing.NewService(profileSvc, logStore, pricingOpts...)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
