package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"taskflow/internal/bootstrap"
	"taskflow/internal/http/handlers"
	"taskflow/internal/http/httpapi"
	"taskflow/internal/infra"
	"taskflow/internal/infra/geoip"
	"taskflow/internal/infra/jwks"
	"taskflow/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}
	defer rt.Close()

	if _, err := rt.SeedPlans(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed plans")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	var keys *jwks.KeySet
	switch {
	case cfg.JWKSURL != "":
		keys = jwks.New(cfg.JWKSURL, nil)
	case cfg.OIDCIssuer != "":
		if keys, err = jwks.Discover(ctx, cfg.OIDCIssuer, nil); err != nil {
			logger.Fatal().Err(err).Str("issuer", cfg.OIDCIssuer).Msg("failed to discover signing keys")
		}
	}

	router := httpapi.NewRouter(httpapi.Options{
		App:            handlers.NewApp(rt.Service(), logger),
		Auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, keys),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RatePerMinute:  cfg.RateLimitPerMin,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("storage", cfg.StorageDriver).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
