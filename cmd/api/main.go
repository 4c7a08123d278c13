package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"example.com/riserite/internal/api"
	"example.com/riserite/internal/app"
	"example.com/riserite/internal/awsclient"
	"example.com/riserite/internal/config"
	"example.com/riserite/internal/motivation"
	httptransport "example.com/riserite/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialise store: %v", err)
	}
	defer components.Close()

	opts := []api.Option{api.WithVersion(cfg.ServiceVersion), api.WithMetricsEndpoint()}
	awsCfg, err := awsclient.Load(ctx, awsclient.Settings{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		log.Printf("motivation track presigning disabled: %v", err)
	} else {
		resolver := motivation.NewResolver(awsclient.NewPresignClient(awsCfg), cfg.MotivationURLTTL)
		opts = append(opts, api.WithTrackResolver(resolver))
	}

	router := mux.NewRouter()
	limiter := httptransport.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst,
		httptransport.TrustForwardedFor(cfg.TrustForwardedFor))
	router.Use(
		httptransport.RequestID,
		httptransport.Logger(log.New(os.Stderr, "[http] ", log.LstdFlags)),
		limiter.Middleware,
	)
	api.NewHandler(components.Service, opts...).RegisterRoutes(router)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", httptransport.RequestIDHeader}),
		handlers.ExposedHeaders([]string{httptransport.RequestIDHeader}),
		handlers.AllowCredentials(),
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, cors(httptransport.Metrics(router)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("riserite api listening on %s (store=%s)", cfg.HTTPAddress, components.Store.Backend())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
