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

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/auth"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/config"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/devotp"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/directory"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/geocode"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/kvstore"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/otp"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/profile"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/security"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/server"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/server/handlers"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/session"
	otelx "github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otelx.NewProviders(ctx, cfg.OTLPEndpoint, "krishi-auth", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	var kv kvstore.Store
	if cfg.DatabaseURL != "" {
		pg, err := kvstore.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pg.Close()
		kv = pg
		log.Println("using postgres store")
	} else {
		kv = kvstore.NewMemoryStore()
		log.Println("DATABASE_URL not set; using in-memory store")
	}

	if cfg.JWTSecret == "" {
		log.Println("warning: JWT_SECRET is empty; tokens are signed with an empty key")
	}

	dir := directory.New(kv)
	sessions := session.New(kv)
	tokens := security.NewTokenProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	sender := &otp.LogSender{Delay: cfg.SendDelay()}

	flows := handlers.NewFlowRegistry(func() *auth.Flow {
		return auth.NewFlow(dir, sessions, sender, tokens, hasher, cfg.OTPValidity())
	})

	var devCodes devotp.Store
	if cfg.OTPReturnToClient {
		devCodes = devotp.NewMemoryStore()
		log.Println("dev OTP mode enabled; issued codes are returned to clients")
	}

	srv := server.New(cfg, server.Deps{
		Flows:    flows,
		Profiles: profile.NewService(sessions, dir),
		Geocoder: geocode.NewClient(cfg.GeocodeBaseURL, nil),
		DevCodes: devCodes,
		Events:   otelx.NewAuthEventEmitter(providers.LoggerProvider),
	})

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
