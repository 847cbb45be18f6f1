// Package server assembles the HTTP surface: routes, middleware, timeouts.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/config"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/devotp"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/geocode"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/profile"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/server/handlers"
	"github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/server/middleware"
	otelx "github.com/shivxmhere/Krishi-Net-1.0-sub000/internal/telemetry/otel"
)

// Deps carries the wired services the handlers are built on.
type Deps struct {
	Flows    *handlers.FlowRegistry
	Profiles *profile.Service
	Geocoder *geocode.Client
	DevCodes devotp.Store // nil unless dev OTP mode
	Events   otelx.AuthEventEmitter
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires middleware and routes and returns a ready server.
func New(cfg *config.Config, deps Deps) *Server {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(deps.Flows, deps.Profiles, deps.DevCodes, deps.Events).Register(mux)
	handlers.NewGeoHandler(deps.Geocoder).Register(mux)

	handler := middleware.CORS(cfg.CORSOriginsList(), middleware.Logging(mux))

	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
