package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestNewProviders_EmptyEndpointIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		p, err := NewProviders(ctx, endpoint, "krishi-auth", false)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if p.TracerProvider == nil || p.MeterProvider == nil || p.LoggerProvider == nil {
			t.Fatalf("NewProviders(%q): all providers should be non-nil", endpoint)
		}
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("no-op Shutdown: %v", err)
		}
		// Shutdown stays callable.
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("second Shutdown: %v", err)
		}
	}
}

func TestNewProviders_RejectsBadEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"://invalid", "http://[bad", "http://"} {
		if _, err := NewProviders(ctx, endpoint, "krishi-auth", false); err == nil {
			t.Errorf("NewProviders(%q) should fail", endpoint)
		}
	}
}

func TestDialTarget(t *testing.T) {
	cases := []struct {
		endpoint      string
		insecure      bool
		wantTarget    string
		wantPlaintext bool
	}{
		{"localhost:4317", false, "localhost:4317", true},
		{"http://collector:4317", false, "collector:4317", true},
		{"https://collector:4317", false, "collector:4317", false},
		{"https://collector:4317", true, "collector:4317", true},
		{"http://collector:4317/v1/traces", false, "collector:4317", true},
	}
	for _, tc := range cases {
		target, plaintext, err := dialTarget(tc.endpoint, tc.insecure)
		if err != nil {
			t.Errorf("dialTarget(%q): %v", tc.endpoint, err)
			continue
		}
		if target != tc.wantTarget {
			t.Errorf("dialTarget(%q) target = %q, want %q", tc.endpoint, target, tc.wantTarget)
		}
		if plaintext != tc.wantPlaintext {
			t.Errorf("dialTarget(%q) plaintext = %v, want %v", tc.endpoint, plaintext, tc.wantPlaintext)
		}
	}
}

func TestSetGlobal(t *testing.T) {
	ctx := context.Background()
	p, err := NewProviders(ctx, "", "krishi-auth", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}

	oldTP := otel.GetTracerProvider()
	oldMP := otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(oldTP)
		otel.SetMeterProvider(oldMP)
	}()

	p.SetGlobal()
	if otel.GetTracerProvider() == oldTP {
		t.Error("TracerProvider should be replaced")
	}
	if otel.GetMeterProvider() == oldMP {
		t.Error("MeterProvider should be replaced")
	}
}

func TestSetGlobal_NilFieldsDoNotPanic(t *testing.T) {
	p := &Providers{Shutdown: func(context.Context) error { return nil }}
	p.SetGlobal()
}
