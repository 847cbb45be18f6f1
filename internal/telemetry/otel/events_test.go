package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type recordCapture struct {
	rec otellog.Record
}

func (r *recordCapture) Emit(_ context.Context, rec otellog.Record) {
	r.rec = rec
}

func TestNewAuthEventEmitter_NilProvider(t *testing.T) {
	em := NewAuthEventEmitter(nil)
	if em == nil {
		t.Fatal("NewAuthEventEmitter(nil) returned nil")
	}
	// No-op emitter must not panic.
	em.Emit(context.Background(), AuthEvent{Action: "login"})
}

func TestNewAuthEventEmitter_WithProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewAuthEventEmitter(provider)
	em.Emit(context.Background(), AuthEvent{Action: "login", Outcome: "ok"})
}

func TestEmit_RecordMapping(t *testing.T) {
	cap := &recordCapture{}
	em := newAuthEventEmitterWithLogger(cap)
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	em.Emit(context.Background(), AuthEvent{
		Action:     "otp_issued",
		Outcome:    "ok",
		UserID:     "u1",
		Identifier: "9999999999",
		At:         at,
	})
	rec := cap.rec

	if !rec.Timestamp().Equal(at) {
		t.Errorf("timestamp = %v, want %v", rec.Timestamp(), at)
	}
	if got := rec.Body().AsString(); got != "otp_issued" {
		t.Errorf("body = %q, want %q", got, "otp_issued")
	}
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"action": "otp_issued", "outcome": "ok",
		"user_id": "u1", "identifier": "9999999999",
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attr %q = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestEmit_EmptyFieldsOmitted(t *testing.T) {
	cap := &recordCapture{}
	em := newAuthEventEmitterWithLogger(cap)

	before := time.Now().UTC()
	em.Emit(context.Background(), AuthEvent{Action: "logout"})
	after := time.Now().UTC()
	rec := cap.rec

	if ts := rec.Timestamp(); ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp = %v, want between %v and %v", ts, before, after)
	}
	attrs := make(map[string]string)
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	if _, ok := attrs["user_id"]; ok {
		t.Error("user_id should be omitted when empty")
	}
	if _, ok := attrs["outcome"]; ok {
		t.Error("outcome should be omitted when empty")
	}
	if attrs["action"] != "logout" {
		t.Errorf("action = %q, want %q", attrs["action"], "logout")
	}
}
