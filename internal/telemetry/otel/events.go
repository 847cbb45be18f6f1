package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// AuthEvent is one auth-flow outcome worth a log record: a code issued, a
// verification attempt, a login, a logout.
type AuthEvent struct {
	Action     string // "otp_issued", "login", "register", "logout", ...
	Outcome    string // "ok" or the failure class
	UserID     string
	Identifier string
	At         time.Time
}

// AuthEventEmitter records auth events; implementations must be safe for
// concurrent use.
type AuthEventEmitter interface {
	Emit(ctx context.Context, ev AuthEvent)
}

// recordLogger is the slice of otellog.Logger the emitter needs; narrowed so
// tests can capture records.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewAuthEventEmitter returns an emitter writing records through the given
// provider, or a no-op emitter when provider is nil.
func NewAuthEventEmitter(provider *sdklog.LoggerProvider) AuthEventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &logEmitter{logger: provider.Logger("krishi.auth")}
}

// newAuthEventEmitterWithLogger exists for tests.
func newAuthEventEmitterWithLogger(l recordLogger) AuthEventEmitter {
	return &logEmitter{logger: l}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, AuthEvent) {}

type logEmitter struct {
	logger recordLogger
}

// Emit converts the event to an OTel log record. Empty fields are omitted;
// a zero timestamp is replaced with the current time.
func (e *logEmitter) Emit(ctx context.Context, ev AuthEvent) {
	rec := otellog.Record{}
	if ev.At.IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	} else {
		rec.SetTimestamp(ev.At)
	}
	if ev.Action != "" {
		rec.SetBody(otellog.StringValue(ev.Action))
		rec.AddAttributes(otellog.String("action", ev.Action))
	}
	if ev.Outcome != "" {
		rec.AddAttributes(otellog.String("outcome", ev.Outcome))
	}
	if ev.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", ev.UserID))
	}
	if ev.Identifier != "" {
		rec.AddAttributes(otellog.String("identifier", ev.Identifier))
	}
	e.logger.Emit(ctx, rec)
}
