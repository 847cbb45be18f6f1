package otp

import (
	"context"
	"log"
	"time"
)

// Sender delivers an issued code to the farmer out of band.
type Sender interface {
	Send(ctx context.Context, identifier, code string) error
}

// LogSender is the simulated delivery channel: it logs the code instead of
// sending an SMS, and sleeps an artificial latency so the flow feels like a
// real network delivery. The logged code is a deliberate simulation artifact;
// a production sender must not log it.
type LogSender struct {
	// Delay is the artificial delivery latency. Zero disables it.
	Delay time.Duration
}

// Send logs the simulated delivery after the configured delay. Returns early
// with the context error when the caller abandons the flow mid-delivery.
func (s *LogSender) Send(ctx context.Context, identifier, code string) error {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	log.Printf("otp: simulated SMS to %s: your Krishi-Net code is %s", identifier, code)
	return nil
}
