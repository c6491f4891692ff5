package application

import (
	"context"

	"relay-assistant/internal/domain"
)

// SpeechToText turns raw 16-bit mono PCM samples into a transcript.
type SpeechToText interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

// Resolver maps free-form user text to a device action and a spoken reply.
// It never fails: resolution errors come back as a no-action Resolution
// carrying a diagnostic Speak.
type Resolver interface {
	Resolve(ctx context.Context, text string) domain.Resolution
}

// DeviceGateway performs one bounded HTTP call against the relay.
type DeviceGateway interface {
	Invoke(ctx context.Context, url string) (bool, string)
}

// Notifier pushes an outcome message to an external channel. Best effort.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}
