package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"relay-assistant/internal/domain"
)

// Dispatcher runs one user interaction end to end: transcription for voice
// input, resolution for text, and the device call when an action comes out
// of it. Every call returns a fresh Outcome; there is no state shared
// between interactions.
type Dispatcher struct {
	stt      SpeechToText
	resolver Resolver
	gateway  DeviceGateway
	notifier Notifier
	baseURL  string
	logger   *slog.Logger
}

func NewDispatcher(
	stt SpeechToText,
	resolver Resolver,
	gateway DeviceGateway,
	notifier Notifier,
	baseURL string,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		stt:      stt,
		resolver: resolver,
		gateway:  gateway,
		notifier: notifier,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, in domain.Input) domain.Outcome {
	var out domain.Outcome

	switch in.Kind {
	case domain.InputManual:
		out = d.dispatchManual(ctx, in.Channel, in.State)
	case domain.InputVoice:
		out = d.dispatchVoice(ctx, in.PCM)
	case domain.InputText:
		out = d.dispatchText(ctx, in.Text)
	default:
		out = domain.Outcome{
			Message: fmt.Sprintf("unsupported input kind %q", in.Kind),
			Speak:   "Sorry, I can't handle that.",
			Level:   domain.LevelError,
		}
	}

	if err := d.notifier.Notify(ctx, out.Message); err != nil {
		d.logger.Error("notifying outcome", "error", err)
	}

	return out
}

// Ping probes the relay's base URL for connectivity.
func (d *Dispatcher) Ping(ctx context.Context) domain.Outcome {
	url := strings.TrimSuffix(d.baseURL, "/") + "/"
	ok, msg := d.gateway.Invoke(ctx, url)

	d.logger.Info("device ping", "ok", ok, "message", msg)

	level := domain.LevelInfo
	if !ok {
		level = domain.LevelError
	}
	return domain.Outcome{OK: ok, Message: msg, Speak: msg, Level: level}
}

func (d *Dispatcher) dispatchManual(ctx context.Context, ch domain.Channel, st domain.State) domain.Outcome {
	url := domain.ActionURL(d.baseURL, ch, st)
	ok, msg := d.gateway.Invoke(ctx, url)

	d.logger.Info("manual toggle", "channel", ch, "state", st, "ok", ok)

	level := domain.LevelInfo
	if !ok {
		level = domain.LevelError
	}
	return domain.Outcome{OK: ok, Message: msg, Speak: msg, Level: level}
}

func (d *Dispatcher) dispatchVoice(ctx context.Context, pcm []byte) domain.Outcome {
	if len(pcm) == 0 {
		return domain.Outcome{
			Message: "No speech detected.",
			Speak:   "No speech detected.",
			Level:   domain.LevelWarn,
		}
	}

	text, err := d.stt.Transcribe(ctx, pcm)
	if err != nil {
		d.logger.Error("transcribing", "error", err)
		return domain.Outcome{
			Message: fmt.Sprintf("Transcription failed: %v", err),
			Speak:   "Sorry, I couldn't hear that.",
			Level:   domain.LevelError,
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Outcome{
			Message: "No speech detected.",
			Speak:   "No speech detected.",
			Level:   domain.LevelWarn,
		}
	}

	d.logger.Info("transcribed", "text", text)

	return d.dispatchText(ctx, text)
}

func (d *Dispatcher) dispatchText(ctx context.Context, text string) domain.Outcome {
	res := d.resolver.Resolve(ctx, text)

	if res.Action == "" {
		d.logger.Warn("no action resolved", "text", text, "speak", res.Speak)
		return domain.Outcome{
			Message: res.Speak,
			Speak:   res.Speak,
			Level:   domain.LevelWarn,
		}
	}

	ok, msg := d.gateway.Invoke(ctx, res.Action)

	d.logger.Info("resolved action invoked", "url", res.Action, "ok", ok)

	// The visible result is the device's answer; the spoken confirmation
	// prefers the resolver's phrasing.
	speak := res.Speak
	if speak == "" {
		speak = msg
	}

	level := domain.LevelInfo
	if !ok {
		level = domain.LevelError
	}
	return domain.Outcome{OK: ok, Message: msg, Speak: speak, Level: level}
}
