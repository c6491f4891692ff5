package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"relay-assistant/config"
	"relay-assistant/internal/application"
	"relay-assistant/internal/domain"
	"relay-assistant/internal/infra/audio"
	"relay-assistant/internal/infra/openai"
	"relay-assistant/internal/infra/pushover"
	"relay-assistant/internal/infra/relay"
	"relay-assistant/internal/infra/webui"
	"relay-assistant/internal/resolver"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	whisperClient := openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language, cfg.Audio.SampleRate)
	completionClient := openai.NewCompletionClient(cfg.OpenAI.APIKey, cfg.OpenAI.CompletionModel)
	commandResolver := resolver.New(completionClient, cfg.Device.BaseURL, logger)
	gateway := relay.NewGateway()

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	dispatcher := application.NewDispatcher(
		whisperClient,
		commandResolver,
		gateway,
		notifier,
		cfg.Device.BaseURL,
		logger,
	)

	server := webui.NewServer(cfg.Web.Addr, cfg.Web.AuthToken, dispatcher, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("starting web server", "error", err)
		os.Exit(1)
	}
	defer server.Stop()

	logger.Info("relay assistant started",
		"device", cfg.Device.BaseURL,
		"addr", cfg.Web.Addr,
		"audio_source", cfg.Audio.Source,
	)

	if cfg.Audio.Source == "microphone" {
		go runMicrophone(ctx, cfg.Audio.SampleRate, dispatcher, logger)
	}

	<-ctx.Done()
}

// runMicrophone feeds locally captured utterances through the same
// dispatcher the browser uses.
func runMicrophone(ctx context.Context, sampleRate int, dispatcher *application.Dispatcher, logger *slog.Logger) {
	mic := audio.NewMicrophoneSource(sampleRate, logger)
	if err := mic.Start(ctx); err != nil {
		logger.Error("starting microphone", "error", err)
		return
	}
	defer mic.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pcm, err := mic.Capture(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("capturing audio", "error", err)
			continue
		}

		out := dispatcher.Dispatch(ctx, domain.VoiceInput(pcm))
		logger.Info("voice command result", "ok", out.OK, "level", out.Level, "message", out.Message)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
