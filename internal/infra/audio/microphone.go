//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// MicrophoneSource captures one utterance at a time from the default input
// device. Recording stops after a second of silence or ten seconds total.
type MicrophoneSource struct {
	sampleRate int
	logger     *slog.Logger
	stream     *portaudio.Stream
	frames     []int16
}

func NewMicrophoneSource(sampleRate int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate: sampleRate,
		logger:     logger,
		frames:     make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, m.frames)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sampleRate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

// Capture records until the speaker goes quiet and returns the raw
// little-endian PCM16 samples.
func (m *MicrophoneSource) Capture(ctx context.Context) ([]byte, error) {
	samples := make([]int16, 0, m.sampleRate*5)
	silenceThreshold := int16(500)
	silentSamples := 0
	maxSilentSamples := m.sampleRate // one second

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		samples = append(samples, m.frames...)

		isSilent := true
		for _, sample := range m.frames {
			if sample > silenceThreshold || sample < -silenceThreshold {
				isSilent = false
				break
			}
		}

		if isSilent {
			silentSamples += len(m.frames)
		} else {
			silentSamples = 0
		}

		if silentSamples > maxSilentSamples && len(samples) > m.sampleRate {
			break
		}

		if len(samples) > m.sampleRate*10 {
			break
		}
	}

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(s))
	}
	return pcm, nil
}
