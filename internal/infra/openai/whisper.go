package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"relay-assistant/internal/infra/wavenc"
)

// WhisperClient packages raw PCM samples into a WAV container and submits
// them to the transcription API. One attempt per call; failures are
// terminal for the interaction.
type WhisperClient struct {
	apiKey     string
	language   string
	sampleRate int
	httpClient *http.Client
	baseURL    string
}

func NewWhisperClient(apiKey, language string, sampleRate int) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, sampleRate, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language string, sampleRate int, baseURL string) *WhisperClient {
	if sampleRate == 0 {
		sampleRate = 16000
	}
	return &WhisperClient{
		apiKey:     apiKey,
		language:   language,
		sampleRate: sampleRate,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	wavData, err := wavenc.Encode(pcm, c.sampleRate)
	if err != nil {
		return "", fmt.Errorf("encoding wav: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}

	if _, err = part.Write(wavData); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	if err = writer.WriteField("model", "whisper-1"); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}

	if c.language != "" {
		if err = writer.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("writing language field: %w", err)
		}
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return strings.TrimSpace(result.Text), nil
}
