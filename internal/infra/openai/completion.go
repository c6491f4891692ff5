package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"relay-assistant/internal/infra"
)

// CompletionClient calls the chat completions API with a single user
// prompt and returns the raw text of the first choice.
type CompletionClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

func NewCompletionClient(apiKey, model string) *CompletionClient {
	return NewCompletionClientWithURL(apiKey, model, "https://api.openai.com/v1")
}

func NewCompletionClientWithURL(apiKey, model, baseURL string) *CompletionClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &CompletionClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		MaxTokens:   128,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result chatResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("completion API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion API")
	}

	return result.Choices[0].Message.Content, nil
}
