// Package relay talks to the relay board itself. The device exposes plain
// GET endpoints and answers with a short text body, so the client is a
// single bounded request with no retries.
package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

type Gateway struct {
	httpClient *http.Client
}

func NewGateway() *Gateway {
	return NewGatewayWithTimeout(defaultTimeout)
}

func NewGatewayWithTimeout(timeout time.Duration) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Invoke performs one GET against url. A 200 yields the trimmed response
// body; any other status yields "HTTP <code>"; transport failures yield
// "Error: <description>".
func (g *Gateway) Invoke(ctx context.Context, url string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Sprintf("Error: %v", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false, fmt.Sprintf("Error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return false, fmt.Sprintf("Error: %v", err)
	}

	return true, strings.TrimSpace(string(body))
}
