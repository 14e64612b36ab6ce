package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client performs one HTTP GET against the bot endpoint per user message.
type Client struct {
	baseURL    string
	decoder    ResponseDecoder
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client. The decoder decides how response
// bodies are turned into reply text.
func NewClient(baseURL string, decoder ResponseDecoder, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		decoder: decoder,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Ask sends the user text to the bot endpoint as the "m" query parameter
// and returns the decoded reply.
func (c *Client) Ask(ctx context.Context, userText string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create bot request: %w", err)
	}

	query := url.Values{}
	query.Set("m", userText)
	req.URL.RawQuery = query.Encode()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach bot endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read bot response: %w", err)
	}

	c.logger.Debug("Bot endpoint responded",
		zap.Int("status", resp.StatusCode),
		zap.Int("bodyBytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	return c.decoder.Decode(resp.StatusCode, body)
}
