package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const zenQuotesURL = "https://zenquotes.io/api/random"

// ZenQuotes serves random quotes as captions.
type ZenQuotes struct {
	httpClient *http.Client
	url        string
}

// ZenQuotesConfig holds configuration for the quote source.
type ZenQuotesConfig struct {
	URL     string
	Timeout time.Duration
}

// NewZenQuotes creates a new quote source.
func NewZenQuotes(cfg ZenQuotesConfig) *ZenQuotes {
	u := cfg.URL
	if u == "" {
		u = zenQuotesURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ZenQuotes{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url: u,
	}
}

// Name returns the source name.
func (z *ZenQuotes) Name() string {
	return "zenquotes"
}

type zenQuote struct {
	Quote  string `json:"q"`
	Author string `json:"a"`
}

// Caption returns a random quote formatted as `"quote" – author`.
func (z *ZenQuotes) Caption(ctx context.Context) (string, error) {
	body, err := getJSON(ctx, z.httpClient, z.url, z.Name())
	if err != nil {
		return "", err
	}

	var quotes []zenQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return "", fmt.Errorf("%w: zenquotes: parse response: %w", ErrUnavailable, err)
	}
	if len(quotes) == 0 || quotes[0].Quote == "" {
		return "", fmt.Errorf("%w: zenquotes: empty response", ErrUnavailable)
	}

	return FormatQuote(quotes[0].Quote, quotes[0].Author), nil
}
