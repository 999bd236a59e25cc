package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const gumroadProductsURL = "https://api.gumroad.com/v2/products"

// Gumroad lists products of a Gumroad store.
type Gumroad struct {
	httpClient  *http.Client
	productsURL string
	accessToken string
}

// GumroadConfig holds configuration for the Gumroad source.
type GumroadConfig struct {
	AccessToken string
	ProductsURL string // defaults to the v2 products endpoint
	Timeout     time.Duration
}

// NewGumroad creates a new Gumroad catalog source.
func NewGumroad(cfg GumroadConfig) *Gumroad {
	productsURL := cfg.ProductsURL
	if productsURL == "" {
		productsURL = gumroadProductsURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Gumroad{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		productsURL: productsURL,
		accessToken: cfg.AccessToken,
	}
}

// Name returns the source name.
func (g *Gumroad) Name() string {
	return "gumroad"
}

type gumroadResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Products []gumroadProduct `json:"products"`
}

type gumroadProduct struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Description  string `json:"description"`
}

// ListProducts returns every product in the store.
func (g *Gumroad) ListProducts(ctx context.Context) ([]CatalogItem, error) {
	q := url.Values{}
	q.Set("access_token", g.accessToken)

	body, err := getJSON(ctx, g.httpClient, g.productsURL+"?"+q.Encode(), g.Name())
	if err != nil {
		return nil, err
	}

	var resp gumroadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: gumroad: parse response: %w", ErrUnavailable, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: gumroad request failed: %s", ErrUnavailable, resp.Message)
	}

	items := make([]CatalogItem, 0, len(resp.Products))
	for _, p := range resp.Products {
		items = append(items, CatalogItem{
			ID:           p.ID,
			Name:         p.Name,
			ThumbnailURL: p.ThumbnailURL,
			Description:  p.Description,
		})
	}

	slog.Debug("fetched Gumroad products", "count", len(items))
	return items, nil
}
