// Package source fetches post material from public content APIs: images from
// Pixabay, products from Gumroad and quotes from ZenQuotes.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnavailable is returned when a content API cannot provide material.
var ErrUnavailable = errors.New("source unavailable")

// Media is a candidate image found by a media source.
type Media struct {
	ImageURL string
	Tags     string
	PageURL  string
	Query    string
}

// MediaSource finds an image for a search query.
type MediaSource interface {
	// Name returns the name of this source.
	Name() string

	// FindImage returns one image matching query.
	FindImage(ctx context.Context, query Query) (*Media, error)
}

// CatalogItem is a listed product.
type CatalogItem struct {
	ID           string
	Name         string
	ThumbnailURL string
	Description  string
}

// CatalogSource lists products.
type CatalogSource interface {
	Name() string
	ListProducts(ctx context.Context) ([]CatalogItem, error)
}

// CaptionSource provides free text to accompany a post.
type CaptionSource interface {
	Name() string
	Caption(ctx context.Context) (string, error)
}

// getJSON performs a GET and returns the body of a 200 response.
func getJSON(ctx context.Context, client *http.Client, url, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: create request: %w", ErrUnavailable, name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: send request: %w", ErrUnavailable, name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %w", ErrUnavailable, name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUnavailable, name, resp.StatusCode)
	}

	return body, nil
}
