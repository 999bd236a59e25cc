package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	pixabayBaseURL  = "https://pixabay.com/api/"
	pixabayPageSize = 20
)

// Query describes an image search.
type Query struct {
	Term     string
	Category string  // optional Pixabay category, e.g. "animals"
	Filter   *Filter // optional tag filter applied to hits
}

// Pixabay searches the Pixabay image API.
type Pixabay struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	rng        *rand.Rand
}

// PixabayConfig holds configuration for the Pixabay source.
type PixabayConfig struct {
	APIKey  string
	BaseURL string // defaults to https://pixabay.com/api/
	Timeout time.Duration
	Rand    *rand.Rand // defaults to the global source
}

// NewPixabay creates a new Pixabay source.
func NewPixabay(cfg PixabayConfig) *Pixabay {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = pixabayBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Pixabay{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		rng:     cfg.Rand,
	}
}

// Name returns the source name.
func (p *Pixabay) Name() string {
	return "pixabay"
}

// pixabayResponse is the search response.
type pixabayResponse struct {
	Total     int          `json:"total"`
	TotalHits int          `json:"totalHits"`
	Hits      []pixabayHit `json:"hits"`
}

type pixabayHit struct {
	ID            int    `json:"id"`
	PageURL       string `json:"pageURL"`
	Tags          string `json:"tags"`
	LargeImageURL string `json:"largeImageURL"`
}

// FindImage searches for query and returns one random matching hit.
func (p *Pixabay) FindImage(ctx context.Context, query Query) (*Media, error) {
	q := url.Values{}
	q.Set("key", p.apiKey)
	q.Set("q", query.Term)
	q.Set("image_type", "photo")
	q.Set("orientation", "horizontal")
	q.Set("safesearch", "true")
	q.Set("per_page", strconv.Itoa(pixabayPageSize))
	if query.Category != "" {
		q.Set("category", query.Category)
	}

	slog.Info("searching Pixabay", "query", query.Term, "category", query.Category)

	body, err := getJSON(ctx, p.httpClient, p.baseURL+"?"+q.Encode(), p.Name())
	if err != nil {
		return nil, err
	}

	var resp pixabayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: pixabay: parse response: %w", ErrUnavailable, err)
	}

	hits := make([]pixabayHit, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.LargeImageURL == "" {
			continue
		}
		if query.Filter != nil && !query.Filter.Match(hit.Tags) {
			continue
		}
		hits = append(hits, hit)
	}

	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: pixabay: no images found for %q", ErrUnavailable, query.Term)
	}

	hit := hits[intN(p.rng, len(hits))]
	slog.Info("selected image", "url", hit.LargeImageURL, "tags", hit.Tags)

	return &Media{
		ImageURL: hit.LargeImageURL,
		Tags:     hit.Tags,
		PageURL:  hit.PageURL,
		Query:    query.Term,
	}, nil
}

func intN(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
