// Package bluesky is a small AT Protocol client covering the calls the bots
// need: sessions, blob uploads, record creation and author feeds.
package bluesky

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultPDS = "https://bsky.social"

var (
	// ErrAuth is returned when the network rejects a handle/password pair or token.
	ErrAuth = errors.New("authentication failed")
	// ErrUpload is returned when a blob upload is not accepted.
	ErrUpload = errors.New("blob upload failed")
	// ErrPublish is returned when record creation is not accepted.
	ErrPublish = errors.New("record creation failed")
	// ErrFeed is returned when an author feed cannot be read.
	ErrFeed = errors.New("feed fetch failed")
)

// APIError carries the status and body of a non-success XRPC response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

// Client talks to a PDS over XRPC. It holds no session state; callers pass
// the Session returned by CreateSession to every authenticated call.
type Client struct {
	pds         string
	httpClient  *http.Client
	authTimeout time.Duration
}

// Config holds configuration for the client.
type Config struct {
	PDS         string        // defaults to https://bsky.social
	Timeout     time.Duration // per-call timeout, defaults to 15s
	AuthTimeout time.Duration // session creation timeout, defaults to 10s
}

// NewClient creates a new client.
func NewClient(cfg Config) *Client {
	pds := cfg.PDS
	if pds == "" {
		pds = defaultPDS
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	authTimeout := cfg.AuthTimeout
	if authTimeout <= 0 {
		authTimeout = 10 * time.Second
	}

	return &Client{
		pds: pds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		authTimeout: authTimeout,
	}
}

// Session is an authenticated session. It is never refreshed.
type Session struct {
	AccessToken string
	DID         string
	Handle      string
}

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	DID       string `json:"did"`
	Handle    string `json:"handle"`
	AccessJwt string `json:"accessJwt"`
}

// CreateSession exchanges a handle and app password for a Session.
func (c *Client) CreateSession(ctx context.Context, identifier, password string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.authTimeout)
	defer cancel()

	body, err := json.Marshal(createSessionRequest{Identifier: identifier, Password: password})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/xrpc/com.atproto.server.createSession", "", body, "application/json", &resp); err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrAuth, identifier, err)
	}
	if resp.AccessJwt == "" || resp.DID == "" {
		return nil, fmt.Errorf("%w for %s: session response missing token or did", ErrAuth, identifier)
	}

	slog.Debug("authenticated with Bluesky",
		"handle", resp.Handle,
		"did", resp.DID,
	)

	return &Session{
		AccessToken: resp.AccessJwt,
		DID:         resp.DID,
		Handle:      resp.Handle,
	}, nil
}

// GetSession asks the PDS who the token belongs to.
func (c *Client) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, "/xrpc/com.atproto.server.getSession", accessToken, nil, "", &resp); err != nil {
		return nil, fmt.Errorf("%w: get session: %w", ErrAuth, err)
	}
	return &Session{
		AccessToken: accessToken,
		DID:         resp.DID,
		Handle:      resp.Handle,
	}, nil
}

// BlobRef represents an AT Protocol blob reference for uploaded content.
type BlobRef struct {
	Type string `json:"$type"`
	Ref  struct {
		Link string `json:"$link"`
	} `json:"ref"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

type uploadBlobResponse struct {
	Blob BlobRef `json:"blob"`
}

// UploadBlob uploads raw bytes as a blob and returns a reference.
// The blob is garbage collected server-side if no record references it.
func (c *Client) UploadBlob(ctx context.Context, s *Session, data []byte, mimeType string) (*BlobRef, error) {
	if s == nil || s.AccessToken == "" {
		return nil, fmt.Errorf("%w: not authenticated", ErrUpload)
	}

	var resp uploadBlobResponse
	if err := c.do(ctx, http.MethodPost, "/xrpc/com.atproto.repo.uploadBlob", s.AccessToken, data, mimeType, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if resp.Blob.Ref.Link == "" {
		return nil, fmt.Errorf("%w: response has no blob reference", ErrUpload)
	}

	slog.Debug("uploaded blob", "size", resp.Blob.Size, "mime_type", resp.Blob.MimeType)
	return &resp.Blob, nil
}

type createRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	Record     any    `json:"record"`
}

// RecordRef is a strong reference to a record.
type RecordRef struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// CreateRecord creates a record in the session's repo.
func (c *Client) CreateRecord(ctx context.Context, s *Session, collection string, record any) (*RecordRef, error) {
	if s == nil || s.AccessToken == "" {
		return nil, fmt.Errorf("%w: not authenticated", ErrPublish)
	}

	body, err := json.Marshal(createRecordRequest{
		Repo:       s.DID,
		Collection: collection,
		Record:     record,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal record: %w", ErrPublish, err)
	}

	var resp RecordRef
	if err := c.do(ctx, http.MethodPost, "/xrpc/com.atproto.repo.createRecord", s.AccessToken, body, "application/json", &resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPublish, collection, err)
	}
	return &resp, nil
}

type authorFeedResponse struct {
	Feed []struct {
		Post RecordRef `json:"post"`
	} `json:"feed"`
}

// LatestPost returns the most recent post in actor's feed, or nil when the
// feed is empty.
func (c *Client) LatestPost(ctx context.Context, s *Session, actor string) (*RecordRef, error) {
	q := url.Values{}
	q.Set("actor", actor)
	q.Set("limit", "1")

	token := ""
	if s != nil {
		token = s.AccessToken
	}

	var resp authorFeedResponse
	if err := c.do(ctx, http.MethodGet, "/xrpc/app.bsky.feed.getAuthorFeed?"+q.Encode(), token, nil, "", &resp); err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrFeed, actor, err)
	}
	if len(resp.Feed) == 0 {
		return nil, nil
	}

	post := resp.Feed[0].Post
	return &post, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, contentType string, result any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.pds+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	return nil
}
