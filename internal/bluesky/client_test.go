package bluesky

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{PDS: server.URL, Timeout: 5 * time.Second, AuthTimeout: 5 * time.Second})
}

func TestNewClient(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, defaultPDS, c.pds)
	assert.Equal(t, 15*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 10*time.Second, c.authTimeout)
}

func TestClient_CreateSession(t *testing.T) {
	t.Run("successful authentication", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/xrpc/com.atproto.server.createSession", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req createSessionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test.bsky.social", req.Identifier)
			assert.Equal(t, "app-pass", req.Password)

			json.NewEncoder(w).Encode(sessionResponse{
				DID:       "did:plc:test123",
				Handle:    "test.bsky.social",
				AccessJwt: "test-jwt-token",
			})
		})

		s, err := c.CreateSession(context.Background(), "test.bsky.social", "app-pass")
		require.NoError(t, err)
		assert.Equal(t, "test-jwt-token", s.AccessToken)
		assert.Equal(t, "did:plc:test123", s.DID)
		assert.Equal(t, "test.bsky.social", s.Handle)
	})

	t.Run("authentication failure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"AuthenticationRequired","message":"Invalid identifier or password"}`))
		})

		s, err := c.CreateSession(context.Background(), "test.bsky.social", "wrong")
		assert.Nil(t, s)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAuth))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sessionResponse{DID: "did:plc:x"})
		})

		_, err := c.CreateSession(context.Background(), "x", "y")
		assert.True(t, errors.Is(err, ErrAuth))
	})
}

func TestClient_GetSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/xrpc/com.atproto.server.getSession", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(sessionResponse{DID: "did:plc:me", Handle: "me.bsky.social"})
	})

	s, err := c.GetSession(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "did:plc:me", s.DID)

	_, err = c.GetSession(context.Background(), "bad")
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestClient_UploadBlob(t *testing.T) {
	t.Run("uploads raw bytes", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/xrpc/com.atproto.repo.uploadBlob", r.URL.Path)
			assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, []byte{0xff, 0xd8, 0xff}, body)

			w.Write([]byte(`{"blob":{"$type":"blob","ref":{"$link":"bafkrei123"},"mimeType":"image/jpeg","size":3}}`))
		})

		blob, err := c.UploadBlob(context.Background(), &Session{AccessToken: "tok", DID: "did:plc:x"}, []byte{0xff, 0xd8, 0xff}, "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "blob", blob.Type)
		assert.Equal(t, "bafkrei123", blob.Ref.Link)
		assert.Equal(t, 3, blob.Size)
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		})

		_, err := c.UploadBlob(context.Background(), &Session{AccessToken: "tok"}, []byte("x"), "image/jpeg")
		assert.True(t, errors.Is(err, ErrUpload))
	})

	t.Run("requires session", func(t *testing.T) {
		c := NewClient(Config{})
		_, err := c.UploadBlob(context.Background(), nil, []byte("x"), "image/jpeg")
		assert.True(t, errors.Is(err, ErrUpload))
	})
}

func TestClient_CreateRecord(t *testing.T) {
	t.Run("scopes record to session repo", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/xrpc/com.atproto.repo.createRecord", r.URL.Path)

			var req struct {
				Repo       string          `json:"repo"`
				Collection string          `json:"collection"`
				Record     json.RawMessage `json:"record"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "did:plc:me", req.Repo)
			assert.Equal(t, LikeCollection, req.Collection)
			assert.JSONEq(t, `{"$type":"app.bsky.feed.like","subject":{"uri":"at://x","cid":"c"},"createdAt":"2026-01-02T03:04:05Z"}`, string(req.Record))

			json.NewEncoder(w).Encode(RecordRef{URI: "at://did:plc:me/app.bsky.feed.like/1", CID: "bafy"})
		})

		like := NewLikeRecord(RecordRef{URI: "at://x", CID: "c"}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
		ref, err := c.CreateRecord(context.Background(), &Session{AccessToken: "tok", DID: "did:plc:me"}, LikeCollection, like)
		require.NoError(t, err)
		assert.Equal(t, "bafy", ref.CID)
	})

	t.Run("rejected record", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"InvalidRequest"}`))
		})

		_, err := c.CreateRecord(context.Background(), &Session{AccessToken: "tok"}, PostCollection, PostRecord{})
		assert.True(t, errors.Is(err, ErrPublish))
		assert.Contains(t, err.Error(), "InvalidRequest")
	})
}

func TestClient_LatestPost(t *testing.T) {
	t.Run("returns first feed item", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/xrpc/app.bsky.feed.getAuthorFeed", r.URL.Path)
			assert.Equal(t, "cats.bsky.social", r.URL.Query().Get("actor"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			w.Write([]byte(`{"feed":[{"post":{"uri":"at://did:plc:c/app.bsky.feed.post/abc","cid":"bafy1"}}]}`))
		})

		post, err := c.LatestPost(context.Background(), &Session{AccessToken: "tok"}, "cats.bsky.social")
		require.NoError(t, err)
		require.NotNil(t, post)
		assert.Equal(t, "at://did:plc:c/app.bsky.feed.post/abc", post.URI)
		assert.Equal(t, "bafy1", post.CID)
	})

	t.Run("empty feed", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"feed":[]}`))
		})

		post, err := c.LatestPost(context.Background(), &Session{AccessToken: "tok"}, "new.bsky.social")
		assert.NoError(t, err)
		assert.Nil(t, post)
	})

	t.Run("unknown actor", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := c.LatestPost(context.Background(), &Session{AccessToken: "tok"}, "ghost")
		assert.True(t, errors.Is(err, ErrFeed))
	})
}

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2026, 3, 4, 10, 20, 30, 123456789, loc)
	assert.Equal(t, "2026-03-04T05:20:30Z", FormatTimestamp(ts))
}

func TestPostURL(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"at://did:plc:xyz/app.bsky.feed.post/abc123", "https://bsky.app/profile/me.bsky.social/post/abc123"},
		{"did:plc:xyz/app.bsky.feed.post/rkey", "https://bsky.app/profile/me.bsky.social/post/rkey"},
		{"at://did:plc:xyz", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.expected, PostURL("me.bsky.social", tt.uri))
		})
	}
}

// Integration test - requires Bluesky credentials
func TestClient_Integration(t *testing.T) {
	handle := os.Getenv("BLUESKY_HANDLE")
	password := os.Getenv("BLUESKY_APP_PASSWORD")

	if handle == "" || password == "" {
		t.Skip("BLUESKY_HANDLE and BLUESKY_APP_PASSWORD not set")
	}

	c := NewClient(Config{})
	ctx := context.Background()

	s, err := c.CreateSession(ctx, handle, password)
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.DID)

	// Reading is harmless; posting is left out to avoid spam.
	_, err = c.LatestPost(ctx, s, handle)
	assert.NoError(t, err)
}
