package bluesky

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PostCollection is the NSID of a feed post.
	PostCollection = "app.bsky.feed.post"
	// LikeCollection is the NSID of a like.
	LikeCollection = "app.bsky.feed.like"
	// ImagesEmbedType is the NSID of an image embed.
	ImagesEmbedType = "app.bsky.embed.images"

	timestampLayout = "2006-01-02T15:04:05Z"
)

// PostRecord is the record body for app.bsky.feed.post.
type PostRecord struct {
	Type      string       `json:"$type"`
	Text      string       `json:"text"`
	CreatedAt string       `json:"createdAt"`
	Embed     *ImagesEmbed `json:"embed,omitempty"`
	Langs     []string     `json:"langs,omitempty"`
}

// ImagesEmbed is the embed body for app.bsky.embed.images.
type ImagesEmbed struct {
	Type   string  `json:"$type"`
	Images []Image `json:"images"`
}

// Image is one embedded image.
type Image struct {
	Alt         string      `json:"alt"`
	Image       BlobRef     `json:"image"`
	AspectRatio AspectRatio `json:"aspectRatio"`
}

// AspectRatio holds pixel dimensions of an embedded image.
type AspectRatio struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LikeRecord is the record body for app.bsky.feed.like.
type LikeRecord struct {
	Type      string    `json:"$type"`
	Subject   RecordRef `json:"subject"`
	CreatedAt string    `json:"createdAt"`
}

// NewLikeRecord builds a like of subject stamped at now.
func NewLikeRecord(subject RecordRef, now time.Time) LikeRecord {
	return LikeRecord{
		Type:      LikeCollection,
		Subject:   subject,
		CreatedAt: FormatTimestamp(now),
	}
}

// FormatTimestamp renders t in UTC with a literal Z suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// PostURL turns an at:// post URI into its bsky.app web URL.
// URI format: at://did:plc:xxx/app.bsky.feed.post/rkey
func PostURL(handle, uri string) string {
	parts := strings.Split(strings.TrimPrefix(uri, "at://"), "/")
	if len(parts) < 3 || parts[len(parts)-1] == "" {
		return ""
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, parts[len(parts)-1])
}
