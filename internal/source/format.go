package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxPostLength is the maximum character count for a Bluesky post.
const MaxPostLength = 300

// FormatQuote formats a quote caption.
func FormatQuote(text, author string) string {
	text = strings.TrimSpace(text)
	author = strings.TrimSpace(author)
	if author == "" {
		return fmt.Sprintf("\"%s\"", text)
	}
	return fmt.Sprintf("\"%s\" – %s", text, author)
}

// CaptionOrFallback asks src for a caption and substitutes fallback on any
// failure. A nil source yields the fallback.
func CaptionOrFallback(ctx context.Context, src CaptionSource, fallback string) string {
	if src == nil {
		return fallback
	}
	caption, err := src.Caption(ctx)
	if err != nil {
		slog.Warn("caption fetch failed, using fallback", "source", src.Name(), "error", err)
		return fallback
	}
	return caption
}

// StripHTML returns the visible text of an HTML fragment with whitespace
// collapsed.
func StripHTML(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return strings.TrimSpace(input)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString(" ")
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "tr": true,
}

// FirstSentence keeps text up to and including its first period. Text with
// no period is returned unchanged.
func FirstSentence(text string) string {
	idx := strings.Index(text, ".")
	if idx == -1 {
		return text
	}
	return text[:idx+1]
}

// ProductCaption builds the promotional caption for a catalog item. Only the
// description is shortened to fit MaxPostLength; the store link is kept whole.
func ProductCaption(item CatalogItem, storeURL string) string {
	desc := FirstSentence(StripHTML(item.Description))
	if storeURL == "" {
		return TruncateCaption(desc, MaxPostLength)
	}
	suffix := "\n\nCheck out the full collection:\n" + storeURL
	return TruncateCaption(desc, MaxPostLength-utf8.RuneCountInString(suffix)) + suffix
}

// FitsInLimit checks if text fits within limit characters.
func FitsInLimit(text string, limit int) bool {
	return utf8.RuneCountInString(text) <= limit
}

// TruncateCaption shortens text to at most limit characters, cutting at a
// word boundary and appending an ellipsis.
func TruncateCaption(text string, limit int) string {
	if FitsInLimit(text, limit) {
		return text
	}
	if limit <= 3 {
		return string([]rune(text)[:max(limit, 0)])
	}

	runes := []rune(text)
	available := limit - 3
	truncated := string(runes[:available])

	// Only use word boundary if not too far back
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimRight(truncated, " .,;:!?\n") + "..."
}
