package imaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdulachik/skyposter/internal/source"
)

// maxDownloadBytes caps how much of a remote image is read.
const maxDownloadBytes = 32 << 20

// Downloader fetches remote images.
type Downloader struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewDownloader creates a downloader with the given per-request timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Downloader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxDownloadBytes,
	}
}

// Fetch downloads the image at url and returns its raw bytes.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", source.ErrUnavailable, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download image: %w", source.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image download returned status %d", source.ErrUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %w", source.ErrUnavailable, err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d MiB", source.ErrUnavailable, d.maxBytes>>20)
	}

	slog.Debug("downloaded image", "url", url, "bytes", len(data))
	return data, nil
}
