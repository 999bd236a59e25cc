// Package bot wires sources, the image normalizer, the ledger and the
// publishing workflow into the runs behind each command.
package bot

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/abdulachik/skyposter/internal/db"
	"github.com/abdulachik/skyposter/internal/imaging"
	"github.com/abdulachik/skyposter/internal/ledger"
	"github.com/abdulachik/skyposter/internal/publish"
	"github.com/abdulachik/skyposter/internal/source"
	"github.com/google/uuid"
)

// Fetcher downloads raw image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// History records published posts. *db.Store satisfies it.
type History interface {
	CreatePost(ctx context.Context, arg db.CreatePostParams) (db.Post, error)
}

// Credential resolves an account name to its login.
type Credential func(account string) publish.Credential

// Runner executes bot runs.
type Runner struct {
	network     publish.Network
	credentials Credential
	media       source.MediaSource
	captions    source.CaptionSource
	catalog     source.CatalogSource
	ledger      ledger.Ledger
	fetcher     Fetcher
	history     History

	imageOpts     imaging.Options
	workDir       string
	storeURL      string
	catalogFilter *source.Filter
	dryRun        bool
	rng           *rand.Rand
	now           func() time.Time
}

// Config holds runner dependencies and settings. Sources a command does not
// use may be nil.
type Config struct {
	Network     publish.Network
	Credentials Credential
	Media       source.MediaSource
	Captions    source.CaptionSource
	Catalog     source.CatalogSource
	Ledger      ledger.Ledger
	Fetcher     Fetcher
	History     History // optional

	ImageOptions  imaging.Options
	WorkDir       string
	StoreURL      string // catalog home page linked from captions
	CatalogFilter *source.Filter
	DryRun        bool
	Rand          *rand.Rand
	Now           func() time.Time
}

// NewRunner creates a runner.
func NewRunner(cfg Config) *Runner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		network:       cfg.Network,
		credentials:   cfg.Credentials,
		media:         cfg.Media,
		captions:      cfg.Captions,
		catalog:       cfg.Catalog,
		ledger:        cfg.Ledger,
		fetcher:       cfg.Fetcher,
		history:       cfg.History,
		imageOpts:     cfg.ImageOptions,
		workDir:       cfg.WorkDir,
		storeURL:      cfg.StoreURL,
		catalogFilter: cfg.CatalogFilter,
		dryRun:        cfg.DryRun,
		rng:           cfg.Rand,
		now:           now,
	}
}

// Outcome describes a finished run.
type Outcome struct {
	Bot          string
	Account      string
	ImageURL     string
	SourceID     string
	Caption      string
	Alt          string
	ArtifactPath string
	Width        int
	Height       int
	DryRun       bool
	Post         *publish.Result
}

// RunImageBot searches, downloads and posts one image for preset.
func (r *Runner) RunImageBot(ctx context.Context, preset Preset) (*Outcome, error) {
	query := preset.Query(r.rng)
	media, err := r.media.FindImage(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find image: %w", err)
	}

	art, path, err := r.prepareImage(ctx, preset.Name, media.ImageURL)
	if err != nil {
		return nil, err
	}

	caption := ""
	if preset.QuoteCaption {
		caption = source.CaptionOrFallback(ctx, r.captions, preset.FallbackCaption)
	}

	out := &Outcome{
		Bot:          preset.Name,
		Account:      preset.Account,
		ImageURL:     media.ImageURL,
		Caption:      source.TruncateCaption(caption, source.MaxPostLength),
		Alt:          preset.Alt,
		ArtifactPath: path,
		Width:        art.Width,
		Height:       art.Height,
		DryRun:       r.dryRun,
	}
	if r.dryRun {
		slog.Info("dry run, not posting", "bot", preset.Name, "artifact", path)
		return out, nil
	}

	if err := r.publish(ctx, out, art); err != nil {
		return out, err
	}
	return out, nil
}

// RunCatalog posts one catalog item that has not been posted since the
// ledger was last cleared, and records it after a successful publish.
func (r *Runner) RunCatalog(ctx context.Context, account string) (*Outcome, error) {
	items, err := r.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	l := r.ledger
	if r.dryRun {
		l = ledger.ReadOnly(l)
	}

	item, err := ledger.Select(ctx, l, items, r.catalogFilter, r.rng)
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	slog.Info("selected product", "id", item.ID, "name", item.Name)

	art, path, err := r.prepareImage(ctx, account, item.ThumbnailURL)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Bot:          account,
		Account:      account,
		ImageURL:     item.ThumbnailURL,
		SourceID:     item.ID,
		Caption:      source.TruncateCaption(source.ProductCaption(item, r.storeURL), source.MaxPostLength),
		Alt:          storeHost(r.storeURL),
		ArtifactPath: path,
		Width:        art.Width,
		Height:       art.Height,
		DryRun:       r.dryRun,
	}
	if r.dryRun {
		slog.Info("dry run, not posting", "bot", account, "product", item.ID, "artifact", path)
		return out, nil
	}

	if err := r.publish(ctx, out, art); err != nil {
		return out, err
	}

	if err := r.ledger.RecordPosted(ctx, item.ID); err != nil {
		return out, fmt.Errorf("post %s published but not recorded: %w", out.Post.URL, err)
	}
	return out, nil
}

// prepareImage downloads and normalizes the image at imageURL and saves the
// artifact in the work directory.
func (r *Runner) prepareImage(ctx context.Context, name, imageURL string) (*imaging.Artifact, string, error) {
	data, err := r.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}

	art, err := imaging.Normalize(bytes.NewReader(data), r.imageOpts)
	if err != nil {
		return nil, "", err
	}

	path := filepath.Join(r.workDir, fmt.Sprintf("%s-%s.jpg", name, uuid.NewString()))
	if err := art.Save(path); err != nil {
		return nil, "", fmt.Errorf("save artifact: %w", err)
	}

	slog.Info("image normalized",
		"source_format", art.Format,
		"width", art.Width,
		"height", art.Height,
		"bytes", len(art.Data),
		"path", path,
	)
	return art, path, nil
}

func (r *Runner) publish(ctx context.Context, out *Outcome, art *imaging.Artifact) error {
	cred := r.credentials(out.Account)
	wf := publish.New(r.network, cred, publish.WithClock(r.now))

	result, err := wf.Run(ctx, art, out.Caption, out.Alt)
	if err != nil {
		return fmt.Errorf("%s: %w", out.Bot, err)
	}
	out.Post = result

	if err := os.Remove(out.ArtifactPath); err != nil {
		slog.Debug("failed to remove artifact", "path", out.ArtifactPath, "error", err)
	}
	out.ArtifactPath = ""

	r.recordHistory(ctx, out)
	return nil
}

func (r *Runner) recordHistory(ctx context.Context, out *Outcome) {
	if r.history == nil {
		return
	}

	_, err := r.history.CreatePost(ctx, db.CreatePostParams{
		Bot:      out.Bot,
		Handle:   out.Post.Handle,
		Uri:      out.Post.URI,
		Cid:      out.Post.CID,
		PostUrl:  sql.NullString{String: out.Post.URL, Valid: out.Post.URL != ""},
		SourceID: sql.NullString{String: out.SourceID, Valid: out.SourceID != ""},
		Caption:  out.Caption,
		Width:    int64(out.Width),
		Height:   int64(out.Height),
	})
	if err != nil {
		slog.Warn("failed to record post history", "uri", out.Post.URI, "error", err)
	}
}

// storeHost returns the host of a storefront URL for use as alt text.
func storeHost(storeURL string) string {
	u, err := url.Parse(storeURL)
	if err != nil || u.Host == "" {
		return storeURL
	}
	return u.Host
}
