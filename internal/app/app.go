package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/skyposter/internal/bluesky"
	"github.com/abdulachik/skyposter/internal/bot"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/abdulachik/skyposter/internal/db"
	"github.com/abdulachik/skyposter/internal/imaging"
	"github.com/abdulachik/skyposter/internal/ledger"
	"github.com/abdulachik/skyposter/internal/publish"
	"github.com/abdulachik/skyposter/internal/source"
	"github.com/abdulachik/skyposter/internal/sweep"
)

// App is the main application container holding all dependencies.
type App struct {
	Config  *config.Config
	Store   *db.Store
	Bluesky *bluesky.Client
}

// New creates an application with the Bluesky client and the migrated
// SQLite store.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Bluesky: NewBluesky(cfg),
	}, nil
}

// NewBluesky creates a Bluesky client from configuration.
func NewBluesky(cfg *config.Config) *bluesky.Client {
	return bluesky.NewClient(bluesky.Config{
		PDS:         cfg.PDS,
		Timeout:     cfg.HTTPTimeout,
		AuthTimeout: cfg.AuthTimeout,
	})
}

// Ledger returns the configured duplicate ledger.
func (a *App) Ledger() ledger.Ledger {
	if a.Config.LedgerBackend == "sqlite" {
		return ledger.NewSQLiteLedger(a.Store)
	}
	return ledger.NewFileLedger(a.Config.LedgerPath)
}

// Credential returns the login for a configured account.
func (a *App) Credential(account string) publish.Credential {
	acct := a.Config.Account(account)
	return publish.Credential{
		Handle:      acct.Handle,
		AppPassword: acct.AppPassword,
	}
}

// Runner wires every source and collaborator a bot run needs.
func (a *App) Runner(dryRun bool) *bot.Runner {
	cfg := a.Config
	return bot.NewRunner(bot.Config{
		Network:     a.Bluesky,
		Credentials: a.Credential,
		Media: source.NewPixabay(source.PixabayConfig{
			APIKey:  cfg.PixabayAPIKey,
			Timeout: cfg.HTTPTimeout,
		}),
		Captions: source.NewZenQuotes(source.ZenQuotesConfig{
			Timeout: cfg.HTTPTimeout,
		}),
		Catalog: source.NewGumroad(source.GumroadConfig{
			AccessToken: cfg.GumroadToken,
			Timeout:     cfg.HTTPTimeout,
		}),
		Ledger:  a.Ledger(),
		Fetcher: imaging.NewDownloader(cfg.DownloadTimeout),
		History: a.Store,
		ImageOptions: imaging.Options{
			Quality:      cfg.ImageQuality,
			MaxDimension: cfg.ImageMaxDimension,
		},
		WorkDir:  cfg.WorkDir,
		StoreURL: cfg.GumroadHome,
		CatalogFilter: source.NewFilter(source.FilterConfig{
			Include:       []string{cfg.CatalogFilter},
			CaseSensitive: true,
		}),
		DryRun: dryRun,
	})
}

// NewSweeper builds the like ring over the configured roster. It needs no
// database.
func NewSweeper(cfg *config.Config, net sweep.Network) *sweep.Sweeper {
	roster := make([]sweep.Member, 0, len(cfg.Roster))
	for _, name := range cfg.Roster {
		acct := cfg.Account(name)
		roster = append(roster, sweep.Member{
			Name:        name,
			Handle:      acct.Handle,
			AppPassword: acct.AppPassword,
		})
	}
	slog.Debug("like ring roster", "accounts", len(roster))
	return sweep.New(sweep.Config{Network: net, Roster: roster})
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
