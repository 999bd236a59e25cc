package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissing is returned when a required setting is absent.
var ErrMissing = errors.New("missing configuration")

// DefaultAccounts is the roster of bot accounts known to the tool.
var DefaultAccounts = []string{
	"zenbites",
	"chickenaday",
	"catsaday",
	"cakeaday",
	"spaceaday",
	"trackly",
}

// Account holds the credentials of one bot account.
type Account struct {
	Name        string
	Handle      string
	AppPassword string
}

// Config holds all application configuration.
type Config struct {
	// Bluesky
	PDS      string
	Accounts map[string]Account
	Roster   []string // accounts taking part in the like ring

	// Content APIs
	PixabayAPIKey string
	GumroadToken  string
	GumroadHome   string
	CatalogFilter string // product name must contain this

	// Timeouts
	HTTPTimeout     time.Duration
	AuthTimeout     time.Duration
	DownloadTimeout time.Duration

	// Images
	WorkDir           string
	ImageQuality      int
	ImageMaxDimension int

	// Ledger and history
	LedgerBackend string // "file" or "sqlite"
	LedgerPath    string
	DatabasePath  string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PDS:           strings.TrimRight(getEnv("BLUESKY_PDS", "https://bsky.social"), "/"),
		Accounts:      make(map[string]Account),
		PixabayAPIKey: getEnv("PIXABAY_API_KEY", ""),
		GumroadToken:  getEnv("TRACKLY_GUMROAD_TOKEN", ""),
		GumroadHome:   getEnv("GUMROAD_HOME", "https://trackly.gumroad.com"),
		CatalogFilter: getEnv("CATALOG_NAME_FILTER", "Tracker"),
		WorkDir:       getEnv("WORK_DIR", "data"),
		LedgerBackend: getEnv("LEDGER_BACKEND", "file"),
		LedgerPath:    getEnv("LEDGER_PATH", "data/posted_products.txt"),
		DatabasePath:  getEnv("DATABASE_PATH", "data/skyposter.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	for _, name := range DefaultAccounts {
		cfg.Accounts[name] = loadAccount(name)
	}

	cfg.Roster = splitList(getEnv("LIKE_RING_ACCOUNTS", strings.Join(DefaultAccounts, ",")))
	for _, name := range cfg.Roster {
		if _, ok := cfg.Accounts[name]; !ok {
			cfg.Accounts[name] = loadAccount(name)
		}
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.AuthTimeout, err = parseDuration("AUTH_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.DownloadTimeout, err = parseDuration("DOWNLOAD_TIMEOUT", "20s"); err != nil {
		return nil, err
	}

	if cfg.ImageQuality, err = parseInt("IMAGE_QUALITY", "85"); err != nil {
		return nil, err
	}
	if cfg.ImageQuality < 1 || cfg.ImageQuality > 100 {
		return nil, fmt.Errorf("invalid IMAGE_QUALITY: %d (must be 1-100)", cfg.ImageQuality)
	}
	if cfg.ImageMaxDimension, err = parseInt("IMAGE_MAX_DIMENSION", "2000"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Account returns the named account. Unknown names yield an empty account
// that fails validation.
func (c *Config) Account(name string) Account {
	if acct, ok := c.Accounts[name]; ok {
		return acct
	}
	return Account{Name: name}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.PDS == "" {
		return fmt.Errorf("%w: BLUESKY_PDS is required", ErrMissing)
	}
	return nil
}

// ValidateAccount checks that credentials for the named account are present.
func (c *Config) ValidateAccount(name string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	acct := c.Account(name)
	prefix := envPrefix(name)
	if acct.Handle == "" {
		return fmt.Errorf("%w: %s_HANDLE is required", ErrMissing, prefix)
	}
	if acct.AppPassword == "" {
		return fmt.Errorf("%w: %s_APP_PASSWORD is required", ErrMissing, prefix)
	}
	return nil
}

// ValidateForImageSearch checks configuration needed to search Pixabay.
func (c *Config) ValidateForImageSearch() error {
	if c.PixabayAPIKey == "" {
		return fmt.Errorf("%w: PIXABAY_API_KEY is required", ErrMissing)
	}
	return nil
}

// ValidateForImageBot checks configuration needed by the Pixabay bots.
func (c *Config) ValidateForImageBot(account string) error {
	if err := c.ValidateForImageSearch(); err != nil {
		return err
	}
	return c.ValidateAccount(account)
}

// ValidateForCatalogListing checks configuration needed to list products
// and consult the ledger.
func (c *Config) ValidateForCatalogListing() error {
	if c.GumroadToken == "" {
		return fmt.Errorf("%w: TRACKLY_GUMROAD_TOKEN is required", ErrMissing)
	}
	return c.ValidateForLedger()
}

// ValidateForCatalog checks configuration needed by the catalog bot.
func (c *Config) ValidateForCatalog(account string) error {
	if err := c.ValidateForCatalogListing(); err != nil {
		return err
	}
	return c.ValidateAccount(account)
}

// ValidateForLedger checks the ledger backend settings.
func (c *Config) ValidateForLedger() error {
	switch c.LedgerBackend {
	case "file", "":
		if c.LedgerPath == "" {
			return fmt.Errorf("%w: LEDGER_PATH is required", ErrMissing)
		}
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: DATABASE_PATH is required when LEDGER_BACKEND is sqlite", ErrMissing)
		}
	default:
		return fmt.Errorf("invalid LEDGER_BACKEND: %s (must be 'file' or 'sqlite')", c.LedgerBackend)
	}
	return nil
}

// ValidateForLikeRing checks that every roster account has credentials.
func (c *Config) ValidateForLikeRing() error {
	if len(c.Roster) < 2 {
		return fmt.Errorf("%w: LIKE_RING_ACCOUNTS needs at least two accounts", ErrMissing)
	}
	for _, name := range c.Roster {
		if err := c.ValidateAccount(name); err != nil {
			return err
		}
	}
	return nil
}

func loadAccount(name string) Account {
	prefix := envPrefix(name)
	return Account{
		Name:        name,
		Handle:      getEnv(prefix+"_HANDLE", name+".bsky.social"),
		AppPassword: getEnv(prefix+"_APP_PASSWORD", ""),
	}
}

func envPrefix(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key, defaultVal string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultVal))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key, defaultVal string) (int, error) {
	n, err := strconv.Atoi(getEnv(key, defaultVal))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
