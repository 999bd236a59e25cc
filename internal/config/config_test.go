package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env and restore after test
	origEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, e := range origEnv {
			for i := 0; i < len(e); i++ {
				if e[i] == '=' {
					os.Setenv(e[:i], e[i+1:])
					break
				}
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://bsky.social", cfg.PDS)
		assert.Equal(t, "file", cfg.LedgerBackend)
		assert.Equal(t, "data/posted_products.txt", cfg.LedgerPath)
		assert.Equal(t, "data/skyposter.db", cfg.DatabasePath)
		assert.Equal(t, "Tracker", cfg.CatalogFilter)
		assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 10*time.Second, cfg.AuthTimeout)
		assert.Equal(t, 20*time.Second, cfg.DownloadTimeout)
		assert.Equal(t, 85, cfg.ImageQuality)
		assert.Equal(t, 2000, cfg.ImageMaxDimension)
		assert.Equal(t, DefaultAccounts, cfg.Roster)
		assert.Equal(t, "catsaday.bsky.social", cfg.Account("catsaday").Handle)
		assert.Empty(t, cfg.Account("catsaday").AppPassword)
	})

	t.Run("custom values", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("BLUESKY_PDS", "https://pds.example.com/")
		os.Setenv("PIXABAY_API_KEY", "px-key")
		os.Setenv("CATSADAY_HANDLE", "cats.example.com")
		os.Setenv("CATSADAY_APP_PASSWORD", "xxxx-xxxx")
		os.Setenv("LIKE_RING_ACCOUNTS", "catsaday, Zenbites ,,newbot")
		os.Setenv("HTTP_TIMEOUT", "5s")
		os.Setenv("IMAGE_QUALITY", "70")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://pds.example.com", cfg.PDS)
		assert.Equal(t, "px-key", cfg.PixabayAPIKey)
		assert.Equal(t, "cats.example.com", cfg.Account("catsaday").Handle)
		assert.Equal(t, "xxxx-xxxx", cfg.Account("catsaday").AppPassword)
		assert.Equal(t, []string{"catsaday", "zenbites", "newbot"}, cfg.Roster)
		assert.Equal(t, "newbot.bsky.social", cfg.Account("newbot").Handle)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 70, cfg.ImageQuality)
	})

	t.Run("invalid duration", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("AUTH_TIMEOUT", "invalid")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_TIMEOUT")
	})

	t.Run("invalid integer", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("IMAGE_MAX_DIMENSION", "notanumber")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "IMAGE_MAX_DIMENSION")
	})

	t.Run("quality out of range", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("IMAGE_QUALITY", "150")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "IMAGE_QUALITY")
	})
}

func TestConfig_ValidateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &Config{
			PDS: "https://bsky.social",
			Accounts: map[string]Account{
				"catsaday": {Name: "catsaday", Handle: "catsaday.bsky.social", AppPassword: "pw"},
			},
		}
		assert.NoError(t, cfg.ValidateAccount("catsaday"))
	})

	t.Run("missing password", func(t *testing.T) {
		cfg := &Config{
			PDS: "https://bsky.social",
			Accounts: map[string]Account{
				"catsaday": {Name: "catsaday", Handle: "catsaday.bsky.social"},
			},
		}
		err := cfg.ValidateAccount("catsaday")
		assert.True(t, errors.Is(err, ErrMissing))
		assert.Contains(t, err.Error(), "CATSADAY_APP_PASSWORD")
	})

	t.Run("unknown account", func(t *testing.T) {
		cfg := &Config{PDS: "https://bsky.social"}
		err := cfg.ValidateAccount("ghost-bot")
		assert.True(t, errors.Is(err, ErrMissing))
		assert.Contains(t, err.Error(), "GHOST_BOT_HANDLE")
	})
}

func TestConfig_ValidateForImageBot(t *testing.T) {
	cfg := &Config{
		PDS: "https://bsky.social",
		Accounts: map[string]Account{
			"zenbites": {Name: "zenbites", Handle: "zenbites.bsky.social", AppPassword: "pw"},
		},
	}

	err := cfg.ValidateForImageBot("zenbites")
	assert.True(t, errors.Is(err, ErrMissing))
	assert.Contains(t, err.Error(), "PIXABAY_API_KEY")

	cfg.PixabayAPIKey = "key"
	assert.NoError(t, cfg.ValidateForImageBot("zenbites"))
	assert.NoError(t, cfg.ValidateForImageSearch())
	assert.Error(t, cfg.ValidateForImageBot("catsaday"))
}

func TestConfig_ValidateForCatalog(t *testing.T) {
	base := func() *Config {
		return &Config{
			PDS:           "https://bsky.social",
			GumroadToken:  "token",
			LedgerBackend: "file",
			LedgerPath:    "posted.txt",
			Accounts: map[string]Account{
				"trackly": {Name: "trackly", Handle: "trackly.bsky.social", AppPassword: "pw"},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().ValidateForCatalog("trackly"))
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := base()
		cfg.GumroadToken = ""
		err := cfg.ValidateForCatalog("trackly")
		assert.Contains(t, err.Error(), "TRACKLY_GUMROAD_TOKEN")
	})

	t.Run("sqlite backend needs database", func(t *testing.T) {
		cfg := base()
		cfg.LedgerBackend = "sqlite"
		err := cfg.ValidateForCatalog("trackly")
		assert.Contains(t, err.Error(), "DATABASE_PATH")
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := base()
		cfg.LedgerBackend = "redis"
		err := cfg.ValidateForCatalog("trackly")
		assert.Contains(t, err.Error(), "LEDGER_BACKEND")
	})

	t.Run("listing needs no account", func(t *testing.T) {
		cfg := base()
		cfg.Accounts = nil
		assert.NoError(t, cfg.ValidateForCatalogListing())
		assert.Error(t, cfg.ValidateForCatalog("trackly"))
	})
}

func TestConfig_ValidateForLikeRing(t *testing.T) {
	t.Run("needs two accounts", func(t *testing.T) {
		cfg := &Config{PDS: "https://bsky.social", Roster: []string{"catsaday"}}
		err := cfg.ValidateForLikeRing()
		assert.Contains(t, err.Error(), "LIKE_RING_ACCOUNTS")
	})

	t.Run("every account needs a password", func(t *testing.T) {
		cfg := &Config{
			PDS:    "https://bsky.social",
			Roster: []string{"a", "b"},
			Accounts: map[string]Account{
				"a": {Name: "a", Handle: "a.bsky.social", AppPassword: "pw"},
				"b": {Name: "b", Handle: "b.bsky.social"},
			},
		}
		err := cfg.ValidateForLikeRing()
		assert.Contains(t, err.Error(), "B_APP_PASSWORD")
	})
}
