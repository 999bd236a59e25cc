package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdulachik/skyposter/internal/bluesky"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/abdulachik/skyposter/internal/imaging"
	"github.com/abdulachik/skyposter/internal/ledger"
	"github.com/abdulachik/skyposter/internal/source"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skyposter",
	Short: "Image bots for Bluesky",
	Long: `Skyposter runs a family of small Bluesky bots: image-a-day accounts fed
from Pixabay, a catalog account promoting Gumroad products, and a like ring
between all of them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		runID := uuid.NewString()
		slog.SetDefault(slog.Default().With("run_id", runID))
	},
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// loadConfig loads configuration and runs the command specific validator.
func loadConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validate != nil {
		if err := validate(cfg); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}

// errorHint suggests a fix for the error kinds an operator can act on.
func errorHint(err error) string {
	switch {
	case errors.Is(err, config.ErrMissing):
		return "Set the missing variable in the environment or in .env."
	case errors.Is(err, bluesky.ErrAuth):
		return "Check the account handle and app password."
	case errors.Is(err, bluesky.ErrUpload), errors.Is(err, bluesky.ErrPublish):
		return "Bluesky rejected the request; nothing was posted."
	case errors.Is(err, imaging.ErrDecode):
		return "The downloaded file is not a supported image; try again."
	case errors.Is(err, source.ErrUnavailable):
		return "A content API is unavailable or returned nothing usable."
	case errors.Is(err, ledger.ErrLedgerIO):
		return "The ledger could not be read or written; check LEDGER_PATH or DATABASE_PATH."
	case errors.Is(err, ledger.ErrNoCandidates):
		return "No catalog product has a thumbnail and a matching name; check CATALOG_NAME_FILTER."
	default:
		return ""
	}
}
