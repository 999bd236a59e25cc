package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/skyposter/internal/app"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/spf13/cobra"
)

var likeRingCmd = &cobra.Command{
	Use:   "like-ring",
	Short: "Like each roster account's latest post from every other account",
	Long: `Log in as every account in LIKE_RING_ACCOUNTS in turn and like the most
recent post of each other account. Failures are reported per pair; the command
only fails when no pair succeeded.`,
	Args: cobra.NoArgs,
	RunE: runLikeRing,
}

func init() {
	rootCmd.AddCommand(likeRingCmd)
}

func runLikeRing(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig((*config.Config).ValidateForLikeRing)
	if err != nil {
		return err
	}

	sweeper := app.NewSweeper(cfg, app.NewBluesky(cfg))
	report, err := sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("like ring: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Like Ring ===")
	fmt.Println()
	for _, p := range report.Pairs {
		line := fmt.Sprintf("  %-8s %s -> %s", p.Outcome, p.Liker, p.Target)
		if p.Err != nil {
			line += ": " + p.Err.Error()
		}
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Println(report.Summary())

	slog.Info("like ring finished", "pairs", len(report.Pairs), "failed", len(report.Failures()))

	if report.AllFailed() {
		return errors.New("like ring: every pair failed")
	}
	return nil
}
