package main

import (
	"fmt"

	"github.com/abdulachik/skyposter/internal/app"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/abdulachik/skyposter/internal/db"
	"github.com/spf13/cobra"
)

var (
	historyBot   string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent posts",
	Long:  `List posts recorded after successful publishes, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyBot, "bot", "", "Only show posts from this bot")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of posts")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig((*config.Config).Validate)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	total, err := a.Store.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}

	var posts []db.Post
	if historyBot != "" {
		posts, err = a.Store.ListRecentPostsByBot(ctx, db.ListRecentPostsByBotParams{
			Bot:   historyBot,
			Limit: int64(historyLimit),
		})
	} else {
		posts, err = a.Store.ListRecentPosts(ctx, int64(historyLimit))
	}
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	fmt.Println("=== Skyposter History ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Printf("Total posts: %d\n", total)
	fmt.Println()

	for _, p := range posts {
		fmt.Printf("%s  %-12s %dx%d  %s\n",
			p.CreatedAt.UTC().Format("2006-01-02 15:04"), p.Bot, p.Width, p.Height, p.PostUrl.String)
		if p.SourceID.Valid {
			fmt.Printf("    product: %s\n", p.SourceID.String)
		}
	}
	return nil
}
