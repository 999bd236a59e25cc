package main

import (
	"fmt"
	"strings"

	"github.com/abdulachik/skyposter/internal/app"
	"github.com/abdulachik/skyposter/internal/bot"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/spf13/cobra"
)

var postDryRun bool

var postCmd = &cobra.Command{
	Use:   "post <bot>",
	Short: "Post an image for one of the image bots",
	Long: `Search Pixabay, normalize the image and post it to the bot's account.

Bots: ` + strings.Join(bot.Names(), ", ") + `

Examples:
  skyposter post catsaday            # Actually post
  skyposter post zenbites --dry-run  # Fetch and normalize without posting`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Show what would be posted without actually posting")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	preset, err := bot.Lookup(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(func(c *config.Config) error {
		if postDryRun {
			return c.ValidateForImageSearch()
		}
		return c.ValidateForImageBot(preset.Account)
	})
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Runner(postDryRun).RunImageBot(ctx, preset)
	if err != nil {
		return fmt.Errorf("%s: %w", preset.Name, err)
	}

	printOutcome(out)
	return nil
}

func printOutcome(out *bot.Outcome) {
	fmt.Println()
	fmt.Println("=== Post Content ===")
	fmt.Println()
	if out.Caption != "" {
		fmt.Println(out.Caption)
		fmt.Println()
	}
	fmt.Printf("Bot: %s\n", out.Bot)
	fmt.Printf("Image: %s (%dx%d)\n", out.ImageURL, out.Width, out.Height)
	if out.SourceID != "" {
		fmt.Printf("Product: %s\n", out.SourceID)
	}
	fmt.Println()

	if out.DryRun {
		fmt.Printf("=== DRY RUN - Not posting ===\nArtifact: %s\n", out.ArtifactPath)
		return
	}

	fmt.Printf("Posted successfully!\nURL: %s\n", out.Post.URL)
}
