package main

import (
	"fmt"

	"github.com/abdulachik/skyposter/internal/app"
	"github.com/abdulachik/skyposter/internal/config"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami <account>",
	Short: "Check an account's credentials",
	Long: `Log in as the account and ask the PDS who the session belongs to.

Example:
  skyposter whoami catsaday`,
	Args: cobra.ExactArgs(1),
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	account := args[0]

	cfg, err := loadConfig(func(c *config.Config) error {
		return c.ValidateAccount(account)
	})
	if err != nil {
		return err
	}

	client := app.NewBluesky(cfg)
	acct := cfg.Account(account)

	session, err := client.CreateSession(ctx, acct.Handle, acct.AppPassword)
	if err != nil {
		return err
	}

	confirmed, err := client.GetSession(ctx, session.AccessToken)
	if err != nil {
		return err
	}

	fmt.Printf("Account: %s\nHandle: %s\nDID: %s\nPDS: %s\n", account, confirmed.Handle, confirmed.DID, cfg.PDS)
	return nil
}
