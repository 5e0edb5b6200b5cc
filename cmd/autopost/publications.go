package main

import (
	"context"
	"fmt"

	"github.com/autopost/autopost/internal/app"
	"github.com/autopost/autopost/internal/config"
	"github.com/spf13/cobra"
)

var publicationsCmd = &cobra.Command{
	Use:   "publications",
	Short: "List the Substack newsletters available to your account",
	RunE:  runPublications,
}

func init() {
	rootCmd.AddCommand(publicationsCmd)
}

func runPublications(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	sessionID, err := a.Credentials.SessionID(ctx)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return fmt.Errorf("substack is not connected, run: autopost connect substack --email <email>")
	}

	pubs, err := a.API.SubstackPublications(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list publications: %w", err)
	}

	if len(pubs) == 0 {
		fmt.Println("No publications found.")
		return nil
	}
	for _, p := range pubs {
		fmt.Printf("  %s (%s)\n", p.Name, p.Hostname)
	}
	return nil
}
