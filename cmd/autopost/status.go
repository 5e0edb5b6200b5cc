package main

import (
	"context"
	"fmt"

	"github.com/autopost/autopost/internal/app"
	"github.com/autopost/autopost/internal/config"
	"github.com/autopost/autopost/internal/platform"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection status for each platform",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	a.Registry.Refresh(ctx)

	fmt.Println("=== Platform Status ===")
	fmt.Println()
	for _, p := range platform.All() {
		user := a.Registry.User(p)
		switch {
		case user == nil:
			fmt.Printf("  %-9s not connected\n", p)
		case !user.Usable():
			fmt.Printf("  %-9s awaiting verification\n", p)
		default:
			fmt.Printf("  %-9s connected as %s\n", p, user.DisplayName())
		}
	}

	// A stored Substack session can outlive the backend's copy of it.
	if sessionID, err := a.Credentials.SessionID(ctx); err == nil && sessionID != "" {
		if sess, err := a.API.SubstackSessionStatus(ctx, sessionID); err != nil || !sess.IsLoggedIn {
			fmt.Println()
			fmt.Println("Substack session is stale, reconnect with: autopost connect substack --email <email>")
		}
	}
	return nil
}
