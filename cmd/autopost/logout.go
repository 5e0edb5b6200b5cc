package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autopost/autopost/internal/app"
	"github.com/autopost/autopost/internal/config"
	"github.com/autopost/autopost/internal/platform"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout <platform>",
	Short: "Disconnect a platform account",
	Long: `Disconnect a platform account. The backend session is closed and
the locally stored credentials are removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := platform.Parse(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	// Tell the backend first; local cleanup happens regardless so a dead
	// backend cannot leave credentials stuck on disk.
	if err := a.API.Logout(ctx, p); err != nil {
		slog.Warn("backend logout failed", "platform", p, "error", err)
	}

	if p == platform.Substack {
		if sessionID, err := a.Credentials.SessionID(ctx); err == nil && sessionID != "" {
			if err := a.API.CloseSubstackSession(ctx, sessionID); err != nil {
				slog.Warn("close substack session failed", "error", err)
			}
		}
		if err := a.Credentials.ClearSession(ctx); err != nil {
			return err
		}
	}

	if err := a.Credentials.DeleteToken(ctx, p); err != nil {
		return err
	}

	fmt.Printf("Logged out of %s\n", p)
	return nil
}
