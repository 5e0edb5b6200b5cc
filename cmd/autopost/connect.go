package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/autopost/autopost/internal/app"
	"github.com/autopost/autopost/internal/config"
	"github.com/autopost/autopost/internal/credentials"
	"github.com/autopost/autopost/internal/platform"
	"github.com/spf13/cobra"
)

var (
	connectEmail string
	connectToken string
	connectWait  bool
)

var connectCmd = &cobra.Command{
	Use:   "connect <platform>",
	Short: "Connect a platform account",
	Long: `Connect a platform account so posts can be published to it.

LinkedIn and X use tokens issued by the backend's OAuth flow:
  autopost connect linkedin --token <token>
  autopost connect x --token <token>

Substack uses an email login flow. The backend emails a 6-digit code
which you type in, or with --wait it blocks until you click the
verification link in the email:
  autopost connect substack --email you@example.com
  autopost connect substack --email you@example.com --wait`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&connectEmail, "email", "", "Substack account email")
	connectCmd.Flags().StringVar(&connectToken, "token", "", "Bearer token for LinkedIn or X")
	connectCmd.Flags().BoolVar(&connectWait, "wait", false, "Wait for the email verification link instead of prompting for a code")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
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

	if p == platform.Substack {
		return connectSubstack(ctx, a)
	}
	return connectWithToken(ctx, a, p)
}

func connectWithToken(ctx context.Context, a *app.App, p platform.Platform) error {
	if connectToken == "" {
		return fmt.Errorf("--token is required for %s", p)
	}

	if err := a.Credentials.SetToken(ctx, p, connectToken); err != nil {
		return err
	}

	// Verify the token actually works before declaring success.
	a.Registry.Refresh(ctx)
	user := a.Registry.User(p)
	if user == nil {
		_ = a.Credentials.DeleteToken(ctx, p)
		return fmt.Errorf("token rejected by backend for %s", p)
	}

	fmt.Printf("Connected to %s as %s\n", p, user.DisplayName())
	return nil
}

var codePattern = regexp.MustCompile(`^\d{6}$`)

func connectSubstack(ctx context.Context, a *app.App) error {
	if connectEmail == "" {
		return fmt.Errorf("--email is required for substack")
	}
	if !strings.Contains(connectEmail, "@") {
		return fmt.Errorf("invalid email address: %s", connectEmail)
	}

	sessionID, err := a.API.CreateSubstackSession(ctx)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	status, err := a.API.StartSubstackLogin(ctx, sessionID, connectEmail)
	if err != nil {
		return fmt.Errorf("start login: %w", err)
	}
	slog.Debug("login started", "session_id", sessionID, "status", status)

	sess := credentials.Session{
		ID:     sessionID,
		Email:  connectEmail,
		Status: platform.SubstackAwaitingVerification,
	}
	if err := a.Credentials.SetSession(ctx, sess); err != nil {
		return err
	}

	if connectWait {
		fmt.Println("Check your inbox and click the verification link...")
		timeout := int(a.Config.SubstackVerifyTimeout.Seconds())
		token, err := a.API.WaitSubstackVerify(ctx, sessionID, timeout)
		if err != nil {
			return fmt.Errorf("wait for verification: %w", err)
		}
		if err := a.Credentials.SetToken(ctx, platform.Substack, token); err != nil {
			return err
		}
	} else {
		fmt.Print("Enter the 6-digit code from your email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}

		code := strings.TrimSpace(line)
		if !codePattern.MatchString(code) {
			return fmt.Errorf("verification code must be 6 digits")
		}

		user, err := a.API.VerifySubstackCode(ctx, sessionID, code)
		if err != nil {
			return fmt.Errorf("verify code: %w", err)
		}
		if !user.IsLoggedIn {
			return fmt.Errorf("verification did not complete, try again")
		}
		sess.Name = user.Name
	}

	sess.Status = platform.SubstackLoggedIn
	if err := a.Credentials.SetSession(ctx, sess); err != nil {
		return err
	}

	fmt.Printf("Connected to substack as %s\n", connectEmail)
	return nil
}
