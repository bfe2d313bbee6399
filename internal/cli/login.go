package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/boardwalk-tui/boardwalk/internal/auth"
	"github.com/boardwalk-tui/boardwalk/internal/cache"
	"github.com/boardwalk-tui/boardwalk/internal/config"
)

func newLoginCmd(a *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token for the board service",
		Long: `Store the bearer token the board service issued you.

Pass it with --token, or run without flags to paste it at a prompt.
The token is kept at the path configured by token_path (default
~/.config/boardwalk/token) with owner-only permissions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.ConfigPath)
			if err != nil {
				return err
			}

			if token == "" {
				fmt.Fprint(cmd.OutOrStdout(), "token: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("no token given")
			}

			keychain, err := auth.Open(cfg.TokenPath)
			if err != nil {
				return err
			}
			if err := keychain.Store(token); err != nil {
				return err
			}
			if keychain.Expired(time.Now()) {
				fmt.Fprintln(cmd.OutOrStdout(), "warning: token is already expired")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token stored")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token (prompted for when omitted)")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and the cached board state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.ConfigPath)
			if err != nil {
				return err
			}

			keychain, err := auth.Open(cfg.TokenPath)
			if err != nil {
				return err
			}
			if err := keychain.Clear(); err != nil {
				return err
			}

			// Cached board state belongs to the session; drop it too.
			if kv, err := cache.Open(cfg.CachePath); err == nil {
				defer kv.Close()
				if err := kv.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
