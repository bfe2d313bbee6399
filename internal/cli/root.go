package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/boardwalk-tui/boardwalk/internal/app"
)

// App carries the persistent flags shared by every subcommand.
type App struct {
	ConfigPath   string
	PrefsPath    string
	RefreshEvery int
}

// NewRootCmd builds the boardwalk command tree. Running with no
// subcommand launches the interactive board.
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:           "boardwalk",
		Short:         "Boardwalk is a kanban board in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return app.Run(ctx, app.Options{
				ConfigPath:   a.ConfigPath,
				PrefsPath:    a.PrefsPath,
				RefreshEvery: a.RefreshEvery,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", "", "config file path (default ~/.config/boardwalk/config.toml)")
	cmd.PersistentFlags().StringVar(&a.PrefsPath, "prefs", "", "preferences file path (default ~/.config/boardwalk/prefs.toml)")
	cmd.Flags().IntVar(&a.RefreshEvery, "refresh", 0, "background refresh interval in seconds (default 45)")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newBoardsCmd(a),
		newWorkspacesCmd(a),
	)
	return cmd
}
