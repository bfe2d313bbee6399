package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boardwalk-tui/boardwalk/internal/auth"
	"github.com/boardwalk-tui/boardwalk/internal/config"
	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

// apiClient builds a remote client from the loaded config and the
// stored token, for the scriptable subcommands.
func apiClient(a *App) (*remote.Client, error) {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	keychain, err := auth.Open(cfg.TokenPath)
	if err != nil {
		return nil, err
	}
	return remote.NewClient(cfg.APIBase, keychain)
}

func newBoardsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List your boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(a)
			if err != nil {
				return err
			}
			boards, err := client.FetchBoards(cmd.Context())
			if err != nil {
				return err
			}
			if len(boards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no boards")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR")
			for _, b := range boards {
				fmt.Fprintf(w, "%d\t%s\t%s\n", b.ID, b.Name, b.BackgroundColor)
			}
			return w.Flush()
		},
	}
}
