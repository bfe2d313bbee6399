package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boardwalk-tui/boardwalk/internal/auth"
	"github.com/boardwalk-tui/boardwalk/internal/config"
	"github.com/boardwalk-tui/boardwalk/internal/remote"
)

func newWorkspacesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List your workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(a)
			if err != nil {
				return err
			}
			workspaces, err := client.FetchWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			if len(workspaces) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no workspaces")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
			for _, ws := range workspaces {
				fmt.Fprintf(w, "%d\t%s\t%s\n", ws.ID, ws.Name, ws.Description)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(newWorkspacesCreateCmd(a))
	return cmd
}

func newWorkspacesCreateCmd(a *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return fmt.Errorf("workspace name is empty")
			}

			cfg, err := config.Load(a.ConfigPath)
			if err != nil {
				return err
			}
			keychain, err := auth.Open(cfg.TokenPath)
			if err != nil {
				return err
			}
			userID, ok := keychain.UserID()
			if !ok {
				return fmt.Errorf("cannot read user id from stored token; run `boardwalk login`")
			}
			client, err := remote.NewClient(cfg.APIBase, keychain)
			if err != nil {
				return err
			}

			ws, err := client.CreateWorkspace(cmd.Context(), name, description, userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created workspace %d (%s)\n", ws.ID, ws.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "workspace description")
	return cmd
}
