// Package cli defines the boardwalk command tree.
//
// The bare command opens the interactive board. The subcommands are the
// scriptable surface: login and logout manage the stored credential,
// boards and workspaces print listings without starting the TUI.
package cli
