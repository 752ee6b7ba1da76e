package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/menubar/internal/dbus"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the popup",
	Long:  `Show the popup next to the tray icon, creating it if needed.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			return c.Show(ctx)
		})
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide the popup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			return c.Hide(ctx)
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Show the popup if hidden, hide it if visible",
	Long: `Toggle the popup, like an unmodified click on the tray icon.

Useful as a compositor keybinding:

  bind = SUPER, M, exec, menubar toggle`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			return c.Toggle(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(toggleCmd)
}
