package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/menubar/internal/dbus"
)

var statusOpts struct {
	output string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the popup state",
	Long: `Show the popup's visibility state, anchor, window instance and when it
was last shown.

Output formats:
  plain  human readable (default)
  json   one JSON object
  yaml   one YAML document`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.output, "output", "o", "plain",
		"Output format (plain, json, yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	var reply dbus.StatusReply
	err := withClient(func(ctx context.Context, c *dbus.Client) error {
		var err error
		reply, err = c.Status(ctx)
		return err
	})
	if err != nil {
		return err
	}
	return writeStatus(os.Stdout, reply, statusOpts.output)
}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	visibleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	hiddenStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	noneStyle    = lipgloss.NewStyle().Bold(true)
)

// writeStatus renders reply in the requested format.
func writeStatus(w io.Writer, reply dbus.StatusReply, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(reply)
	case "plain", "":
		_, err := io.WriteString(w, formatStatusPlain(reply))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want plain, json or yaml)", format)
	}
}

func formatStatusPlain(reply dbus.StatusReply) string {
	stateStyle := noneStyle
	switch reply.State {
	case "visible":
		stateStyle = visibleStyle
	case "hidden":
		stateStyle = hiddenStyle
	}

	shown := "never"
	if !reply.LastShown.IsZero() {
		shown = humanize.Time(reply.LastShown)
	}

	window := reply.WindowID
	if window == "" {
		window = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("state: "), stateStyle.Render(reply.State))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("anchor:"), reply.Anchor)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("window:"), window)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("shown: "), shown)
	return b.String()
}
