package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/menubar/internal/dbus"
	"github.com/jmylchreest/menubar/internal/tui"
)

var watchOpts struct {
	plain     bool
	clipboard string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream popup lifecycle events",
	Long: `Stream the daemon's lifecycle events (ready, create-window, show, hide,
after-close, focus-lost, ...) as they happen.

Without --plain an interactive view is shown. Key bindings:
  s / h / t   Show, hide, toggle the popup
  r           Refresh status
  x           Clear the event list
  C / alt+c   Copy events as JSON / YAML
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOpts.plain, "plain", false,
		"Print one line per event instead of the interactive view")
	watchCmd.Flags().StringVar(&watchOpts.clipboard, "clipboard-command", "",
		"Clipboard command for copy actions (auto-detects if empty)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := dbus.NewClient(logger)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	events, err := c.Subscribe(ctx)
	if err != nil {
		return err
	}

	if watchOpts.plain {
		return printEvents(ctx, os.Stdout, events)
	}

	err = tui.Run(ctx, tui.RunOptions{
		Controller:       c,
		Events:           events,
		ClipboardCommand: watchOpts.clipboard,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// printEvents writes one line per event until the stream ends.
func printEvents(ctx context.Context, w io.Writer, events <-chan dbus.Lifecycle) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintln(w, formatEventLine(ev)); err != nil {
				return err
			}
		}
	}
}

func formatEventLine(ev dbus.Lifecycle) string {
	ts := "-"
	if !ev.Time.IsZero() {
		ts = ev.Time.Format("15:04:05.000")
	}
	if ev.WindowID == "" {
		return fmt.Sprintf("%s %s", ts, ev.Event)
	}
	return fmt.Sprintf("%s %s %s", ts, ev.Event, ev.WindowID)
}
