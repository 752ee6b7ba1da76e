package dbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Client calls a running menubar daemon.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewClient opens a private session bus connection.
func NewClient(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn:   conn,
		obj:    conn.Object(BusName, Path),
		logger: logger,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) method(name string) string {
	return Interface + "." + name
}

// Show asks the daemon to show the popup.
func (c *Client) Show(ctx context.Context) error {
	return c.obj.CallWithContext(ctx, c.method("Show"), 0).Err
}

// Hide asks the daemon to hide the popup.
func (c *Client) Hide(ctx context.Context) error {
	return c.obj.CallWithContext(ctx, c.method("Hide"), 0).Err
}

// Toggle asks the daemon to toggle the popup.
func (c *Client) Toggle(ctx context.Context) error {
	return c.obj.CallWithContext(ctx, c.method("Toggle"), 0).Err
}

// Status returns the daemon's popup state.
func (c *Client) Status(ctx context.Context) (StatusReply, error) {
	var (
		reply StatusReply
		ms    int64
	)
	err := c.obj.CallWithContext(ctx, c.method("Status"), 0).
		Store(&reply.State, &reply.Anchor, &reply.WindowID, &ms)
	if err != nil {
		return StatusReply{}, err
	}
	reply.LastShown = unixMilli(ms)
	return reply, nil
}

// GetOption reads a keyed option from the running daemon.
func (c *Client) GetOption(ctx context.Context, key string) (string, error) {
	var value string
	if err := c.obj.CallWithContext(ctx, c.method("GetOption"), 0, key).Store(&value); err != nil {
		return "", err
	}
	return value, nil
}

// SetOption changes a keyed option in the running daemon.
func (c *Client) SetOption(ctx context.Context, key, value string) error {
	return c.obj.CallWithContext(ctx, c.method("SetOption"), 0, key, value).Err
}

// Subscribe delivers Lifecycle signals until ctx is cancelled. The returned
// channel is closed afterwards.
func (c *Client) Subscribe(ctx context.Context) (<-chan Lifecycle, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember(SignalLifecycle),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	out := make(chan Lifecycle, 16)
	go func() {
		defer close(out)
		defer func() {
			c.conn.RemoveSignal(signals)
			if err := c.conn.RemoveMatchSignal(opts...); err != nil {
				c.logger.Debug("failed to remove signal match", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				ev, err := ParseLifecycle(sig)
				if err != nil {
					c.logger.Debug("ignoring signal", "name", sig.Name, "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
