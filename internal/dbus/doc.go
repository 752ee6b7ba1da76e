// Package dbus exposes the menubar on the session bus.
// The service lets other processes show, hide and toggle the popup, read
// its status and change options, and re-broadcasts every lifecycle event
// as a Lifecycle signal. Client is the matching caller used by the CLI.
package dbus
