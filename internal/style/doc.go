// Package style loads the popup stylesheet. A user CSS file replaces the
// bundled one and is polled for changes so edits apply without a restart.
package style
