package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/menubar/internal/dbus"
)

func TestWriteStatus_Plain(t *testing.T) {
	reply := dbus.StatusReply{
		State:     "visible",
		Anchor:    "top-right",
		WindowID:  "01HZX",
		LastShown: time.Now().Add(-3 * time.Minute),
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, reply, "plain"))

	out := buf.String()
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "top-right")
	assert.Contains(t, out, "01HZX")
	assert.Contains(t, out, "3 minutes ago")
}

func TestWriteStatus_PlainNoWindow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, dbus.StatusReply{State: "no-window", Anchor: "tray-center"}, ""))

	out := buf.String()
	assert.Contains(t, out, "no-window")
	assert.Contains(t, out, "never")
}

func TestWriteStatus_JSON(t *testing.T) {
	shown := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reply := dbus.StatusReply{State: "hidden", Anchor: "bottom-right", WindowID: "01HZX", LastShown: shown}

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, reply, "JSON"))

	var got dbus.StatusReply
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "hidden", got.State)
	assert.Equal(t, "01HZX", got.WindowID)
	assert.True(t, shown.Equal(got.LastShown))
}

func TestWriteStatus_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, dbus.StatusReply{State: "hidden", Anchor: "top-right"}, "yaml"))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "hidden", got["state"])
}

func TestWriteStatus_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeStatus(&buf, dbus.StatusReply{}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestFormatEventLine(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 30, 15, 250*int(time.Millisecond), time.Local)

	tests := []struct {
		name string
		ev   dbus.Lifecycle
		want string
	}{
		{"with window", dbus.Lifecycle{Event: "after-show", WindowID: "01HZX", Time: ts}, "09:30:15.250 after-show 01HZX"},
		{"ready", dbus.Lifecycle{Event: "ready", Time: ts}, "09:30:15.250 ready"},
		{"no time", dbus.Lifecycle{Event: "hide", WindowID: "01HZX"}, "- hide 01HZX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatEventLine(tt.ev))
		})
	}
}
