package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/menubar/internal/position"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 400, cfg.Window.Width)
	assert.Equal(t, 400, cfg.Window.Height)
	assert.Nil(t, cfg.Window.X)
	assert.Nil(t, cfg.Window.Y)
	assert.Empty(t, cfg.Window.Anchor)
	assert.True(t, cfg.Window.ShowOnAllWorkspaces)
	assert.False(t, cfg.Window.AlwaysOnTop)
	assert.False(t, cfg.Window.Preload)
	assert.False(t, cfg.Dock.ShowIcon)
	assert.False(t, cfg.Tray.ShowOnRightClick)
	assert.Empty(t, cfg.Tray.Tooltip)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/menubar.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menubar.toml")

	content := `
[app]
dir = "/opt/app"
index = "http://localhost:8080/"

[window]
width = 320
height = 480
x = 12
anchor = "bottom-right"
always_on_top = true
show_on_all_workspaces = false
preload = true

[tray]
icon = "/opt/app/icon.png"
tooltip = "My app"
show_on_right_click = true

[dock]
show_icon = true

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/app", cfg.App.Dir)
	assert.Equal(t, "http://localhost:8080/", cfg.App.Index)
	assert.Equal(t, 320, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height)
	require.NotNil(t, cfg.Window.X)
	assert.Equal(t, 12, *cfg.Window.X)
	assert.Nil(t, cfg.Window.Y)
	assert.Equal(t, position.AnchorBottomRight, cfg.AnchorOverride())
	assert.True(t, cfg.Window.AlwaysOnTop)
	assert.False(t, cfg.Window.ShowOnAllWorkspaces)
	assert.True(t, cfg.Window.Preload)
	assert.Equal(t, "/opt/app/icon.png", cfg.Tray.Icon)
	assert.Equal(t, "My app", cfg.Tray.Tooltip)
	assert.True(t, cfg.Tray.ShowOnRightClick)
	assert.True(t, cfg.Dock.ShowIcon)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menubar.toml")

	content := `
[window]
width = 600
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 600, cfg.Window.Width)
	assert.Equal(t, 400, cfg.Window.Height)
	assert.True(t, cfg.Window.ShowOnAllWorkspaces)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menubar.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"width too small", "[window]\nwidth = 10\n", "width"},
		{"height too large", "[window]\nheight = 100000\n", "height"},
		{"bad anchor", "[window]\nanchor = \"somewhere\"\n", "anchor"},
		{"bad log level", "[log]\nlevel = \"loud\"\n", "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "menubar.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	assert.Equal(t, "/tmp/xdg-test/menubar/menubar.toml", ConfigPath())
}

func TestStylePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/xdg-test/menubar/style.css", cfg.StylePath())

	cfg.Window.Style = "/opt/popup.css"
	assert.Equal(t, "/opt/popup.css", cfg.StylePath())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "menubar.toml")

	cfg := DefaultConfig()
	y := 33
	cfg.Window.Y = &y
	cfg.Window.Anchor = string(position.AnchorTrayCenter)
	cfg.Tray.Tooltip = "saved"

	require.NoError(t, cfg.Save(path))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	x := 5
	cfg.Window.X = &x

	clone := cfg.Clone()
	*clone.Window.X = 99
	clone.Window.Width = 10

	assert.Equal(t, 5, *cfg.Window.X)
	assert.Equal(t, 400, cfg.Window.Width)
}

func TestIndexURL(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.App.Dir = dir
	assert.Equal(t, "file://"+filepath.Join(dir, "index.html"), cfg.IndexURL())

	cfg.App.Index = "https://example.com/app"
	assert.Equal(t, "https://example.com/app", cfg.IndexURL())
}

func TestAppDirResolvesRelative(t *testing.T) {
	cfg := DefaultConfig()
	cfg.App.Dir = "relative/dir"

	assert.True(t, filepath.IsAbs(cfg.AppDir()))
	assert.True(t, strings.HasSuffix(cfg.AppDir(), filepath.Join("relative", "dir")))

	cfg.App.Dir = ""
	assert.True(t, filepath.IsAbs(cfg.AppDir()))
}

func TestIconPath(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.App.Dir = dir

	// Nothing on disk: bundled default.
	assert.Empty(t, cfg.IconPath())

	// Icon next to the index.
	beside := filepath.Join(dir, "IconTemplate.png")
	require.NoError(t, os.WriteFile(beside, []byte("png"), 0644))
	assert.Equal(t, beside, cfg.IconPath())

	// Configured icon wins when it exists.
	custom := filepath.Join(dir, "custom.png")
	require.NoError(t, os.WriteFile(custom, []byte("png"), 0644))
	cfg.Tray.Icon = custom
	assert.Equal(t, custom, cfg.IconPath())

	// Configured icon missing: bundled default, not the one beside the index.
	cfg.Tray.Icon = filepath.Join(dir, "missing.png")
	assert.Empty(t, cfg.IconPath())
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for level, expected := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	} {
		cfg.Log.Level = level
		assert.Equal(t, expected, cfg.SlogLevel(), level)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "icons/tray.png"), expandPath("~/icons/tray.png"))
	assert.Equal(t, "/abs/tray.png", expandPath("/abs/tray.png"))
	assert.Equal(t, "", expandPath(""))
}
