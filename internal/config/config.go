// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/menubar/internal/assets"
	"github.com/jmylchreest/menubar/internal/position"
	"github.com/jmylchreest/menubar/internal/style"
)

// Default configuration values.
const (
	DefaultWidth     = 400
	DefaultHeight    = 400
	DefaultLogLevel  = "info"
	DefaultIndexName = "index.html"

	minDimension = 50
	maxDimension = 8192
)

// Config represents the menubar configuration.
// Loaded from ~/.config/menubar/menubar.toml
type Config struct {
	App    AppConfig    `toml:"app"`
	Window WindowConfig `toml:"window"`
	Tray   TrayConfig   `toml:"tray"`
	Dock   DockConfig   `toml:"dock"`
	Log    LogConfig    `toml:"log"`
}

// AppConfig locates the content the popup loads.
type AppConfig struct {
	Dir   string `toml:"dir"`   // Defaults to the executable's directory
	Index string `toml:"index"` // URL to load; defaults to file://<dir>/index.html
}

// WindowConfig contains popup window settings.
type WindowConfig struct {
	Width               int    `toml:"width"`
	Height              int    `toml:"height"`
	X                   *int   `toml:"x,omitempty"`      // Pins the x axis when set
	Y                   *int   `toml:"y,omitempty"`      // Pins the y axis when set
	Anchor              string `toml:"anchor,omitempty"` // Empty = chosen from the desktop shell
	AlwaysOnTop         bool   `toml:"always_on_top"`    // Stay visible on focus loss
	ShowOnAllWorkspaces bool   `toml:"show_on_all_workspaces"`
	Preload             bool   `toml:"preload"` // Create the window at startup
	Resizable           bool   `toml:"resizable"`
	Style               string `toml:"style,omitempty"` // CSS file; defaults to style.css beside the config
}

// TrayConfig contains tray icon settings.
type TrayConfig struct {
	Icon             string `toml:"icon"`
	Tooltip          string `toml:"tooltip"`
	ShowOnRightClick bool   `toml:"show_on_right_click"`
}

// DockConfig controls the macOS dock icon.
type DockConfig struct {
	ShowIcon bool `toml:"show_icon"`
}

// LogConfig controls daemon logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:               DefaultWidth,
			Height:              DefaultHeight,
			ShowOnAllWorkspaces: true,
		},
		Dock: DockConfig{
			ShowIcon: false,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "menubar", "menubar.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Window.Width < minDimension || c.Window.Width > maxDimension {
		return fmt.Errorf("width must be between %d and %d, got %d", minDimension, maxDimension, c.Window.Width)
	}
	if c.Window.Height < minDimension || c.Window.Height > maxDimension {
		return fmt.Errorf("height must be between %d and %d, got %d", minDimension, maxDimension, c.Window.Height)
	}

	if c.Window.Anchor != "" && !position.Anchor(c.Window.Anchor).Valid() {
		return fmt.Errorf("invalid anchor %q, must be one of: %v", c.Window.Anchor, position.ValidAnchors())
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Window.X != nil {
		x := *c.Window.X
		out.Window.X = &x
	}
	if c.Window.Y != nil {
		y := *c.Window.Y
		out.Window.Y = &y
	}
	return &out
}

// AnchorOverride returns the configured anchor, or "" when the anchor
// should be chosen from the desktop shell.
func (c *Config) AnchorOverride() position.Anchor {
	return position.Anchor(c.Window.Anchor)
}

// Override returns the per-axis position pins.
func (c *Config) Override() position.Override {
	return position.Override{X: c.Window.X, Y: c.Window.Y}
}

// AppDir returns the absolute content directory.
func (c *Config) AppDir() string {
	dir := expandPath(c.App.Dir)
	if dir == "" {
		if exe, err := os.Executable(); err == nil {
			dir = filepath.Dir(exe)
		} else if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return dir
}

// IndexURL returns the URL the popup loads.
func (c *Config) IndexURL() string {
	if c.App.Index != "" {
		return c.App.Index
	}
	return "file://" + filepath.Join(c.AppDir(), DefaultIndexName)
}

// IconPath returns the tray icon file to use, or "" when neither the
// configured icon nor one next to the index exists and the bundled
// default should be used.
func (c *Config) IconPath() string {
	path := expandPath(c.Tray.Icon)
	if path == "" {
		path = filepath.Join(c.AppDir(), assets.DefaultIconName)
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// StylePath returns the popup stylesheet path. The file may not exist.
func (c *Config) StylePath() string {
	if c.Window.Style != "" {
		return expandPath(c.Window.Style)
	}
	path := ConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), style.DefaultName)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", s)
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
