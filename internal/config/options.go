package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jmylchreest/menubar/internal/position"
)

// ErrUnknownOption is returned for keys that do not name an option.
var ErrUnknownOption = errors.New("unknown option")

type option struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var options = map[string]option{
	"app.dir": {
		get: func(c *Config) string { return c.App.Dir },
		set: func(c *Config, v string) error { c.App.Dir = v; return nil },
	},
	"app.index": {
		get: func(c *Config) string { return c.App.Index },
		set: func(c *Config, v string) error { c.App.Index = v; return nil },
	},
	"window.width": {
		get: func(c *Config) string { return strconv.Itoa(c.Window.Width) },
		set: intSetter(func(c *Config) *int { return &c.Window.Width }),
	},
	"window.height": {
		get: func(c *Config) string { return strconv.Itoa(c.Window.Height) },
		set: intSetter(func(c *Config) *int { return &c.Window.Height }),
	},
	"window.x": {
		get: func(c *Config) string { return formatOptionalInt(c.Window.X) },
		set: optionalIntSetter(func(c *Config) **int { return &c.Window.X }),
	},
	"window.y": {
		get: func(c *Config) string { return formatOptionalInt(c.Window.Y) },
		set: optionalIntSetter(func(c *Config) **int { return &c.Window.Y }),
	},
	"window.anchor": {
		get: func(c *Config) string { return c.Window.Anchor },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Window.Anchor = ""
				return nil
			}
			a, err := position.ParseAnchor(v)
			if err != nil {
				return err
			}
			c.Window.Anchor = string(a)
			return nil
		},
	},
	"window.always_on_top": {
		get: func(c *Config) string { return strconv.FormatBool(c.Window.AlwaysOnTop) },
		set: boolSetter(func(c *Config) *bool { return &c.Window.AlwaysOnTop }),
	},
	"window.show_on_all_workspaces": {
		get: func(c *Config) string { return strconv.FormatBool(c.Window.ShowOnAllWorkspaces) },
		set: boolSetter(func(c *Config) *bool { return &c.Window.ShowOnAllWorkspaces }),
	},
	"window.preload": {
		get: func(c *Config) string { return strconv.FormatBool(c.Window.Preload) },
		set: boolSetter(func(c *Config) *bool { return &c.Window.Preload }),
	},
	"window.resizable": {
		get: func(c *Config) string { return strconv.FormatBool(c.Window.Resizable) },
		set: boolSetter(func(c *Config) *bool { return &c.Window.Resizable }),
	},
	"window.style": {
		get: func(c *Config) string { return c.Window.Style },
		set: func(c *Config, v string) error { c.Window.Style = v; return nil },
	},
	"tray.icon": {
		get: func(c *Config) string { return c.Tray.Icon },
		set: func(c *Config, v string) error { c.Tray.Icon = v; return nil },
	},
	"tray.tooltip": {
		get: func(c *Config) string { return c.Tray.Tooltip },
		set: func(c *Config, v string) error { c.Tray.Tooltip = v; return nil },
	},
	"tray.show_on_right_click": {
		get: func(c *Config) string { return strconv.FormatBool(c.Tray.ShowOnRightClick) },
		set: boolSetter(func(c *Config) *bool { return &c.Tray.ShowOnRightClick }),
	},
	"dock.show_icon": {
		get: func(c *Config) string { return strconv.FormatBool(c.Dock.ShowIcon) },
		set: boolSetter(func(c *Config) *bool { return &c.Dock.ShowIcon }),
	},
	"log.level": {
		get: func(c *Config) string { return c.Log.Level },
		set: func(c *Config, v string) error {
			if _, err := parseLevel(v); err != nil {
				return err
			}
			c.Log.Level = strings.ToLower(v)
			return nil
		},
	},
}

// OptionKeys returns the sorted list of keys accepted by Get and Set.
func OptionKeys() []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of the option named by key.
func (c *Config) Get(key string) (string, error) {
	opt, ok := options[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	return opt.get(c), nil
}

// Set parses value into the option named by key. An empty value clears
// optional settings. The resulting configuration is validated and left
// untouched on error.
func (c *Config) Set(key, value string) error {
	opt, ok := options[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}

	next := c.Clone()
	if err := opt.set(next, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = *next
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = n
		return nil
	}
}

func optionalIntSetter(field func(*Config) **int) func(*Config, string) error {
	return func(c *Config, v string) error {
		if v == "" {
			*field(c) = nil
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		*field(c) = &n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
