package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/menubar/internal/config"
	"github.com/jmylchreest/menubar/internal/dbus"
)

var configOpts struct {
	live bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the daemon configuration",
	Long: `Inspect and edit the daemon configuration.

Changes written with "config set" are picked up by a running daemon
automatically. Use --live to change the running daemon without touching
the file.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath())
		return err
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List option keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.OptionKeys() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), k); err != nil {
				return err
			}
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print an option value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configOpts.live {
			return withClient(func(ctx context.Context, c *dbus.Client) error {
				v, err := c.GetOption(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			})
		}
		return getOption(cmd.OutOrStdout(), configPath(), args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Change an option",
	Long: `Change an option. Omitting VALUE clears optional settings such as
window.x, window.y and window.anchor.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := ""
		if len(args) == 2 {
			value = args[1]
		}
		if configOpts.live {
			return withClient(func(ctx context.Context, c *dbus.Client) error {
				return c.SetOption(ctx, args[0], value)
			})
		}
		if err := setOption(configPath(), args[0], value); err != nil {
			return err
		}
		logger.Debug("config updated", "path", configPath(), "key", args[0], "value", value)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := config.LoadConfig(path); err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: not found, defaults apply\n", path)
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configValidateCmd)

	configCmd.PersistentFlags().BoolVar(&configOpts.live, "live", false,
		"Query or change the running daemon instead of the file")
}

func getOption(w io.Writer, path, key string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	v, err := cfg.Get(key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, v)
	return err
}

// setOption loads the file at path, applies one option and writes it back.
func setOption(path, key, value string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return cfg.Save(path)
}
