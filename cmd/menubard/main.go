// Package main is the entry point for the menubard tray daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/menubar/internal/config"
	"github.com/jmylchreest/menubar/internal/dbus"
	"github.com/jmylchreest/menubar/internal/host/gtkhost"
	"github.com/jmylchreest/menubar/internal/host/trayhost"
	"github.com/jmylchreest/menubar/internal/menubar"
	"github.com/jmylchreest/menubar/internal/style"
)

const (
	appID   = "io.github.jmylchreest.menubard"
	appName = "menubard"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/menubar/menubar.toml)")
	logLevel := flag.String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		if err := cfg.Set("log.level", *logLevel); err != nil {
			slog.Error("invalid log level", "error", err)
			os.Exit(1)
		}
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	logger.Info("starting menubard", "version", version, "config", path, "index", cfg.IndexURL())

	// Create the libadwaita application
	app := adw.NewApplication(appID, 0)

	var (
		tray          *trayhost.Tray
		service       *dbus.Service
		configWatcher *config.Watcher
		styleWatcher  *style.Watcher
		stylePath     string
		running       atomic.Bool
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The host must observe activation before the menubar asks for it.
	var host *gtkhost.Host
	host = gtkhost.New(&app.Application, func(icon menubar.Icon) (menubar.Tray, error) {
		t, err := trayhost.New(icon, host.Dispatch, logger)
		if err != nil {
			return nil, err
		}
		tray = t
		return t, nil
	}, logger)

	mb := menubar.New(host, cfg, menubar.WithLogger(logger))

	// loadStyle applies the stylesheet at path and polls it for edits.
	loadStyle := func(path string) {
		if styleWatcher != nil {
			styleWatcher.Stop()
			styleWatcher = nil
		}
		stylePath = path

		sheet, err := style.Resolve(path)
		if err != nil {
			logger.Warn("failed to load stylesheet, using bundled", "path", path, "error", err)
		}
		host.ApplyStyle(sheet.CSS)
		logger.Debug("loaded stylesheet", "path", sheet.Path, "bundled", sheet.IsBundled())

		styleWatcher = style.NewWatcher(sheet, logger)
		styleWatcher.SetChangeCallback(func(css string) {
			host.Dispatch(func() { host.ApplyStyle(css) })
		})
		styleWatcher.Start(ctx)
	}

	stop := func() {
		if styleWatcher != nil {
			styleWatcher.Stop()
			styleWatcher = nil
		}
		if configWatcher != nil {
			_ = configWatcher.Stop()
			configWatcher = nil
		}
		if service != nil {
			_ = service.Stop()
			service = nil
		}
		if tray != nil {
			tray.Close()
			tray = nil
		}
	}

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		// Stop components in GTK main loop context
		host.Dispatch(func() {
			if running.Load() {
				stop()
			}
			app.Quit()
		})
	}()

	// Handle application activation
	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		if err := mb.Start(); err != nil {
			logger.Error("failed to start menubar", "error", err)
			app.Quit()
			return
		}
		loadStyle(cfg.StylePath())

		service = dbus.NewService(mb, host.Dispatch, logger)
		service.Attach(mb.Events())
		if err := service.Start(); err != nil {
			// The tray still works without the control surface.
			logger.Warn("failed to start D-Bus service", "error", err)
			service = nil
		}

		w, err := config.NewWatcher(path, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			w.SetReloadCallback(func(newCfg *config.Config) {
				if *logLevel != "" {
					newCfg.Log.Level = cfg.Log.Level
				}
				host.Dispatch(func() {
					mb.ApplyConfig(newCfg)
					if p := newCfg.StylePath(); p != stylePath {
						loadStyle(p)
					}
				})
			})
			w.SetErrorCallback(func(err error) {
				logger.Warn("config reload failed, keeping previous config", "error", err)
			})
			if err := w.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			} else {
				configWatcher = w
			}
		}

		logger.Info("menubard ready", "dbus_interface", dbus.Interface, "anchor", mb.Anchor())

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	// Handle shutdown
	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stop()
		running.Store(false)
	})

	// Flags are already parsed; GApplication would reject them.
	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}
}
