// MSEAT - Multi-seat input router
// Routes individual mice and keyboards to assigned monitors by
// intercepting raw per-device input and re-synthesizing it scoped to
// the assigned display region.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"mseat/internal/api"
	"mseat/internal/config"
	"mseat/internal/controller"
	"mseat/internal/device"
	"mseat/internal/display"
	"mseat/internal/intercept"
	"mseat/internal/osinput"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "mseat",
		Short: "Route individual mice and keyboards to assigned monitors",
		Long: "mseat intercepts raw per-device input on Windows and redirects it: " +
			"each pointing device gets its own cursor territory, each keyboard its " +
			"own target window, instead of the OS's single merged cursor and focus.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newLockCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mseat version %s\n", version)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List attached input devices and monitors",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Pointing devices:")
			fmt.Println("-----------------")
			printDevices(device.Pointing)

			fmt.Println("Typing devices:")
			fmt.Println("---------------")
			printDevices(device.Typing)

			regions, err := display.Enumerate()
			if err != nil {
				return fmt.Errorf("listing monitors: %w", err)
			}
			fmt.Println("Monitors:")
			fmt.Println("---------")
			for _, r := range regions {
				fmt.Printf("ID: 0x%X\n", uintptr(r.ID))
				fmt.Printf("  Name: %s\n", r.Label)
				fmt.Printf("  Bounds: (%d,%d)-(%d,%d)\n", r.Bounds.Left, r.Bounds.Top, r.Bounds.Right, r.Bounds.Bottom)
				if r.Primary {
					fmt.Printf("  Primary: yes\n")
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func printDevices(class device.Class) {
	devices, err := device.List(class)
	if err != nil {
		fmt.Printf("  (enumeration failed: %v)\n\n", err)
		return
	}
	if len(devices) == 0 {
		fmt.Println("  (none)")
	}
	for _, d := range devices {
		fmt.Printf("ID: 0x%X\n", uintptr(d.ID))
		fmt.Printf("  Label: %s\n", d.Label)
		fmt.Println()
	}
	fmt.Println()
}

func newLockCmd() *cobra.Command {
	var monitor int

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Confine the single cursor to one monitor until interrupted",
		Long: "Simple lock mode: keeps the ordinary shared cursor inside one " +
			"monitor's bounds. No raw input capture is involved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := display.Enumerate()
			if err != nil {
				return fmt.Errorf("listing monitors: %w", err)
			}
			if monitor < 0 || monitor >= len(regions) {
				return fmt.Errorf("monitor index %d out of range (have %d)", monitor, len(regions))
			}

			target := regions[monitor]
			if err := display.Confine(target); err != nil {
				return fmt.Errorf("confining cursor: %w", err)
			}
			defer display.Release()

			fmt.Printf("Cursor locked to %s (%d,%d)-(%d,%d). Ctrl+C to release.\n",
				target.Label, target.Bounds.Left, target.Bounds.Top, target.Bounds.Right, target.Bounds.Bottom)

			waitForSignal()
			return nil
		},
	}

	cmd.Flags().IntVar(&monitor, "monitor", 0, "monitor index from 'mseat list'")
	return cmd
}

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the input router service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgMgr, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg := cfgMgr.Get()
			setupLogging(cfg.Log)

			return runService(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default: per-user config dir)")
	return cmd
}

func loadConfig(path string) (*config.Manager, error) {
	var mgr *config.Manager
	var err error
	if path != "" {
		mgr = config.NewManagerAt(path)
	} else {
		mgr, err = config.NewManager()
		if err != nil {
			return nil, fmt.Errorf("initializing config: %w", err)
		}
	}
	if err := mgr.Load(); err != nil {
		logrus.WithError(err).Warn("config load failed, using defaults")
	}
	return mgr, nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}
}

func runService(cfg config.Config) error {
	logrus.WithField("version", version).Info("mseat starting")

	if runtime.GOOS == "windows" && !osinput.IsAdmin() {
		logrus.Warn("not running elevated; exclusive raw input registration may be refused")
	}

	backend := intercept.NewBackend()
	ctrl, err := controller.New(controller.Options{
		Backend:           backend,
		Input:             osinput.New(),
		ListDevices:       device.List,
		EnumerateRegions:  display.Enumerate,
		RegionFromWindow:  display.FromWindow,
		FocusPollInterval: time.Duration(cfg.FocusPollMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	if err := ctrl.Start(); err != nil {
		return fmt.Errorf("starting controller: %w", err)
	}
	// Devices must never be left in exclusive capture: disable every
	// active class on the way out, whatever the exit path.
	defer ctrl.Stop()

	if cfg.API.Enabled {
		server := api.NewServer(ctrl, cfg.API.Token)
		go func() {
			if err := server.Start(cfg.API.Port); err != nil {
				logrus.WithError(err).Error("control server stopped")
			}
		}()
	} else {
		logrus.Info("control API disabled; only signal-driven shutdown is available")
	}

	logrus.WithFields(logrus.Fields{
		"pointing_devices": len(ctrl.ListPointingDevices()),
		"typing_devices":   len(ctrl.ListTypingDevices()),
		"regions":          len(ctrl.Regions()),
	}).Info("mseat ready")

	waitForSignal()
	logrus.Info("shutting down")
	return nil
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
