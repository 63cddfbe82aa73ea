package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rstms/sdfs/lvfs"
	"github.com/rstms/sdfs/sdcard"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	imageFile  string
	mountDir   string
	letter     string
	verbose    bool

	cardConfig    *sdcard.Config
	configLoadErr error
)

var rootCmd = &cobra.Command{
	Use:   "sdfs",
	Short: "Read-only access to SD card filesystems",
	Long: `sdfs - read files from an SD card the way the UI toolkit does.

The card is either a FAT volume in a device or image file (--image) or
a directory where the host has mounted it (--mount). Paths may carry the
drive letter ("S:/images") or not ("/images").

Examples:
  sdfs --image /dev/mmcblk0 ls /images
  sdfs --mount /media/sd cat S:/config/ui.json
  sdfs -c card.yaml tree`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "card config file (YAML)")
	pf.StringVar(&imageFile, "image", "", "card device or image file")
	pf.StringVar(&mountDir, "mount", "", "directory where the card is mounted")
	pf.StringVar(&letter, "letter", "", "toolkit drive letter")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() {
	cfg := sdcard.DefaultConfig()
	if configFile != "" {
		loaded, err := sdcard.LoadConfig(configFile)
		if err != nil {
			configLoadErr = err
			return
		}
		cfg = loaded
	}
	if imageFile != "" {
		cfg.Image = imageFile
		cfg.Mount = ""
	}
	if mountDir != "" {
		cfg.Mount = mountDir
		cfg.Image = ""
	}
	if letter != "" {
		cfg.Letter = strings.ToUpper(letter)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		configLoadErr = err
		return
	}
	cardConfig = cfg
	configLoadErr = nil
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
}

// GetConfig returns the card configuration built from the config file
// and flags.
func GetConfig() (*sdcard.Config, error) {
	if configLoadErr != nil {
		return nil, fmt.Errorf("config not available: %w", configLoadErr)
	}
	if cardConfig == nil {
		return nil, fmt.Errorf("config not available")
	}
	return cardConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// openCard mounts the configured card and registers it with a fresh
// registry. The caller ends the card.
func openCard() (*lvfs.Registry, *sdcard.Card, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, nil, err
	}
	reg := lvfs.NewRegistry(lvfs.WithLogger(slog.Default()))
	card, err := sdcard.Begin(reg, cfg, sdcard.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}
	return reg, card, nil
}

// drivePath qualifies path with the card's drive letter unless it
// already carries one.
func drivePath(card *sdcard.Card, path string) string {
	if len(path) >= 2 && path[1] == ':' {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return string(card.Letter()) + ":" + path
}
