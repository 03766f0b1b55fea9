// Copyright (c) 2026 Jeremy Hahn
// Copyright (c) 2026 Automate The Things, LLC
//
// This file is part of go-biometric-storage.
//
// go-biometric-storage is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package cli implements the bstore command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-biometric-storage/internal/config"
)

var (
	configFile  string
	flagBackend string
	flagPath    string
	flagDebug   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bstore",
	Short: "bstore - biometric-gated encrypted storage",
	Long: `bstore stores named values encrypted under keys that can only be
used after the user authenticates. Values are sealed with AES-GCM;
each read and write presents an authentication challenge unless the
key's validity window is still open.

Storage backends:
  - memory:  in-process only (testing)
  - file:    one file per entry under a root directory
  - bolt:    single-file bbolt database`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.bstore.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "store", "",
		"storage backend (memory, file, bolt)")
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", "",
		"storage path (directory for file, database file for bolt)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false,
		"debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(existsCmd)
	rootCmd.AddCommand(passcodeCmd)
	rootCmd.AddCommand(biometricCmd)
}

// loadConfig resolves configuration from file, environment and flags.
// Flags win over everything else.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".bstore.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if flagPath != "" {
		cfg.Storage.Path = flagPath
	}
	if flagDebug {
		cfg.Debug = true
	}
	if cfg.Storage.Backend == config.StoreBolt && cfg.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cli: cannot determine home directory: %w", err)
		}
		cfg.Storage.Path = filepath.Join(home, ".bstore.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires the service against the configured backend with a
// terminal passcode reader.
func newApp() (*config.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.NewApp(terminalPasscodeReader)
}

// handleError prints an error to stderr and exits with code 1
func handleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
