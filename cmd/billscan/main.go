// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the billscan CLI, which extracts
// structured expense data from receipt and bill images and PDFs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Set

	logger = log.Discard()
)

// rootCmd is the base command for the billscan CLI.
var rootCmd = &cobra.Command{
	Use:   "billscan",
	Short: "Extract expense data from receipts and bills",
	Long: `billscan reads receipt and bill images (JPEG, PNG, BMP, TIFF) and PDFs,
runs them through one or more OCR engines, and extracts the vendor, date,
total, currency and categorized line items. Every result carries a quality
score and a needs-review flag.

Results can be written as JSON and CSV, stored in a local SQLite database
for review and correction, and announced on an AMQP exchange.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = log.New(os.Stderr, log.ParseLevel(viper.GetString(keyLogLevel)))

		s, err := secrets.Load(".secrets/", func(name string, err error) {
			logger.Warn("skipping unreadable secret", "name", name, log.FieldError, err)
		})
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./billscan.yaml or ~/.config/billscan/billscan.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "", "results database path (default data/billscan.db)")
	viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag(keyDBPath, rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("billscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "billscan"))
		}
	}

	viper.SetEnvPrefix("BILLSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// signalContext returns a context cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
