// Package cli provides the mutuelled command line interface.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mutuelle-network/mutuelle/internal/daemon"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mutuelled",
	Short: "Ledger and eligibility engine for a teachers' mutual-aid association",
	Long: `mutuelled runs the mutuelle backend: the pooled fund account, per-member
savings ledgers, interest-bearing loans with redistribution, equal-split
replenishment debts and the derived "in good standing" status.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.toml")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

func loadConfig() (daemon.Config, error) {
	return daemon.LoadConfig(configPath)
}
