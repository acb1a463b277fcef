// cmd/mall/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appcfg "modaorganica/internal/infra/config"
	"modaorganica/internal/infra/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Resolved in PersistentPreRunE
	cfg    *appcfg.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mall",
	Short: "Moda Orgánica mall: storefront cart, checkout and payment backend",
	Long: `mall runs the Moda Orgánica storefront backend and offers a local
cart/checkout client for the same API.

Configuration is read from --config (or MALL_CONFIG) and then overridden by
environment variables such as PORT, STORAGE_BACKEND and STRIPE_SECRET_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := appcfg.Load(appcfg.Path(configPath))
		if err != nil {
			return err
		}
		cfg = c

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger = logging.Must(level, cfg.Log.Development)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set MALL_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
