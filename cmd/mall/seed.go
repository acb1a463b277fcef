// cmd/mall/seed.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	productdom "modaorganica/internal/domain/product"
	mallDI "modaorganica/internal/platform/di/mall"
	shared "modaorganica/internal/platform/di/shared"
)

var seedCmd = &cobra.Command{
	Use:   "seed [catalogue.yaml]",
	Short: "Load the product catalogue into the configured store",
	Long: `Upserts every product of the given YAML file (or the embedded default
catalogue) into the storage backend selected by storage.backend.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func loadSeed(args []string) ([]productdom.Product, error) {
	if len(args) == 0 {
		return productdom.DefaultSeed()
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return productdom.ParseSeed(raw)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	products, err := loadSeed(args)
	if err != nil {
		return err
	}

	infra, err := shared.NewInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	cont, err := mallDI.NewContainer(ctx, infra)
	if err != nil {
		_ = infra.Close()
		return err
	}
	defer cont.Close()

	n, err := cont.CatalogUC.Seed(ctx, products)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products into %s\n", n, cfg.Storage.Backend)
	return nil
}
