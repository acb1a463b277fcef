// cmd/mall/catalog.go
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	httpout "modaorganica/internal/adapters/out/http"
	productdom "modaorganica/internal/domain/product"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [id]",
	Short: "List products (or show one) from the running API",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalog,
}

func storefrontClient() *httpout.StorefrontClient {
	return httpout.NewStorefrontClient(cfg.Client.APIBaseURL, cfg.Client.Timeout)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := storefrontClient()
	w := cmd.OutOrStdout()

	if len(args) == 1 {
		p, err := client.GetProduct(ctx, productdom.ID(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", p.ID, p.Name)
		if p.SKU != "" {
			fmt.Fprintf(w, "  SKU:    %s\n", p.SKU)
		}
		fmt.Fprintf(w, "  Precio: %s\n", p.Price.Display())
		fmt.Fprintf(w, "  Stock:  %d\n", p.Stock)
		if p.Description != "" {
			fmt.Fprintf(w, "  %s\n", p.Description)
		}
		return nil
	}

	products, err := client.ListProducts(ctx)
	if err != nil {
		return err
	}
	printProducts(w, products)
	return nil
}

func printProducts(w io.Writer, products []productdom.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "(sin productos)")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "%-5s %-40s %10s  stock %d\n", p.ID, p.Name, p.Price.Display(), p.Stock)
	}
}
