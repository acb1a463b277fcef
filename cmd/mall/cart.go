// cmd/mall/cart.go
package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	dbout "modaorganica/internal/adapters/out/db"
	dbcommon "modaorganica/internal/adapters/out/db/common"
	usecase "modaorganica/internal/application/usecase"
	cartdom "modaorganica/internal/domain/cart"
	productdom "modaorganica/internal/domain/product"
	"modaorganica/internal/infra/database"
)

// The CLI keeps one cart in client.cartDb under the fixed storage key.
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the local cart (show|add|remove|set|clear)",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart",
	Args:  cobra.NoArgs,
	RunE: withCart(func(cmd *cobra.Command, _ []string, store *usecase.CartStore) error {
		printCart(cmd.OutOrStdout(), store.GetCart())
		return nil
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product from the catalogue",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withCart(func(cmd *cobra.Command, args []string, store *usecase.CartStore) error {
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("cart: quantity %q: %w", args[1], cartdom.ErrInvalidCart)
			}
			qty = n
		}
		p, err := storefrontClient().GetProduct(cmd.Context(), productdom.ID(args[0]))
		if err != nil {
			return err
		}
		c, err := store.AddProduct(cmd.Context(), cartdom.RefFromProduct(p), qty)
		if err != nil {
			return err
		}
		printCart(cmd.OutOrStdout(), c)
		return nil
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a line",
	Args:  cobra.ExactArgs(1),
	RunE: withCart(func(cmd *cobra.Command, args []string, store *usecase.CartStore) error {
		printCart(cmd.OutOrStdout(), store.RemoveProduct(cmd.Context(), productdom.ID(args[0])))
		return nil
	}),
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set a line's quantity (values below 1 become 1)",
	Args:  cobra.ExactArgs(2),
	RunE: withCart(func(cmd *cobra.Command, args []string, store *usecase.CartStore) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("cart: quantity %q: %w", args[1], cartdom.ErrInvalidCart)
		}
		printCart(cmd.OutOrStdout(), store.UpdateQuantity(cmd.Context(), productdom.ID(args[0]), n))
		return nil
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: withCart(func(cmd *cobra.Command, _ []string, store *usecase.CartStore) error {
		printCart(cmd.OutOrStdout(), store.Clear(cmd.Context()))
		return nil
	}),
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartSetCmd, cartClearCmd)
}

// openCartStore opens the local sqlite cart file; close releases it.
func openCartStore(ctx context.Context) (store *usecase.CartStore, closeFn func(), err error) {
	db, err := database.Open(ctx, dbcommon.DialectSQLite, cfg.Client.CartDB, logger)
	if err != nil {
		return nil, nil, err
	}
	repo := dbout.NewCartStateRepositorySQL(db.Client, db.Dialect)
	store = usecase.NewCartStore(ctx, repo, cartdom.StorageKey, logger)
	return store, func() { _ = db.Close() }, nil
}

func withCart(fn func(cmd *cobra.Command, args []string, store *usecase.CartStore) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := openCartStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(cmd, args, store)
	}
}

func printCart(w io.Writer, c cartdom.Cart) {
	if c.IsEmpty() {
		fmt.Fprintln(w, "Tu carrito está vacío.")
		return
	}
	for _, it := range c.Items {
		fmt.Fprintf(w, "%-5s %-40s %3d x %10s = %10s\n", it.ID, it.Name, it.Quantity, it.Price.Display(), it.LineTotal().Display())
	}
	fmt.Fprintf(w, "Productos: %d (%d unidades)\n", c.ItemCount, c.UnitCount())
	fmt.Fprintf(w, "Subtotal:  %s\n", c.Subtotal.Display())
}
