// cmd/mall/checkout.go
package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	usecase "modaorganica/internal/application/usecase"
	checkoutdom "modaorganica/internal/domain/checkout"
	locationdom "modaorganica/internal/domain/location"
	shippingdom "modaorganica/internal/domain/shipping"
)

var checkoutForm checkoutdom.Form

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out the local cart against the running API (quote|submit|success|cancel)",
}

var checkoutQuoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Show totals for a destination",
	Args:  cobra.NoArgs,
	RunE: withCheckout(func(cmd *cobra.Command, _ []string, co *usecase.CheckoutCoordinator) error {
		printTotals(cmd.OutOrStdout(), co.SetLocation(checkoutForm.Department, checkoutForm.Municipality))
		return nil
	}),
}

var checkoutSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate the form and open a payment session",
	Args:  cobra.NoArgs,
	RunE: withCheckout(func(cmd *cobra.Command, _ []string, co *usecase.CheckoutCoordinator) error {
		w := cmd.OutOrStdout()
		res, err := co.Submit(cmd.Context(), checkoutForm)
		if err != nil {
			var ve *checkoutdom.ValidationError
			if errors.As(err, &ve) {
				printFields(w, ve)
			}
			return errors.New(co.UserMessage(err))
		}
		fmt.Fprintf(w, "Pedido:   %s\n", res.OrderID)
		fmt.Fprintf(w, "Sesión:   %s\n", res.SessionID)
		fmt.Fprintf(w, "Envío:    %s\n", res.ShippingCost.Display())
		fmt.Fprintf(w, "Pagar en: %s\n", res.CheckoutURL)
		return nil
	}),
}

var checkoutSuccessCmd = &cobra.Command{
	Use:   "success <session-id>",
	Short: "Record a completed payment and clear the cart",
	Args:  cobra.ExactArgs(1),
	RunE: withCheckout(func(cmd *cobra.Command, args []string, co *usecase.CheckoutCoordinator) error {
		conf, err := co.HandleSuccess(cmd.Context(), args[0])
		if err != nil {
			return errors.New(co.UserMessage(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "¡Gracias por tu compra! Sesión %s\n", conf.SessionID)
		return nil
	}),
}

var checkoutCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Return from a cancelled payment (the cart is kept)",
	Args:  cobra.NoArgs,
	RunE: withCheckout(func(cmd *cobra.Command, _ []string, co *usecase.CheckoutCoordinator) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Pago cancelado. Tu carrito se conservó.")
		printCart(w, co.HandleCancel(cmd.Context()))
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{checkoutQuoteCmd, checkoutSubmitCmd} {
		c.Flags().StringVar(&checkoutForm.Department, "department", "", "Department id (e.g. GT-13) or name")
		c.Flags().StringVar(&checkoutForm.Municipality, "municipality", "", "Municipality id (e.g. GT-13-02) or name")
	}
	f := checkoutSubmitCmd.Flags()
	f.StringVar(&checkoutForm.Email, "email", "", "Buyer email")
	f.StringVar(&checkoutForm.FullName, "name", "", "Buyer full name")
	f.StringVar(&checkoutForm.Phone, "phone", "", "Phone (8+ digits)")
	f.StringVar(&checkoutForm.Address, "address", "", "Delivery address")
	f.StringVar(&checkoutForm.DeliveryNotes, "notes", "", "Delivery notes")
	f.StringVar((*string)(&checkoutForm.DeliveryType), "delivery", string(checkoutdom.DeliveryHome), "home_delivery or pickup_at_branch")
	f.StringVar(&checkoutForm.PickupBranch, "branch", "", "Pickup branch (pickup_at_branch)")

	checkoutCmd.AddCommand(checkoutQuoteCmd, checkoutSubmitCmd, checkoutSuccessCmd, checkoutCancelCmd)
}

func withCheckout(fn func(cmd *cobra.Command, args []string, co *usecase.CheckoutCoordinator) error) func(*cobra.Command, []string) error {
	return withCart(func(cmd *cobra.Command, args []string, store *usecase.CartStore) error {
		rules, err := cfg.Shipping.Rules()
		if err != nil {
			return err
		}
		co := usecase.NewCheckoutCoordinator(
			store,
			storefrontClient(),
			shippingdom.NewTable(rules),
			locationdom.Guatemala(),
			logger,
		).WithTimeout(cfg.Client.Timeout)
		defer co.Close()
		return fn(cmd, args, co)
	})
}

func printTotals(w io.Writer, t usecase.Totals) {
	fmt.Fprintf(w, "Subtotal: %s\n", t.Subtotal.Display())
	if t.Local {
		fmt.Fprintf(w, "Envío:    %s (entrega local)\n", t.Shipping.Display())
	} else {
		fmt.Fprintf(w, "Envío:    %s (%s)\n", t.Shipping.Display(), t.Provider)
	}
	fmt.Fprintf(w, "Total:    %s\n", t.Total.Display())
}

func printFields(w io.Writer, ve *checkoutdom.ValidationError) {
	keys := make([]string, 0, len(ve.Fields))
	for k := range ve.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, ve.Fields[k])
	}
}
