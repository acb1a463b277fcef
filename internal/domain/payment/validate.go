package payment

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	DeliveryHome   = "home_delivery"
	DeliveryPickup = "pickup_at_branch"

	// MinAddressLen applies to home delivery only.
	MinAddressLen = 10
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// Validate trims r in place and checks the required fields.
// The error wraps ErrInvalidRequest and names the first failing field.
func (r *CheckoutSessionRequest) Validate() error {
	r.CustomerEmail = strings.TrimSpace(r.CustomerEmail)
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.DeliveryType = strings.TrimSpace(r.DeliveryType)
	r.PickupBranch = strings.TrimSpace(r.PickupBranch)
	r.ShippingAddress.Address = strings.TrimSpace(r.ShippingAddress.Address)
	for i := range r.Items {
		r.Items[i].ID = r.Items[i].ID.Normalize()
		r.Items[i].Name = strings.TrimSpace(r.Items[i].Name)
	}

	if err := requestValidator().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidRequest, verrs[0].Namespace())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.Municipality() == "" {
		return fmt.Errorf("%w: shipping_municipality", ErrInvalidRequest)
	}
	for _, it := range r.Items {
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: items.price", ErrInvalidRequest)
		}
	}

	// pickup needs a branch; home delivery (the default) needs a full address
	if r.DeliveryType == DeliveryPickup {
		if r.PickupBranch == "" {
			return fmt.Errorf("%w: pickup_branch", ErrInvalidRequest)
		}
	} else if utf8.RuneCountInString(r.ShippingAddress.Address) < MinAddressLen {
		return fmt.Errorf("%w: shipping_address.address", ErrInvalidRequest)
	}
	return nil
}
