package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "modaorganica/internal/domain/common"
)

func validRequest() CheckoutSessionRequest {
	return CheckoutSessionRequest{
		CustomerEmail: " ana@example.com ",
		CustomerName:  "Ana López",
		Items: []ItemInput{
			{ID: "1", Name: "Anillo Plata", Quantity: 1, Price: common.MustParseMoney("250")},
		},
		ShippingAddress: AddressInput{Department: "Huehuetenango", Municipality: "Chiantla", Address: "4a calle 2-10 zona 1"},
	}
}

func TestCheckoutSessionRequest_Validate(t *testing.T) {
	r := validRequest()
	require.NoError(t, r.Validate())
	assert.Equal(t, "ana@example.com", r.CustomerEmail)
	assert.Equal(t, "Chiantla", r.Municipality())
}

func TestCheckoutSessionRequest_ValidateFailures(t *testing.T) {
	cases := map[string]func(*CheckoutSessionRequest){
		"email":        func(r *CheckoutSessionRequest) { r.CustomerEmail = "nope" },
		"name":         func(r *CheckoutSessionRequest) { r.CustomerName = "" },
		"no items":     func(r *CheckoutSessionRequest) { r.Items = nil },
		"zero qty":     func(r *CheckoutSessionRequest) { r.Items[0].Quantity = 0 },
		"municipality": func(r *CheckoutSessionRequest) { r.ShippingAddress.Municipality = "" },
		"delivery":     func(r *CheckoutSessionRequest) { r.DeliveryType = "drone" },
		"home no address": func(r *CheckoutSessionRequest) {
			r.DeliveryType = DeliveryHome
			r.ShippingAddress.Address = ""
		},
		"default short address": func(r *CheckoutSessionRequest) { r.ShippingAddress.Address = "  zona 1   " },
		"pickup no branch": func(r *CheckoutSessionRequest) {
			r.DeliveryType = DeliveryPickup
			r.PickupBranch = "  "
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validRequest()
			mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidRequest)
		})
	}
}

func TestCheckoutSessionRequest_PickupNeedsNoAddress(t *testing.T) {
	r := validRequest()
	r.DeliveryType = DeliveryPickup
	r.PickupBranch = " Cobán centro "
	r.ShippingAddress.Address = ""
	require.NoError(t, r.Validate())
	assert.Equal(t, "Cobán centro", r.PickupBranch)
}

func TestCheckoutSessionRequest_DeliveryErrorsNameField(t *testing.T) {
	r := validRequest()
	r.ShippingAddress.Address = "corta"
	err := r.Validate()
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "shipping_address.address")

	r = validRequest()
	r.DeliveryType = DeliveryPickup
	err = r.Validate()
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "pickup_branch")
}

func TestMunicipalityFallback(t *testing.T) {
	r := CheckoutSessionRequest{ShippingMunicipality: " Huehuetenango "}
	assert.Equal(t, "Huehuetenango", r.Municipality())
}

func TestReturnURLs(t *testing.T) {
	assert.Equal(t, "https://shop.gt/checkout/success?session_id={CHECKOUT_SESSION_ID}", SuccessURL("https://shop.gt/"))
	assert.Equal(t, "https://shop.gt/checkout/cancel", CancelURL("https://shop.gt"))
}
