package checkout

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"modaorganica/internal/domain/location"
)

// DeliveryType selects home delivery or branch pickup.
type DeliveryType string

const (
	DeliveryHome   DeliveryType = "home_delivery"
	DeliveryPickup DeliveryType = "pickup_at_branch"
)

// Form is the checkout input. It is never persisted.
type Form struct {
	Email         string       `json:"email" validate:"looseemail"`
	FullName      string       `json:"fullName" validate:"trimmin=3"`
	Phone         string       `json:"phone" validate:"mindigits=8"`
	Department    string       `json:"department" validate:"notblank"`
	Municipality  string       `json:"municipality" validate:"notblank"`
	Address       string       `json:"address"`
	DeliveryNotes string       `json:"deliveryNotes"`
	DeliveryType  DeliveryType `json:"deliveryType" validate:"omitempty,oneof=home_delivery pickup_at_branch"`
	PickupBranch  string       `json:"pickupBranch"`
}

// Field messages, keyed by the json field name.
var fieldMessages = map[string]string{
	"email":        "Ingresa un correo electrónico válido.",
	"fullName":     "El nombre debe tener al menos 3 caracteres.",
	"phone":        "El teléfono debe tener al menos 8 dígitos.",
	"department":   "Selecciona un departamento.",
	"municipality": "Selecciona un municipio.",
	"address":      "La dirección debe tener al menos 10 caracteres.",
	"deliveryType": "Tipo de entrega no válido.",
	"pickupBranch": "Selecciona una sucursal de recogida.",
}

// LocationResolver checks structured department/municipality selections.
type LocationResolver interface {
	Resolve(dept, municipality string) (location.Department, location.Municipality, error)
}

// Normalized returns a trimmed copy with the default delivery type filled in.
func (f Form) Normalized() Form {
	f.Email = strings.TrimSpace(f.Email)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Department = strings.TrimSpace(f.Department)
	f.Municipality = strings.TrimSpace(f.Municipality)
	f.Address = strings.TrimSpace(f.Address)
	f.DeliveryNotes = strings.TrimSpace(f.DeliveryNotes)
	f.PickupBranch = strings.TrimSpace(f.PickupBranch)
	f.DeliveryType = DeliveryType(strings.TrimSpace(string(f.DeliveryType)))
	if f.DeliveryType == "" {
		f.DeliveryType = DeliveryHome
	}
	return f
}

// Validate returns a *ValidationError listing every failing field, or nil.
// locs may be nil, in which case department/municipality only need to be non-blank.
func (f Form) Validate(locs LocationResolver) error {
	v := Validator()
	fields := map[string]string{}

	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessages[fe.Field()]
		}
	}

	n := f.Normalized()
	if n.DeliveryType == DeliveryPickup {
		if v.Var(n.PickupBranch, "notblank") != nil {
			fields["pickupBranch"] = fieldMessages["pickupBranch"]
		}
	} else if v.Var(n.Address, "trimmin=10") != nil {
		fields["address"] = fieldMessages["address"]
	}

	if locs != nil && fields["department"] == "" && fields["municipality"] == "" {
		if _, _, err := locs.Resolve(n.Department, n.Municipality); err != nil {
			switch {
			case errors.Is(err, location.ErrUnknownDepartment):
				fields["department"] = fieldMessages["department"]
			default:
				fields["municipality"] = fieldMessages["municipality"]
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the storefront's custom tags:
// looseemail, trimmin=N, mindigits=N, notblank.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "looseemail", func(fl validator.FieldLevel) bool {
			return IsLooseEmail(fl.Field().String())
		})
		mustRegister(v, "trimmin", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
		})
		mustRegister(v, "mindigits", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return CountDigits(fl.Field().String()) >= n
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// IsLooseEmail checks for an "@" followed somewhere by a ".".
func IsLooseEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	if at <= 0 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

// CountDigits counts ASCII digits 0-9, ignoring spaces, dashes and prefixes.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
