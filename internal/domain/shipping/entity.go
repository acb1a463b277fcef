package shipping

import (
	"errors"
	"strings"
	"sync/atomic"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	common "modaorganica/internal/domain/common"
)

var ErrInvalidRules = errors.New("shipping: invalid rules")

// Method is how an order reaches the customer.
type Method string

const (
	MethodLocalDelivery Method = "local_delivery"
	MethodCourier       Method = "cargo_expreso"
)

// Costs are the flat rates per method.
type Costs struct {
	Local    common.Money
	National common.Money
}

// Rules is the static shipping table.
type Rules struct {
	LocalZones       []string
	Costs            Costs
	NationalProvider string
}

// DefaultRules are the storefront's published rates.
func DefaultRules() Rules {
	return Rules{
		LocalZones: []string{"chiantla", "huehuetenango"},
		Costs: Costs{
			Local:    common.MustParseMoney("15.00"),
			National: common.MustParseMoney("35.00"),
		},
		NationalProvider: "Cargo Expreso",
	}
}

func (r Rules) Validate() error {
	if r.Costs.Local.IsNegative() || r.Costs.National.IsNegative() {
		return ErrInvalidRules
	}
	for _, z := range r.LocalZones {
		if Normalize(z) == "" {
			return ErrInvalidRules
		}
	}
	return nil
}

// Quote is the shipping decision for one destination.
type Quote struct {
	Municipality string       `json:"municipality"`
	Local        bool         `json:"local"`
	Method       Method       `json:"method"`
	Provider     string       `json:"provider,omitempty"`
	Cost         common.Money `json:"cost"`
}

// RequiresCourier reports whether the national courier must carry the parcel.
func (q Quote) RequiresCourier() bool { return !q.Local }

// IsLocal reports whether municipality falls in a local zone:
// the normalized input equals or contains a normalized zone name.
func (r Rules) IsLocal(municipality string) bool {
	m := Normalize(municipality)
	if m == "" {
		return false
	}
	for _, z := range r.LocalZones {
		nz := Normalize(z)
		if nz == "" {
			continue
		}
		if m == nz || strings.Contains(m, nz) {
			return true
		}
	}
	return false
}

// Quote applies the rule to municipality. Unknown or empty input is national.
func (r Rules) Quote(municipality string) Quote {
	if r.IsLocal(municipality) {
		return Quote{
			Municipality: strings.TrimSpace(municipality),
			Local:        true,
			Method:       MethodLocalDelivery,
			Cost:         r.Costs.Local,
		}
	}
	return Quote{
		Municipality: strings.TrimSpace(municipality),
		Local:        false,
		Method:       MethodCourier,
		Provider:     r.NationalProvider,
		Cost:         r.Costs.National,
	}
}

// Normalize folds accents, lowercases and trims: " Chiantlá " -> "chiantla".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Table holds the live rules and can be swapped on config reload.
type Table struct {
	v atomic.Pointer[Rules]
}

func NewTable(r Rules) *Table {
	t := &Table{}
	t.Replace(r)
	return t
}

// Rules returns the current rules.
func (t *Table) Rules() Rules {
	if t == nil {
		return DefaultRules()
	}
	if r := t.v.Load(); r != nil {
		return *r
	}
	return DefaultRules()
}

// Replace swaps the rules. Invalid rules are rejected and the old ones kept.
func (t *Table) Replace(r Rules) error {
	if err := r.Validate(); err != nil {
		return err
	}
	zones := make([]string, len(r.LocalZones))
	copy(zones, r.LocalZones)
	r.LocalZones = zones
	t.v.Store(&r)
	return nil
}
