package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	common "modaorganica/internal/domain/common"
)

var (
	ErrNotFound       = errors.New("product: not found")
	ErrInvalidProduct = errors.New("product: invalid")
)

// ID identifies a product. Legacy payloads used numeric ids, so JSON numbers are accepted.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// Normalize trims surrounding whitespace.
func (id ID) Normalize() ID { return ID(strings.TrimSpace(string(id))) }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return ErrInvalidProduct
	}
	*id = ID(n.String())
	return nil
}

// Product is a catalogue entry.
type Product struct {
	ID          ID           `json:"id"`
	SKU         string       `json:"sku,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       common.Money `json:"price"`
	Stock       int          `json:"stock"`
	ImageURL    string       `json:"image_url"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Validate normalizes p in place.
func (p *Product) Validate() error {
	if p == nil {
		return ErrInvalidProduct
	}
	p.ID = p.ID.Normalize()
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.ImageURL = strings.TrimSpace(p.ImageURL)

	if p.ID.IsZero() || p.Name == "" {
		return ErrInvalidProduct
	}
	if p.Price.IsNegative() || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}

// InStock reports whether qty units can be sold.
func (p Product) InStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}
