package location

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"modaorganica/internal/domain/shipping"
)

var (
	ErrUnknownDepartment   = errors.New("location: unknown department")
	ErrUnknownMunicipality = errors.New("location: unknown municipality")
)

//go:embed guatemala.yaml
var guatemalaYAML []byte

type Municipality struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Zone    string `yaml:"zone" json:"zone"`
	Special bool   `yaml:"special" json:"special,omitempty"`
}

type Department struct {
	ID             string         `yaml:"id" json:"id"`
	Name           string         `yaml:"name" json:"name"`
	ShippingZone   string         `yaml:"shippingZone" json:"shippingZone"`
	Municipalities []Municipality `yaml:"municipalities" json:"municipalities,omitempty"`
}

// Catalogue is a read-only department/municipality list.
type Catalogue struct {
	departments []Department
	byID        map[string]int
}

// Parse builds a catalogue from YAML with a top-level "departments" list.
func Parse(raw []byte) (*Catalogue, error) {
	var doc struct {
		Departments []Department `yaml:"departments"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("location: parse: %w", err)
	}
	c := &Catalogue{
		departments: doc.Departments,
		byID:        make(map[string]int, len(doc.Departments)),
	}
	for i, d := range doc.Departments {
		if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("location: department #%d has no id/name", i)
		}
		c.byID[d.ID] = i
	}
	return c, nil
}

var (
	gtOnce sync.Once
	gt     *Catalogue
	gtErr  error
)

// Guatemala returns the embedded catalogue (22 departments, INE codes).
func Guatemala() *Catalogue {
	gtOnce.Do(func() {
		gt, gtErr = Parse(guatemalaYAML)
	})
	if gtErr != nil {
		panic(gtErr)
	}
	return gt
}

// Departments lists departments without their municipalities.
func (c *Catalogue) Departments() []Department {
	out := make([]Department, 0, len(c.departments))
	for _, d := range c.departments {
		out = append(out, Department{ID: d.ID, Name: d.Name, ShippingZone: d.ShippingZone})
	}
	return out
}

// Municipalities lists the municipalities of a department (by id or name).
func (c *Catalogue) Municipalities(dept string) ([]Municipality, error) {
	d, ok := c.department(dept)
	if !ok {
		return nil, ErrUnknownDepartment
	}
	out := make([]Municipality, len(d.Municipalities))
	copy(out, d.Municipalities)
	return out, nil
}

// Resolve validates a department/municipality pair given either ids or names.
func (c *Catalogue) Resolve(dept, municipality string) (Department, Municipality, error) {
	d, ok := c.department(dept)
	if !ok {
		return Department{}, Municipality{}, ErrUnknownDepartment
	}
	key := strings.TrimSpace(municipality)
	norm := shipping.Normalize(key)
	if norm == "" {
		return d, Municipality{}, ErrUnknownMunicipality
	}
	for _, m := range d.Municipalities {
		if m.ID == key || shipping.Normalize(m.Name) == norm {
			return d, m, nil
		}
	}
	return d, Municipality{}, ErrUnknownMunicipality
}

// DisplayName renders "Chiantla, Huehuetenango".
func (c *Catalogue) DisplayName(dept, municipality string) string {
	d, m, err := c.Resolve(dept, municipality)
	if err != nil {
		return ""
	}
	return m.Name + ", " + d.Name
}

func (c *Catalogue) department(key string) (Department, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Department{}, false
	}
	if i, ok := c.byID[key]; ok {
		return c.departments[i], true
	}
	norm := shipping.Normalize(key)
	for _, d := range c.departments {
		if shipping.Normalize(d.Name) == norm {
			return d, true
		}
	}
	return Department{}, false
}
